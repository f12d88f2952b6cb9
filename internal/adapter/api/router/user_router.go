package router

import (
	"github.com/labstack/echo/v4"

	"petmatch/internal/adapter/api/handler"
	"petmatch/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	e.POST("/v1/auth/register", userHandler.Register)

	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.GET("/me", userHandler.GetProfile)
	users.PATCH("/me", userHandler.UpdateProfile)
}
