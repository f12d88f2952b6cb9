package router

import (
	"github.com/labstack/echo/v4"

	"petmatch/internal/adapter/api/handler"
	"petmatch/internal/adapter/api/middleware"
)

// SetupMatchRouter sets up all match-related routes
func SetupMatchRouter(e *echo.Echo, matchHandler *handler.MatchHandler, authMiddleware *middleware.AuthMiddleware) {
	matchGroup := e.Group("/v1/matches")
	matchGroup.Use(authMiddleware.Authenticate)

	matchGroup.POST("", matchHandler.CreateMatch)        // POST /v1/matches - Send match request
	matchGroup.GET("", matchHandler.ListMatches)         // GET /v1/matches - List user's matches
	matchGroup.GET("/:id", matchHandler.GetMatchByID)    // GET /v1/matches/:id - Get specific match
	matchGroup.POST("/:id/accept", matchHandler.AcceptMatch) // POST /v1/matches/:id/accept
	matchGroup.POST("/:id/reject", matchHandler.RejectMatch) // POST /v1/matches/:id/reject
	matchGroup.DELETE("/:id", matchHandler.DeleteMatch)  // DELETE /v1/matches/:id - Remove match
}
