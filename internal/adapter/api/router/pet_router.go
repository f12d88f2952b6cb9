package router

import (
	"github.com/labstack/echo/v4"

	"petmatch/internal/adapter/api/handler"
	"petmatch/internal/adapter/api/middleware"
)

func SetupPetRouter(e *echo.Echo, petHandler *handler.PetHandler, authMiddleware *middleware.AuthMiddleware) {
	pets := e.Group("/v1/pets")
	pets.Use(authMiddleware.Authenticate)

	pets.POST("", petHandler.CreatePet)
	pets.GET("", petHandler.ListPets)
	pets.GET("/:id", petHandler.GetPet)
	pets.PATCH("/:id", petHandler.UpdatePet)
	pets.DELETE("/:id", petHandler.DeletePet)
	pets.PUT("/:id/activate", petHandler.SetActivePet)
	pets.POST("/:id/photo", petHandler.UploadPetPhoto)
}
