package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"petmatch/internal/usecase"
	"petmatch/pkg/errors"
	"petmatch/pkg/response"
)

type PetHandler struct {
	petUseCase *usecase.PetUseCase
}

func NewPetHandler(petUseCase *usecase.PetUseCase) *PetHandler {
	return &PetHandler{
		petUseCase: petUseCase,
	}
}

type petRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Type   string `json:"type" validate:"required,oneof=dog cat bird rabbit other"`
	Breed  string `json:"breed" validate:"max=100"`
	Age    int    `json:"age" validate:"min=0,max=50"`
	Gender string `json:"gender" validate:"omitempty,oneof=male female"`
	Photo  string `json:"photo" validate:"omitempty,url"`
}

// CreatePet registers a new pet for the authenticated user
func (h *PetHandler) CreatePet(c echo.Context) error {
	var req petRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	pet, err := h.petUseCase.CreatePet(c.Request().Context(), userID, usecase.PetInput{
		Name:   req.Name,
		Type:   req.Type,
		Breed:  req.Breed,
		Age:    req.Age,
		Gender: req.Gender,
		Photo:  req.Photo,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, pet)
}

// ListPets gets all pets of the authenticated user
func (h *PetHandler) ListPets(c echo.Context) error {
	userID := c.Get("uid").(string)

	pets, err := h.petUseCase.ListPets(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, pets)
}

// GetPet gets a specific pet by ID
func (h *PetHandler) GetPet(c echo.Context) error {
	petID := c.Param("id")
	userID := c.Get("uid").(string)

	pet, err := h.petUseCase.GetPet(c.Request().Context(), userID, petID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, pet)
}

// UpdatePet updates a pet's profile
func (h *PetHandler) UpdatePet(c echo.Context) error {
	petID := c.Param("id")
	userID := c.Get("uid").(string)

	var req petRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	pet, err := h.petUseCase.UpdatePet(c.Request().Context(), userID, petID, usecase.PetInput{
		Name:   req.Name,
		Type:   req.Type,
		Breed:  req.Breed,
		Age:    req.Age,
		Gender: req.Gender,
		Photo:  req.Photo,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, pet)
}

// DeletePet removes a pet
func (h *PetHandler) DeletePet(c echo.Context) error {
	petID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.petUseCase.DeletePet(c.Request().Context(), userID, petID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SetActivePet marks a pet as the user's active pet
func (h *PetHandler) SetActivePet(c echo.Context) error {
	petID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.petUseCase.SetActivePet(c.Request().Context(), userID, petID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"active_pet_id": petID})
}

// UploadPetPhoto uploads a photo for a pet via multipart form
func (h *PetHandler) UploadPetPhoto(c echo.Context) error {
	petID := c.Param("id")
	userID := c.Get("uid").(string)

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return response.Error(c, errors.BadRequest("Photo file is required", err))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read uploaded file", err))
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	pet, err := h.petUseCase.UploadPetPhoto(c.Request().Context(), userID, petID, file, contentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, pet)
}
