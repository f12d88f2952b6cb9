package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"petmatch/internal/usecase"
	"petmatch/pkg/response"
	"petmatch/pkg/utils"
)

type MatchHandler struct {
	matchUseCase *usecase.MatchUseCase
}

func NewMatchHandler(matchUseCase *usecase.MatchUseCase) *MatchHandler {
	return &MatchHandler{
		matchUseCase: matchUseCase,
	}
}

type createMatchRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	PetID      string `json:"pet_id"`
	Message    string `json:"message" validate:"max=500"`
}

// CreateMatch sends a match request to another user
func (h *MatchHandler) CreateMatch(c echo.Context) error {
	var req createMatchRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	match, err := h.matchUseCase.CreateMatch(c.Request().Context(), userID, usecase.CreateMatchInput{
		ReceiverID: req.ReceiverID,
		PetID:      req.PetID,
		Message:    req.Message,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, match)
}

// ListMatches gets all matches for the authenticated user
func (h *MatchHandler) ListMatches(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	matches, total, err := h.matchUseCase.ListMatches(c.Request().Context(), userID, pagination.Limit, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, matches, total, pagination.Limit, pagination.Offset)
}

// GetMatchByID gets a specific match by ID
func (h *MatchHandler) GetMatchByID(c echo.Context) error {
	matchID := c.Param("id")
	userID := c.Get("uid").(string)

	match, err := h.matchUseCase.GetMatchByID(c.Request().Context(), userID, matchID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, match)
}

// AcceptMatch accepts a pending match request and returns the materialized
// conversation alongside the updated match
func (h *MatchHandler) AcceptMatch(c echo.Context) error {
	matchID := c.Param("id")
	userID := c.Get("uid").(string)

	result, err := h.matchUseCase.HandleMatchAction(c.Request().Context(), userID, matchID, usecase.MatchActionAccept)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

// RejectMatch rejects a pending match request
func (h *MatchHandler) RejectMatch(c echo.Context) error {
	matchID := c.Param("id")
	userID := c.Get("uid").(string)

	result, err := h.matchUseCase.HandleMatchAction(c.Request().Context(), userID, matchID, usecase.MatchActionReject)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

// DeleteMatch removes a match regardless of its status
func (h *MatchHandler) DeleteMatch(c echo.Context) error {
	matchID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.matchUseCase.DeleteMatch(c.Request().Context(), userID, matchID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
