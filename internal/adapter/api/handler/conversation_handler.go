package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"petmatch/internal/usecase"
	"petmatch/pkg/response"
	"petmatch/pkg/utils"
)

type ConversationHandler struct {
	conversationUseCase *usecase.ConversationUseCase
}

func NewConversationHandler(conversationUseCase *usecase.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{
		conversationUseCase: conversationUseCase,
	}
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// GetUserConversations gets all conversations for the authenticated user
func (h *ConversationHandler) GetUserConversations(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	conversations, total, err := h.conversationUseCase.GetUserConversations(c.Request().Context(), userID, pagination.Limit, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, conversations, total, pagination.Limit, pagination.Offset)
}

// GetConversationByID gets a specific conversation by ID
func (h *ConversationHandler) GetConversationByID(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	conversation, err := h.conversationUseCase.GetConversationByID(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

// GetConversationMessages gets messages for a specific conversation
func (h *ConversationHandler) GetConversationMessages(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	messages, total, err := h.conversationUseCase.GetConversationMessages(c.Request().Context(), userID, conversationID, pagination.Limit, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, pagination.Limit, pagination.Offset)
}

// SendMessage sends a message to a conversation
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.conversationUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ConversationID: conversationID,
		Text:           req.Text,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// MarkConversationRead marks a conversation as read for the authenticated user
func (h *ConversationHandler) MarkConversationRead(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.conversationUseCase.MarkConversationRead(c.Request().Context(), userID, conversationID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}
