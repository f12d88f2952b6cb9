package router

import (
	"github.com/labstack/echo/v4"

	"petmatch/internal/adapter/api/handler"
	"petmatch/internal/adapter/api/middleware"
)

// SetupConversationRouter sets up all conversation-related routes (excluding WebSocket)
func SetupConversationRouter(e *echo.Echo, conversationHandler *handler.ConversationHandler, authMiddleware *middleware.AuthMiddleware) {
	conversationGroup := e.Group("/v1/conversations")
	conversationGroup.Use(authMiddleware.Authenticate)

	conversationGroup.GET("", conversationHandler.GetUserConversations)       // GET /v1/conversations
	conversationGroup.GET("/:id", conversationHandler.GetConversationByID)    // GET /v1/conversations/:id
	conversationGroup.PUT("/:id/read", conversationHandler.MarkConversationRead) // PUT /v1/conversations/:id/read

	conversationGroup.POST("/:id/messages", conversationHandler.SendMessage)           // POST /v1/conversations/:id/messages
	conversationGroup.GET("/:id/messages", conversationHandler.GetConversationMessages) // GET /v1/conversations/:id/messages
}
