package router

import (
	"github.com/labstack/echo/v4"

	"petmatch/internal/adapter/api/handler"
	"petmatch/internal/adapter/api/middleware"
)

type Handlers struct {
	User         *handler.UserHandler
	Pet          *handler.PetHandler
	Match        *handler.MatchHandler
	Conversation *handler.ConversationHandler
	WebSocket    *handler.WebSocketHandler
	Health       *handler.HealthHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	SetupUserRouter(e, h.User, authMiddleware)
	SetupPetRouter(e, h.Pet, authMiddleware)
	SetupMatchRouter(e, h.Match, authMiddleware)
	SetupConversationRouter(e, h.Conversation, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket)
	SetupHealthRouter(e, h.Health)
}
