package repository

import (
	"context"

	"petmatch/internal/domain/entity"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error)
	Update(ctx context.Context, conversation *entity.Conversation) error

	// Message methods (messages live in a subcollection under the conversation)
	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)
	CountMessages(ctx context.Context, conversationID string) (int64, error)
	MarkMessagesRead(ctx context.Context, conversationID, readerID string) error
}
