package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"petmatch/internal/domain/entity"
	"petmatch/internal/domain/repository"
	"petmatch/internal/domain/service"
	ws "petmatch/internal/infrastructure/websocket"
	"petmatch/pkg/errors"
)

// welcomeMessageTemplate is interpolated with the sender's and the accepter's
// resolved display names, in that order.
const welcomeMessageTemplate = "Tebrikler! %s ve %s eşleşti. Sohbete başlayabilirsiniz 🐾"

type ConversationUseCase struct {
	conversationRepo repository.ConversationRepository
	petResolver      *service.PetResolver
	identityResolver *service.IdentityResolver
	wsManager        *ws.Manager
}

func NewConversationUseCase(
	conversationRepo repository.ConversationRepository,
	petResolver *service.PetResolver,
	identityResolver *service.IdentityResolver,
	wsManager *ws.Manager,
) *ConversationUseCase {
	return &ConversationUseCase{
		conversationRepo: conversationRepo,
		petResolver:      petResolver,
		identityResolver: identityResolver,
		wsManager:        wsManager,
	}
}

type SendMessageInput struct {
	ConversationID string
	Text           string
}

// ConversationIDForMatch derives the conversation id deterministically from
// the match id. Re-running acceptance for the same match, including two
// concurrent accepts, converges on the same conversation document instead of
// materializing a duplicate.
func ConversationIDForMatch(matchID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("petmatch:match:"+matchID)).String()
}

// MaterializeFromMatch turns an accepted match into a durable conversation
// with its welcome message. The store has no cross-document transaction, so
// the two writes (conversation, then message) are sequential and a failure
// between them is surfaced to the caller; re-invocation repairs the gap via
// the deterministic id check.
func (uc *ConversationUseCase) MaterializeFromMatch(ctx context.Context, match *entity.Match, accepterID string) (*entity.Conversation, error) {
	conversationID := ConversationIDForMatch(match.ID)

	existing, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err == nil {
		// Already materialized: ensure the welcome message survived the
		// previous run, then short-circuit.
		if err := uc.ensureWelcomeMessage(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	senderPet := uc.petResolver.Resolve(ctx, match.SenderID, match.PetID)
	// The match record never recorded which of the accepter's pets is
	// involved, so resolution falls through active-pet / first-pet.
	accepterPet := uc.petResolver.Resolve(ctx, accepterID, "")

	senderName := uc.identityResolver.Resolve(ctx, match.SenderID, match.SenderName)
	accepterName := uc.identityResolver.Resolve(ctx, accepterID, "")

	welcomeText := fmt.Sprintf(welcomeMessageTemplate, senderName, accepterName)
	now := time.Now()

	conversation := &entity.Conversation{
		ID:           conversationID,
		MatchID:      match.ID,
		Participants: []string{match.SenderID, match.ReceiverID},
		Status:       "active",
		LastMessage:  welcomeText,
		LastMessageAt: now,
		PetInfo: map[string]entity.PetSnapshot{
			match.SenderID:   senderPet,
			match.ReceiverID: accepterPet,
		},
		// Each participant's entry describes the counterpart, never
		// themselves.
		UserMatchDetails: map[string]entity.MatchDetails{
			match.SenderID: {
				PartnerID:   match.ReceiverID,
				PartnerName: accepterName,
				PetID:       accepterPet.ID,
				PetName:     accepterPet.Name,
				PetType:     accepterPet.Type,
				PetBreed:    accepterPet.Breed,
				PetPhoto:    accepterPet.Photo,
			},
			match.ReceiverID: {
				PartnerID:   match.SenderID,
				PartnerName: senderName,
				PetID:       senderPet.ID,
				PetName:     senderPet.Name,
				PetType:     senderPet.Type,
				PetBreed:    senderPet.Breed,
				PetPhoto:    senderPet.Photo,
			},
		},
		AcceptedBy: entity.AcceptedBy{UserID: accepterID, PetID: accepterPet.ID},
	}

	if err := uc.conversationRepo.Create(ctx, conversation); err != nil {
		log.Printf("MaterializeFromMatch Error: Failed to create conversation for match %s: %v", match.ID, err)
		return nil, err
	}

	welcome := &entity.Message{
		ConversationID: conversation.ID,
		SenderID:       entity.SystemSenderID,
		Text:           welcomeText,
		Type:           "system",
		Read:           false,
		CreatedAt:      now,
	}

	if err := uc.conversationRepo.CreateMessage(ctx, welcome); err != nil {
		// The conversation exists without its welcome message until the
		// caller retries; no compensation against the non-transactional store.
		log.Printf("MaterializeFromMatch Error: Failed to create welcome message for conversation %s: %v", conversation.ID, err)
		return nil, err
	}

	return conversation, nil
}

// ensureWelcomeMessage re-writes the welcome message for a conversation left
// message-less by a crash between the two materialization writes. The welcome
// text is recovered from lastMessage, which was set in the same write that
// created the conversation.
func (uc *ConversationUseCase) ensureWelcomeMessage(ctx context.Context, conversation *entity.Conversation) error {
	count, err := uc.conversationRepo.CountMessages(ctx, conversation.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Printf("ensureWelcomeMessage: conversation %s has no messages, repairing welcome message", conversation.ID)

	welcome := &entity.Message{
		ConversationID: conversation.ID,
		SenderID:       entity.SystemSenderID,
		Text:           conversation.LastMessage,
		Type:           "system",
		Read:           false,
	}
	return uc.conversationRepo.CreateMessage(ctx, welcome)
}

func (uc *ConversationUseCase) GetUserConversations(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	conversations, total, err := uc.conversationRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		log.Printf("GetUserConversations Error: Failed to list conversations for user %s: %v", userID, err)
		return nil, 0, err
	}

	return conversations, total, nil
}

func (uc *ConversationUseCase) GetConversationByID(ctx context.Context, userID, conversationID string) (*entity.Conversation, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conversation.HasParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	return conversation, nil
}

func (uc *ConversationUseCase) GetConversationMessages(ctx context.Context, userID, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	if _, err := uc.GetConversationByID(ctx, userID, conversationID); err != nil {
		return nil, 0, err
	}

	messages, total, err := uc.conversationRepo.GetMessagesByConversation(ctx, conversationID, limit, offset)
	if err != nil {
		log.Printf("GetConversationMessages Error: Failed to get messages for conversation %s: %v", conversationID, err)
		return nil, 0, err
	}

	return messages, total, nil
}

func (uc *ConversationUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*entity.Message, error) {
	conversation, err := uc.GetConversationByID(ctx, userID, input.ConversationID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ConversationID: conversation.ID,
		SenderID:       userID,
		Text:           input.Text,
		Type:           "text",
		Read:           false,
		CreatedAt:      time.Now(),
	}

	if err := uc.conversationRepo.CreateMessage(ctx, message); err != nil {
		log.Printf("SendMessage Error: Failed to create message for conversation %s: %v", conversation.ID, err)
		return nil, err
	}

	conversation.LastMessage = message.Text
	conversation.LastMessageAt = message.CreatedAt
	if err := uc.conversationRepo.Update(ctx, conversation); err != nil {
		log.Printf("SendMessage Error: Failed to update conversation %s with last message: %v", conversation.ID, err)
		return nil, err
	}

	notification := map[string]interface{}{
		"type":            "new_message",
		"conversation_id": conversation.ID,
		"message":         message,
	}
	notificationJSON, _ := json.Marshal(notification)
	for _, participantID := range conversation.Participants {
		if participantID != userID {
			uc.wsManager.SendToUser(participantID, notificationJSON)
		}
	}

	return message, nil
}

func (uc *ConversationUseCase) MarkConversationRead(ctx context.Context, userID, conversationID string) error {
	if _, err := uc.GetConversationByID(ctx, userID, conversationID); err != nil {
		return err
	}

	return uc.conversationRepo.MarkMessagesRead(ctx, conversationID, userID)
}
