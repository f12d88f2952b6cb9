package usecase

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"petmatch/internal/domain/entity"
	"petmatch/internal/domain/repository"
	"petmatch/internal/domain/service"
	"petmatch/internal/infrastructure/ratelimit"
	ws "petmatch/internal/infrastructure/websocket"
	"petmatch/pkg/errors"
	"petmatch/pkg/logger"
)

const (
	MatchActionAccept = "accept"
	MatchActionReject = "reject"
)

// MatchUseCase owns the match lifecycle: creation, the pending →
// accepted/rejected transitions, unconditional deletion, and the live feed
// cache the action handlers read from.
type MatchUseCase struct {
	matchRepo        repository.MatchRepository
	conversationUC   *ConversationUseCase
	petResolver      *service.PetResolver
	identityResolver *service.IdentityResolver
	wsManager        *ws.Manager
	rateLimiter      *ratelimit.RateLimiter

	mu          sync.RWMutex
	cache       map[string]*entity.Match
	cachePrimed bool
}

func NewMatchUseCase(
	matchRepo repository.MatchRepository,
	conversationUC *ConversationUseCase,
	petResolver *service.PetResolver,
	identityResolver *service.IdentityResolver,
	wsManager *ws.Manager,
) *MatchUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &MatchUseCase{
		matchRepo:        matchRepo,
		conversationUC:   conversationUC,
		petResolver:      petResolver,
		identityResolver: identityResolver,
		wsManager:        wsManager,
		rateLimiter:      rateLimiter,
		cache:            make(map[string]*entity.Match),
	}
}

type CreateMatchInput struct {
	ReceiverID string
	PetID      string
	Message    string
}

type MatchActionResult struct {
	Match          *entity.Match        `json:"match"`
	Conversation   *entity.Conversation `json:"conversation,omitempty"`
	AlreadyHandled bool                 `json:"already_handled,omitempty"`
}

// CreateMatch is the sending flow: it snapshots the sender's pet and cached
// display name into the match record at creation time. The snapshot is never
// re-synced afterwards.
func (uc *MatchUseCase) CreateMatch(ctx context.Context, senderID string, input CreateMatchInput) (*entity.Match, error) {
	allowed, waitTime := uc.rateLimiter.Allow(senderID, "create_match")
	if !allowed {
		log.Printf("CreateMatch Rate Limited: User %s must wait %v", senderID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another match request", waitTime)
	}

	if senderID == input.ReceiverID {
		return nil, errors.BadRequest("You cannot send a match request to yourself", nil)
	}

	petInfo := uc.petResolver.Resolve(ctx, senderID, input.PetID)
	senderName := uc.identityResolver.Resolve(ctx, senderID, "")

	match := &entity.Match{
		SenderID:   senderID,
		ReceiverID: input.ReceiverID,
		PetID:      input.PetID,
		SenderName: senderName,
		Status:     entity.MatchStatusPending,
		Message:    input.Message,
		PetInfo:    petInfo,
	}

	if err := uc.matchRepo.Create(ctx, match); err != nil {
		logger.LogMatchError(match.ID, "create", err)
		return nil, err
	}

	uc.storeInCache(match)
	uc.notifyUser(input.ReceiverID, map[string]interface{}{
		"type":  "match_request",
		"match": match,
	})

	return match, nil
}

// HandleMatchAction dispatches a user-facing accept/reject on a match. The
// match is read from the live feed cache, falling back to a store read when
// the cache is cold. Every invocation ends in exactly one success or failure
// notification to the acting user.
func (uc *MatchUseCase) HandleMatchAction(ctx context.Context, userID, matchID, action string) (*MatchActionResult, error) {
	match, err := uc.loadMatch(ctx, matchID)
	if err != nil {
		uc.notifyFailure(userID, matchID, action, err)
		return nil, err
	}

	if match.ReceiverID != userID {
		err := errors.Forbidden("Only the receiving user can respond to a match request", nil)
		uc.notifyFailure(userID, matchID, action, err)
		return nil, err
	}

	var result *MatchActionResult
	switch action {
	case MatchActionAccept:
		result, err = uc.accept(ctx, match, userID)
	case MatchActionReject:
		result, err = uc.reject(ctx, match)
	default:
		err = errors.BadRequest("Unknown match action: "+action, nil)
	}

	if err != nil {
		uc.notifyFailure(userID, matchID, action, err)
		return nil, err
	}

	uc.notifyUser(userID, map[string]interface{}{
		"type":     "match_action_done",
		"match_id": matchID,
		"action":   action,
		"match":    result.Match,
	})
	return result, nil
}

// accept runs the acceptance workflow: materialize the conversation first,
// then link it onto the match. Writes are strictly ordered (conversation →
// welcome message → match update) so a reader who observes the match pointing
// at a conversation can rely on that conversation existing with at least its
// welcome message. The reverse is not guaranteed: a failed match update
// leaves an orphaned conversation and a still-pending match until retry.
func (uc *MatchUseCase) accept(ctx context.Context, match *entity.Match, accepterID string) (*MatchActionResult, error) {
	// Re-accepting an already-accepted match is a no-op returning the
	// existing conversation.
	if match.Status == entity.MatchStatusAccepted && match.ConversationID != "" {
		conversation, err := uc.conversationUC.GetConversationByID(ctx, accepterID, match.ConversationID)
		if err != nil {
			return nil, err
		}
		return &MatchActionResult{Match: match, Conversation: conversation, AlreadyHandled: true}, nil
	}

	if match.Status != entity.MatchStatusPending {
		return nil, errors.Conflict("Match is not pending")
	}

	conversation, err := uc.conversationUC.MaterializeFromMatch(ctx, match, accepterID)
	if err != nil {
		logger.LogMatchError(match.ID, "accept", err)
		return nil, err
	}

	acceptedBy := &entity.AcceptedBy{UserID: accepterID, PetID: conversation.AcceptedBy.PetID}
	err = uc.matchRepo.UpdateFields(ctx, match.ID, map[string]interface{}{
		"status":         entity.MatchStatusAccepted,
		"conversationId": conversation.ID,
		"acceptedBy":     acceptedBy,
	})
	if err != nil {
		// Known bounded inconsistency: the conversation exists but the match
		// does not point at it yet. Recovery is retry-driven.
		logger.LogMatchError(match.ID, "accept", err)
		return nil, err
	}

	updated := *match
	updated.Status = entity.MatchStatusAccepted
	updated.ConversationID = conversation.ID
	updated.AcceptedBy = acceptedBy
	updated.UpdatedAt = time.Now()
	uc.storeInCache(&updated)

	uc.notifyUser(match.SenderID, map[string]interface{}{
		"type":            "match_accepted",
		"match_id":        match.ID,
		"conversation_id": conversation.ID,
	})

	return &MatchActionResult{Match: &updated, Conversation: conversation}, nil
}

// reject flips a pending match to rejected. No side effects on other
// entities.
func (uc *MatchUseCase) reject(ctx context.Context, match *entity.Match) (*MatchActionResult, error) {
	if match.Status != entity.MatchStatusPending {
		return nil, errors.Conflict("Match is not pending")
	}

	err := uc.matchRepo.UpdateFields(ctx, match.ID, map[string]interface{}{
		"status": entity.MatchStatusRejected,
	})
	if err != nil {
		logger.LogMatchError(match.ID, "reject", err)
		return nil, err
	}

	updated := *match
	updated.Status = entity.MatchStatusRejected
	updated.UpdatedAt = time.Now()
	uc.storeInCache(&updated)

	return &MatchActionResult{Match: &updated}, nil
}

// DeleteMatch removes the match unconditionally, from any status. It does not
// cascade to an already-created conversation.
func (uc *MatchUseCase) DeleteMatch(ctx context.Context, userID, matchID string) error {
	match, err := uc.loadMatch(ctx, matchID)
	if err != nil {
		uc.notifyFailure(userID, matchID, "delete", err)
		return err
	}

	if !match.Involves(userID) {
		err := errors.Forbidden("Only a participant can delete a match", nil)
		uc.notifyFailure(userID, matchID, "delete", err)
		return err
	}

	if err := uc.matchRepo.Delete(ctx, matchID); err != nil {
		logger.LogMatchError(matchID, "delete", err)
		uc.notifyFailure(userID, matchID, "delete", err)
		return err
	}

	uc.mu.Lock()
	delete(uc.cache, matchID)
	uc.mu.Unlock()

	uc.notifyUser(userID, map[string]interface{}{
		"type":     "match_action_done",
		"match_id": matchID,
		"action":   "delete",
	})
	return nil
}

// ListMatches returns the matches where the user is sender or receiver,
// newest first. Served from the feed cache once the listener has primed it.
func (uc *MatchUseCase) ListMatches(ctx context.Context, userID string, limit, offset int) ([]*entity.Match, int64, error) {
	uc.mu.RLock()
	primed := uc.cachePrimed
	var mine []*entity.Match
	if primed {
		for _, match := range uc.cache {
			if match.Involves(userID) {
				mine = append(mine, match)
			}
		}
	}
	uc.mu.RUnlock()

	if !primed {
		return uc.matchRepo.ListByUserID(ctx, userID, limit, offset)
	}

	sort.Slice(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})

	total := int64(len(mine))
	start := offset
	if start > len(mine) {
		start = len(mine)
	}
	end := len(mine)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return mine[start:end], total, nil
}

func (uc *MatchUseCase) GetMatchByID(ctx context.Context, userID, matchID string) (*entity.Match, error) {
	match, err := uc.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(userID) {
		return nil, errors.Forbidden("User is not a participant in this match", nil)
	}
	return match, nil
}

// StartMatchFeed subscribes to the matches change feed, keeps the in-memory
// cache current, and fans change events out to both participants. Restarts
// the listener on failure until ctx is cancelled.
func (uc *MatchUseCase) StartMatchFeed(ctx context.Context) {
	go func() {
		for {
			err := uc.matchRepo.Listen(ctx, uc.applyChange)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				logger.Error("Match feed listener failed, restarting: %v", err)
				time.Sleep(2 * time.Second)
				continue
			}
			return
		}
	}()
}

func (uc *MatchUseCase) applyChange(change repository.MatchChange) {
	uc.mu.Lock()
	uc.cachePrimed = true
	switch change.Kind {
	case repository.MatchRemoved:
		delete(uc.cache, change.Match.ID)
	default:
		uc.cache[change.Match.ID] = change.Match
	}
	uc.mu.Unlock()

	event := "modified"
	switch change.Kind {
	case repository.MatchAdded:
		event = "added"
	case repository.MatchRemoved:
		event = "removed"
	}

	payload := map[string]interface{}{
		"type":  "match_feed",
		"event": event,
		"match": change.Match,
	}
	notificationJSON, _ := json.Marshal(payload)
	uc.wsManager.SendToUser(change.Match.SenderID, notificationJSON)
	uc.wsManager.SendToUser(change.Match.ReceiverID, notificationJSON)
}

// loadMatch prefers the live feed cache over a fresh store read.
func (uc *MatchUseCase) loadMatch(ctx context.Context, matchID string) (*entity.Match, error) {
	uc.mu.RLock()
	match, ok := uc.cache[matchID]
	uc.mu.RUnlock()
	if ok {
		copied := *match
		return &copied, nil
	}

	return uc.matchRepo.GetByID(ctx, matchID)
}

func (uc *MatchUseCase) storeInCache(match *entity.Match) {
	uc.mu.Lock()
	uc.cache[match.ID] = match
	uc.mu.Unlock()
}

func (uc *MatchUseCase) notifyUser(userID string, payload map[string]interface{}) {
	notificationJSON, _ := json.Marshal(payload)
	uc.wsManager.SendToUser(userID, notificationJSON)
}

func (uc *MatchUseCase) notifyFailure(userID, matchID, action string, err error) {
	uc.notifyUser(userID, map[string]interface{}{
		"type":     "match_action_failed",
		"match_id": matchID,
		"action":   action,
		"error":    err.Error(),
	})
}
