package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmatch/internal/domain/entity"
	"petmatch/internal/domain/repository"
	"petmatch/internal/domain/service"
	"petmatch/internal/infrastructure/websocket"
	"petmatch/pkg/errors"
)

type memMatchRepo struct {
	mu         sync.Mutex
	matches    map[string]*entity.Match
	failUpdate bool
	seq        int
}

func newMemMatchRepo() *memMatchRepo {
	return &memMatchRepo{matches: make(map[string]*entity.Match)}
}

func (r *memMatchRepo) Create(ctx context.Context, match *entity.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if match.ID == "" {
		r.seq++
		match.ID = fmt.Sprintf("match-%d", r.seq)
	}
	match.CreatedAt = time.Now()
	match.UpdatedAt = match.CreatedAt

	stored := *match
	r.matches[match.ID] = &stored
	return nil
}

func (r *memMatchRepo) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	match, ok := r.matches[id]
	if !ok {
		return nil, errors.NotFound("Match", nil)
	}
	copied := *match
	return &copied, nil
}

func (r *memMatchRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Match, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mine []*entity.Match
	for _, match := range r.matches {
		if match.Involves(userID) {
			copied := *match
			mine = append(mine, &copied)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	return mine, int64(len(mine)), nil
}

func (r *memMatchRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failUpdate {
		return errors.Internal("store unavailable", nil)
	}

	match, ok := r.matches[id]
	if !ok {
		return errors.NotFound("Match", nil)
	}

	if v, ok := fields["status"].(entity.MatchStatus); ok {
		match.Status = v
	}
	if v, ok := fields["conversationId"].(string); ok {
		match.ConversationID = v
	}
	if v, ok := fields["acceptedBy"].(*entity.AcceptedBy); ok {
		match.AcceptedBy = v
	}
	match.UpdatedAt = time.Now()
	return nil
}

func (r *memMatchRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.matches[id]; !ok {
		return errors.NotFound("Match", nil)
	}
	delete(r.matches, id)
	return nil
}

func (r *memMatchRepo) Listen(ctx context.Context, fn func(repository.MatchChange)) error {
	<-ctx.Done()
	return ctx.Err()
}

type memConversationRepo struct {
	mu                sync.Mutex
	conversations     map[string]*entity.Conversation
	messages          map[string][]*entity.Message
	failCreateMessage bool
	msgSeq            int
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
	}
}

func (r *memConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation.CreatedAt = time.Now()
	conversation.UpdatedAt = conversation.CreatedAt
	stored := *conversation
	r.conversations[conversation.ID] = &stored
	return nil
}

func (r *memConversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	copied := *conversation
	return &copied, nil
}

func (r *memConversationRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mine []*entity.Conversation
	for _, conversation := range r.conversations {
		if conversation.HasParticipant(userID) {
			copied := *conversation
			mine = append(mine, &copied)
		}
	}
	return mine, int64(len(mine)), nil
}

func (r *memConversationRepo) Update(ctx context.Context, conversation *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[conversation.ID]; !ok {
		return errors.NotFound("Conversation", nil)
	}
	conversation.UpdatedAt = time.Now()
	stored := *conversation
	r.conversations[conversation.ID] = &stored
	return nil
}

func (r *memConversationRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreateMessage {
		return errors.Internal("store unavailable", nil)
	}

	if message.ID == "" {
		r.msgSeq++
		message.ID = fmt.Sprintf("msg-%d", r.msgSeq)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	stored := *message
	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], &stored)
	return nil
}

func (r *memConversationRepo) GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages := r.messages[conversationID]
	return messages, int64(len(messages)), nil
}

func (r *memConversationRepo) CountMessages(ctx context.Context, conversationID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.messages[conversationID])), nil
}

func (r *memConversationRepo) MarkMessagesRead(ctx context.Context, conversationID, readerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, message := range r.messages[conversationID] {
		if message.SenderID != readerID {
			message.Read = true
		}
	}
	return nil
}

type memPetRepo struct {
	pets map[string][]*entity.Pet
}

func newMemPetRepo() *memPetRepo {
	return &memPetRepo{pets: make(map[string][]*entity.Pet)}
}

func (r *memPetRepo) add(pet *entity.Pet) {
	r.pets[pet.OwnerID] = append(r.pets[pet.OwnerID], pet)
}

func (r *memPetRepo) Create(ctx context.Context, pet *entity.Pet) error {
	r.add(pet)
	return nil
}

func (r *memPetRepo) GetByID(ctx context.Context, ownerID, petID string) (*entity.Pet, error) {
	for _, pet := range r.pets[ownerID] {
		if pet.ID == petID {
			return pet, nil
		}
	}
	return nil, errors.NotFound("Pet", nil)
}

func (r *memPetRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Pet, error) {
	return r.pets[ownerID], nil
}

func (r *memPetRepo) Update(ctx context.Context, pet *entity.Pet) error { return nil }

func (r *memPetRepo) Delete(ctx context.Context, ownerID, petID string) error { return nil }

type memUserRepo struct {
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*entity.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *memUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	user, ok := r.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	if v, ok := fields["activePetId"].(string); ok {
		user.ActivePetID = v
	}
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	delete(r.users, id)
	return nil
}

type matchEnv struct {
	matchRepo *memMatchRepo
	convRepo  *memConversationRepo
	petRepo   *memPetRepo
	userRepo  *memUserRepo
	convUC    *ConversationUseCase
	uc        *MatchUseCase
}

// newMatchEnv wires a full match workflow over in-memory stores with two
// users: sender u-ayse with pet p-rex, receiver u-mehmet with pet p-mia.
func newMatchEnv() *matchEnv {
	matchRepo := newMemMatchRepo()
	convRepo := newMemConversationRepo()
	petRepo := newMemPetRepo()
	userRepo := newMemUserRepo()

	userRepo.Create(context.Background(), &entity.User{ID: "u-ayse", FirstName: "Ayşe", LastName: "Yılmaz"})
	userRepo.Create(context.Background(), &entity.User{ID: "u-mehmet", DisplayName: "Mehmet"})
	petRepo.add(&entity.Pet{ID: "p-rex", OwnerID: "u-ayse", Name: "Rex", Type: "dog", Breed: "Kangal", Photo: "rex.jpg"})
	petRepo.add(&entity.Pet{ID: "p-mia", OwnerID: "u-mehmet", Name: "Mia", Type: "cat"})

	petResolver := service.NewPetResolver(petRepo, userRepo)
	identityResolver := service.NewIdentityResolver(userRepo)
	wsManager := websocket.NewManager()

	convUC := NewConversationUseCase(convRepo, petResolver, identityResolver, wsManager)
	uc := NewMatchUseCase(matchRepo, convUC, petResolver, identityResolver, wsManager)

	return &matchEnv{
		matchRepo: matchRepo,
		convRepo:  convRepo,
		petRepo:   petRepo,
		userRepo:  userRepo,
		convUC:    convUC,
		uc:        uc,
	}
}

func (env *matchEnv) createMatch(t *testing.T) *entity.Match {
	t.Helper()
	match, err := env.uc.CreateMatch(context.Background(), "u-ayse", CreateMatchInput{
		ReceiverID: "u-mehmet",
		PetID:      "p-rex",
		Message:    "Merhaba!",
	})
	require.NoError(t, err)
	return match
}

func TestCreateMatchSnapshotsSenderPet(t *testing.T) {
	env := newMatchEnv()

	match := env.createMatch(t)

	assert.Equal(t, entity.MatchStatusPending, match.Status)
	assert.Equal(t, "Rex", match.PetInfo.Name)
	assert.Equal(t, "rex.jpg", match.PetInfo.Photo)
	assert.Equal(t, "Ayşe Yılmaz", match.SenderName)
	assert.Empty(t, match.ConversationID)
}

func TestCreateMatchRejectsSelf(t *testing.T) {
	env := newMatchEnv()

	_, err := env.uc.CreateMatch(context.Background(), "u-ayse", CreateMatchInput{ReceiverID: "u-ayse"})

	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestAcceptMatchMaterializesConversation(t *testing.T) {
	env := newMatchEnv()
	match := env.createMatch(t)

	result, err := env.uc.HandleMatchAction(context.Background(), "u-mehmet", match.ID, MatchActionAccept)
	require.NoError(t, err)

	assert.Equal(t, entity.MatchStatusAccepted, result.Match.Status)
	require.NotNil(t, result.Conversation)
	assert.Equal(t, result.Conversation.ID, result.Match.ConversationID)
	require.NotNil(t, result.Match.AcceptedBy)
	assert.Equal(t, "u-mehmet", result.Match.AcceptedBy.UserID)
	assert.Equal(t, "p-mia", result.Match.AcceptedBy.PetID)

	// The stored match carries the link too, not just the returned copy.
	stored, err := env.matchRepo.GetByID(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Conversation.ID, stored.ConversationID)

	// Exactly one welcome message from the system sender.
	messages, total, err := env.convRepo.GetMessagesByConversation(context.Background(), result.Conversation.ID, 50, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.True(t, messages[0].IsSystem())
	assert.Equal(t, "Tebrikler! Ayşe Yılmaz ve Mehmet eşleşti. Sohbete başlayabilirsiniz 🐾", messages[0].Text)
}

func TestAcceptMatchIsReceiverOnly(t *testing.T) {
	env := newMatchEnv()
	match := env.createMatch(t)

	_, err := env.uc.HandleMatchAction(context.Background(), "u-ayse", match.ID, MatchActionAccept)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = env.uc.HandleMatchAction(context.Background(), "u-stranger", match.ID, MatchActionAccept)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestReAcceptIsNoOp(t *testing.T) {
	env := newMatchEnv()
	match := env.createMatch(t)

	first, err := env.uc.HandleMatchAction(context.Background(), "u-mehmet", match.ID, MatchActionAccept)
	require.NoError(t, err)

	second, err := env.uc.HandleMatchAction(context.Background(), "u-mehmet", match.ID, MatchActionAccept)
	require.NoError(t, err)

	assert.True(t, second.AlreadyHandled)
	assert.Equal(t, first.Conversation.ID, second.Conversation.ID)

	assert.Len(t, env.convRepo.conversations, 1)
	count, _ := env.convRepo.CountMessages(context.Background(), first.Conversation.ID)
	assert.EqualValues(t, 1, count)
}

func TestRejectMatch(t *testing.T) {
	env := newMatchEnv()
	match := env.createMatch(t)

	result, err := env.uc.HandleMatchAction(context.Background(), "u-mehmet", match.ID, MatchActionReject)
	require.NoError(t, err)

	assert.Equal(t, entity.MatchStatusRejected, result.Match.Status)
	assert.Nil(t, result.Conversation)
	assert.Empty(t, env.convRepo.conversations)
}

func TestStatusTransitionsAreOneWay(t *testing.T) {
	env := newMatchEnv()

	rejected := env.createMatch(t)
	_, err := env.uc.HandleMatchAction(context.Background(), "u-mehmet", rejected.ID, MatchActionReject)
	require.NoError(t, err)

	// A rejected match cannot be accepted afterwards.
	_, err = env.uc.HandleMatchAction(context.Background(), "u-mehmet", rejected.ID, MatchActionAccept)
	assert.True(t, errors.Is(err, "CONFLICT"))

	accepted := env.createMatch(t)
	_, err = env.uc.HandleMatchAction(context.Background(), "u-mehmet", accepted.ID, MatchActionAccept)
	require.NoError(t, err)

	// Nor an accepted one rejected.
	_, err = env.uc.HandleMatchAction(context.Background(), "u-mehmet", accepted.ID, MatchActionReject)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestUnknownMatchAction(t *testing.T) {
	env := newMatchEnv()
	match := env.createMatch(t)

	_, err := env.uc.HandleMatchAction(context.Background(), "u-mehmet", match.ID, "snooze")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestDeleteMatchFromAnyStatus(t *testing.T) {
	env := newMatchEnv()

	pending := env.createMatch(t)
	require.NoError(t, env.uc.DeleteMatch(context.Background(), "u-ayse", pending.ID))

	accepted := env.createMatch(t)
	result, err := env.uc.HandleMatchAction(context.Background(), "u-mehmet", accepted.ID, MatchActionAccept)
	require.NoError(t, err)

	// The receiver may delete too, and deletion does not cascade to the
	// conversation.
	require.NoError(t, env.uc.DeleteMatch(context.Background(), "u-mehmet", accepted.ID))

	_, err = env.matchRepo.GetByID(context.Background(), accepted.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	_, err = env.convRepo.GetByID(context.Background(), result.Conversation.ID)
	assert.NoError(t, err, "conversation must survive match deletion")
}

func TestDeleteMatchNonParticipantForbidden(t *testing.T) {
	env := newMatchEnv()
	match := env.createMatch(t)

	err := env.uc.DeleteMatch(context.Background(), "u-stranger", match.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestAcceptLinkFailureIsRetryable(t *testing.T) {
	env := newMatchEnv()
	match := env.createMatch(t)

	// The conversation materializes but the match update fails: the match
	// stays pending and the conversation is orphaned until retry.
	env.matchRepo.failUpdate = true
	_, err := env.uc.HandleMatchAction(context.Background(), "u-mehmet", match.ID, MatchActionAccept)
	require.Error(t, err)

	stored, err := env.matchRepo.GetByID(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MatchStatusPending, stored.Status)
	assert.Len(t, env.convRepo.conversations, 1)

	// Retry converges on the already-materialized conversation.
	env.matchRepo.failUpdate = false
	result, err := env.uc.HandleMatchAction(context.Background(), "u-mehmet", match.ID, MatchActionAccept)
	require.NoError(t, err)

	assert.Equal(t, entity.MatchStatusAccepted, result.Match.Status)
	assert.Len(t, env.convRepo.conversations, 1)
	count, _ := env.convRepo.CountMessages(context.Background(), result.Conversation.ID)
	assert.EqualValues(t, 1, count, "retry must not duplicate the welcome message")
}

func TestListMatchesServedFromPrimedCache(t *testing.T) {
	env := newMatchEnv()
	match := env.createMatch(t)

	env.uc.applyChange(repository.MatchChange{Kind: repository.MatchAdded, Match: match})

	// Remove the match behind the cache's back; a primed cache serves the
	// feed's view, not the store's.
	require.NoError(t, env.matchRepo.Delete(context.Background(), match.ID))

	matches, total, err := env.uc.ListMatches(context.Background(), "u-ayse", 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, match.ID, matches[0].ID)

	env.uc.applyChange(repository.MatchChange{Kind: repository.MatchRemoved, Match: match})

	_, total, err = env.uc.ListMatches(context.Background(), "u-ayse", 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestListMatchesFallsBackToStoreWhenCacheCold(t *testing.T) {
	env := newMatchEnv()
	match := env.createMatch(t)

	matches, total, err := env.uc.ListMatches(context.Background(), "u-mehmet", 20, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, match.ID, matches[0].ID)
}

func TestGetMatchByIDParticipantOnly(t *testing.T) {
	env := newMatchEnv()
	match := env.createMatch(t)

	_, err := env.uc.GetMatchByID(context.Background(), "u-stranger", match.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	got, err := env.uc.GetMatchByID(context.Background(), "u-mehmet", match.ID)
	require.NoError(t, err)
	assert.Equal(t, match.ID, got.ID)
}
