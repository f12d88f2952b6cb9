package repository

import (
	"context"

	"petmatch/internal/domain/entity"
)

// MatchChangeKind mirrors the store's change-feed event kinds.
type MatchChangeKind int

const (
	MatchAdded MatchChangeKind = iota
	MatchModified
	MatchRemoved
)

type MatchChange struct {
	Kind  MatchChangeKind
	Match *entity.Match
}

type MatchRepository interface {
	Create(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Match, int64, error)
	// UpdateFields merge-writes a partial set of fields on the match document.
	// Each call is independently atomic; there is no cross-document transaction.
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error

	// Listen streams change-feed events for the matches collection until ctx
	// is cancelled. The callback runs on the listener goroutine.
	Listen(ctx context.Context, fn func(MatchChange)) error
}
