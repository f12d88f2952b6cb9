package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"petmatch/internal/domain/entity"
	"petmatch/internal/domain/repository"
	"petmatch/pkg/errors"
)

type firestoreMatchRepository struct {
	client *firestore.Client
}

func NewFirestoreMatchRepository(client *firestore.Client) repository.MatchRepository {
	return &firestoreMatchRepository{
		client: client,
	}
}

func (r *firestoreMatchRepository) Create(ctx context.Context, match *entity.Match) error {
	if match.ID == "" {
		match.ID = uuid.New().String()
	}

	now := time.Now()
	match.CreatedAt = now
	match.UpdatedAt = now

	_, err := r.client.Collection("matches").Doc(match.ID).Set(ctx, match)
	if err != nil {
		return errors.Internal("Failed to create match", err)
	}

	return nil
}

func (r *firestoreMatchRepository) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	doc, err := r.client.Collection("matches").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Match", nil)
		}
		return nil, errors.Internal("Failed to get match", err)
	}

	var match entity.Match
	if err := doc.DataTo(&match); err != nil {
		return nil, errors.Internal("Failed to parse match data", err)
	}
	match.ID = doc.Ref.ID

	return &match, nil
}

// ListByUserID fetches the matches collection and filters in memory to rows
// where the user is sender or receiver. The store has no OR query over two
// fields, so filtering happens on this side.
func (r *firestoreMatchRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Match, int64, error) {
	docs, err := r.client.Collection("matches").OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching matches for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch matches", err)
	}

	var mine []*entity.Match
	for _, doc := range docs {
		var match entity.Match
		if err := doc.DataTo(&match); err != nil {
			log.Printf("Error parsing match data %s: %v", doc.Ref.ID, err)
			continue // skip bad data instead of failing
		}
		match.ID = doc.Ref.ID
		if match.Involves(userID) {
			mine = append(mine, &match)
		}
	}

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

func (r *firestoreMatchRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updatedAt"] = time.Now()

	_, err := r.client.Collection("matches").Doc(id).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to update match", err)
	}

	return nil
}

func (r *firestoreMatchRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("matches").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete match", err)
	}

	return nil
}

// Listen streams snapshot changes for the whole matches collection until ctx
// is cancelled.
func (r *firestoreMatchRepository) Listen(ctx context.Context, fn func(repository.MatchChange)) error {
	iter := r.client.Collection("matches").Snapshots(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}
			return errors.Internal("Match listener failed", err)
		}

		for _, change := range snap.Changes {
			var match entity.Match
			if err := change.Doc.DataTo(&match); err != nil {
				log.Printf("Error parsing match change %s: %v", change.Doc.Ref.ID, err)
				continue
			}
			match.ID = change.Doc.Ref.ID

			var kind repository.MatchChangeKind
			switch change.Kind {
			case firestore.DocumentAdded:
				kind = repository.MatchAdded
			case firestore.DocumentModified:
				kind = repository.MatchModified
			case firestore.DocumentRemoved:
				kind = repository.MatchRemoved
			}

			fn(repository.MatchChange{Kind: kind, Match: &match})
		}
	}
}
