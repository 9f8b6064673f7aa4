package testhelper

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/semenovdl/recallbot/internal/domain"
)

// SeedOwner creates an owner with notifications enabled.
// The chat id is random to keep parallel tests from colliding.
func SeedOwner(t *testing.T, pool *pgxpool.Pool) domain.Owner {
	t.Helper()
	ctx := context.Background()

	owner := domain.Owner{
		ID:                   rand.Int63n(1_000_000_000) + 1,
		NotificationsEnabled: true,
		CreatedAt:            time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO owners (id, notifications_enabled, suppressed, created_at)
		 VALUES ($1, $2, $3, $4)`,
		owner.ID, owner.NotificationsEnabled, owner.Suppressed, owner.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedOwner insert: %v", err)
	}

	return owner
}

// SeedCard creates a pending card for the owner, due at the given time.
func SeedCard(t *testing.T, pool *pgxpool.Pool, ownerID int64, dueAt time.Time) domain.Card {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	card := domain.Card{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Content:       "seed card " + uuid.New().String()[:8],
		Interval:      10 * time.Minute,
		NextDueAt:     dueAt.UTC().Truncate(time.Microsecond),
		DeliveryState: domain.DeliveryStatePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// Keep the next_due_at >= created_at table constraint satisfied for
	// cards seeded as already overdue.
	if card.NextDueAt.Before(card.CreatedAt) {
		card.CreatedAt = card.NextDueAt
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO cards (id, owner_id, content, interval_secs, next_due_at,
		                    delivery_state, delivery_attempts, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		card.ID, card.OwnerID, card.Content, int64(card.Interval.Seconds()), card.NextDueAt,
		string(card.DeliveryState), card.DeliveryAttempts, card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCard insert: %v", err)
	}

	return card
}
