package postgres_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/semenovdl/recallbot/internal/adapter/postgres"
	"github.com/semenovdl/recallbot/internal/adapter/postgres/testhelper"
)

// ownerExists checks whether an owner row with the given chat id exists.
func ownerExists(t *testing.T, pool *pgxpool.Pool, ownerID int64) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(
		context.Background(),
		`SELECT EXISTS(SELECT 1 FROM owners WHERE id = $1)`,
		ownerID,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("ownerExists query: %v", err)
	}
	return exists
}

func randomChatID() int64 {
	return rand.Int63n(1_000_000_000) + 2_000_000_000
}

func TestRunInTx_Commit(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	ownerID := randomChatID()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		_, err := q.Exec(ctx,
			`INSERT INTO owners (id, notifications_enabled, suppressed, created_at)
			 VALUES ($1, TRUE, FALSE, now())`,
			ownerID,
		)
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !ownerExists(t, pool, ownerID) {
		t.Fatal("expected owner to exist after committed transaction")
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	ownerID := randomChatID()
	sentinel := errors.New("business logic error")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		_, execErr := q.Exec(ctx,
			`INSERT INTO owners (id, notifications_enabled, suppressed, created_at)
			 VALUES ($1, TRUE, FALSE, now())`,
			ownerID,
		)
		if execErr != nil {
			t.Fatalf("insert inside tx failed: %v", execErr)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}

	if ownerExists(t, pool, ownerID) {
		t.Fatal("expected owner NOT to exist after rolled-back transaction")
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	ownerID := randomChatID()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic to be re-raised")
		}
		if r != "test panic" {
			t.Fatalf("expected panic value %q, got %v", "test panic", r)
		}

		// Verify data was rolled back.
		if ownerExists(t, pool, ownerID) {
			t.Fatal("expected owner NOT to exist after panic-rolled-back transaction")
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		_, err := q.Exec(ctx,
			`INSERT INTO owners (id, notifications_enabled, suppressed, created_at)
			 VALUES ($1, TRUE, FALSE, now())`,
			ownerID,
		)
		if err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		panic("test panic")
	})
}

func TestRunInTx_QuerierFromCtx_UsesTx(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	ownerID := randomChatID()

	// Insert inside a transaction, then verify it's visible within the same tx
	// but NOT outside until commit.
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		_, err := q.Exec(ctx,
			`INSERT INTO owners (id, notifications_enabled, suppressed, created_at)
			 VALUES ($1, TRUE, FALSE, now())`,
			ownerID,
		)
		if err != nil {
			return err
		}

		// Should be visible within the transaction.
		var exists bool
		err = q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM owners WHERE id = $1)`, ownerID).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			t.Fatal("expected owner to be visible within the transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	// After commit, also visible outside.
	if !ownerExists(t, pool, ownerID) {
		t.Fatal("expected owner to exist after committed transaction")
	}
}
