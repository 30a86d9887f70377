package account

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func setupTestStore(t *testing.T, ctx context.Context) (*PostgresStore, func()) {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is required for integration tests")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	store := NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}
	return store, pool.Close
}

func TestPostgresCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	email := uuid.NewString() + "@example.com"
	created, err := store.Create(ctx, Account{
		Name:         "Ana",
		Email:        email,
		PasswordHash: "$2a$12$fakefakefakefakefakefake",
		Role:         RoleUser,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and created_at, got %+v", created)
	}

	got, err := store.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if got.Name != "Ana" || got.Role != RoleUser {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestPostgresDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	email := uuid.NewString() + "@example.com"
	a := Account{Name: "Ana", Email: email, PasswordHash: "h", Role: RoleUser}
	if _, err := store.Create(ctx, a); err != nil {
		t.Fatalf("first Create returned error: %v", err)
	}
	if _, err := store.Create(ctx, a); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestPostgresUpdateRoleRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	email := uuid.NewString() + "@example.com"
	if _, err := store.Create(ctx, Account{Name: "Ana", Email: email, PasswordHash: "h", Role: RoleUser}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := store.UpdateRole(ctx, email, RoleAdmin); err != nil {
		t.Fatalf("promote returned error: %v", err)
	}
	if err := store.UpdateRole(ctx, email, RoleUser); err != nil {
		t.Fatalf("demote returned error: %v", err)
	}

	got, err := store.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if got.Role != RoleUser {
		t.Fatalf("expected role to round-trip to user, got %s", got.Role)
	}
}

func TestPostgresUpdateRoleMissing(t *testing.T) {
	ctx := context.Background()
	store, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	err := store.UpdateRole(ctx, uuid.NewString()+"@example.com", RoleAdmin)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
