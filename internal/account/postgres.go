package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQLの一意制約違反コード
const uniqueViolation = "23505"

// PostgresStore は Store の PostgreSQL 実装です。
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore は PostgresStore を作成します。
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema は accounts テーブルを作成します（存在しない場合のみ）。
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

// Create はアカウントを作成します。メールアドレスが重複している場合は ErrDuplicateEmail を返します。
func (s *PostgresStore) Create(ctx context.Context, a Account) (Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Email = normalizeEmail(a.Email)

	row := s.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, a.ID, a.Name, a.Email, a.PasswordHash, a.Role)
	if err := row.Scan(&a.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Account{}, ErrDuplicateEmail
		}
		return Account{}, err
	}
	return a, nil
}

// GetByEmail はメールアドレスでアカウントを取得します。
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (Account, error) {
	var a Account
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM accounts
		WHERE email = $1
	`, normalizeEmail(email))
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// List は全アカウントを作成日時順に返します。
func (s *PostgresStore) List(ctx context.Context) ([]Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM accounts
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// UpdateRole は対象アカウントのロールを更新します。対象が存在しない場合は ErrNotFound を返します。
func (s *PostgresStore) UpdateRole(ctx context.Context, email, role string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts SET role = $2 WHERE email = $1
	`, normalizeEmail(email), role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
