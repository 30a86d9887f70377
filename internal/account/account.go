// Package account はユーザーアカウントの永続化を担当します。
package account

import (
	"context"
	"errors"
	"time"
)

// ロールの値。アカウント作成時は常に RoleUser で、昇格は管理者操作のみです。
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account は登録済みユーザーを表します。メールアドレスが一意な識別子です。
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

var (
	// ErrDuplicateEmail は既に登録済みのメールアドレスで作成しようとした場合に返されます。
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNotFound は対象のアカウントが存在しない場合に返されます。
	ErrNotFound = errors.New("account not found")
)

// Store はアカウントの永続化操作を定義します。
// 単一ドキュメント操作の原子性は実装側が保証します（ロール更新は last-write-wins）。
type Store interface {
	Create(ctx context.Context, a Account) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	List(ctx context.Context) ([]Account, error)
	UpdateRole(ctx context.Context, email, role string) error
}
