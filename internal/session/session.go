// Package session はセッションペイロードの保存と取得を担当します。
// トークンをキーとする TTL 付きのキーバリューストアとして扱います。
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// Payload はセッションに埋め込むユーザーのスナップショットです。
type Payload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ErrNotFound はセッションが存在しないか期限切れの場合に返されます。
var ErrNotFound = errors.New("session not found")

// Store はセッションの保存操作を定義します。
// Destroy は冪等で、存在しないトークンに対してもエラーを返しません。
type Store interface {
	Get(ctx context.Context, token string) (Payload, error)
	Set(ctx context.Context, token string, p Payload, ttl time.Duration) error
	Destroy(ctx context.Context, token string) error
}

// NewToken は推測不可能なセッショントークンを生成します。
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
