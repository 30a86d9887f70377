package session

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore は Store の Redis 実装です。
// ペイロードは AES-GCM で暗号化してから保存し、有効期限は Redis の TTL に委ねます。
type RedisStore struct {
	rdb  *redis.Client
	aead cipher.AEAD
}

// NewRedisStore は RedisStore を作成します。secret はペイロード暗号化用の秘密鍵です。
func NewRedisStore(rdb *redis.Client, secret string) (*RedisStore, error) {
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &RedisStore{rdb: rdb, aead: aead}, nil
}

// Get はセッションペイロードを取得します。
func (s *RedisStore) Get(ctx context.Context, token string) (Payload, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Payload{}, ErrNotFound
		}
		return Payload{}, err
	}

	// 復号できないデータは改ざんか鍵違いなので、存在しないものとして扱う
	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return Payload{}, ErrNotFound
	}
	plain, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return Payload{}, ErrNotFound
	}

	var p Payload
	if err := json.Unmarshal(plain, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// Set はセッションペイロードを TTL 付きで保存します。
func (s *RedisStore) Set(ctx context.Context, token string, p Payload, ttl time.Duration) error {
	plain, err := json.Marshal(p)
	if err != nil {
		return err
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := s.aead.Seal(nonce, nonce, plain, nil)

	return s.rdb.Set(ctx, keyPrefix+token, sealed, ttl).Err()
}

// Destroy はセッションを削除します。存在しないトークンでもエラーにはなりません。
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, keyPrefix+token).Err()
}
