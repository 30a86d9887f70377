package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore は Store のインメモリ実装です。テストで Redis の代わりに注入します。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload   Payload
	expiresAt time.Time
}

// NewMemoryStore は MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

// Get はセッションペイロードを取得します。期限切れのエントリは削除して ErrNotFound を返します。
func (s *MemoryStore) Get(ctx context.Context, token string) (Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return Payload{}, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, token)
		return Payload{}, ErrNotFound
	}
	return entry.payload, nil
}

// Set はセッションペイロードを TTL 付きで保存します。
func (s *MemoryStore) Set(ctx context.Context, token string, p Payload, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[token] = memoryEntry{
		payload:   p,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Destroy はセッションを削除します。存在しないトークンでもエラーにはなりません。
func (s *MemoryStore) Destroy(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, token)
	return nil
}

// Len は保存中のセッション数を返します（テスト用）。
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
