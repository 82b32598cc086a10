package session

import "sync"

// KeyValueStore はセッション寿命の名前付きストアです。
// ブラウザタブが生きている間だけ資格情報を保持するために使い、
// セッションを跨いだ永続化は行いません。
type KeyValueStore interface {
	Get(name string) (string, bool)
	Set(name, value string)
	Remove(name string)
}

// MemoryStore はプロセス内メモリのみの KeyValueStore 実装です。
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore は空の MemoryStore を返します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

func (s *MemoryStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

func (s *MemoryStore) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, name)
}
