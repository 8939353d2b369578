package objectstore

import (
	"context"
	"sync"
)

// MemoryStore keeps objects in a map. PutErr, when set, fails every Put.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	PutErr  error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, key, contentType string, data []byte) (Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.PutErr != nil {
		return Object{}, s.PutErr
	}
	if _, ok := s.objects[key]; ok {
		return Object{}, ErrExists
	}

	s.objects[key] = append([]byte(nil), data...)

	return Object{Key: key, URL: "mem://" + key, ContentType: contentType, Size: int64(len(data))}, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
