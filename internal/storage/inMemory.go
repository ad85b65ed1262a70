package storage

import (
	"context"
	"sync"
	"time"
)

type InMemoryStorage struct {
	mu        sync.RWMutex
	documents map[string]dbDocument
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{documents: make(map[string]dbDocument)}
}

func (inMem *InMemoryStorage) GetStorageType() string {
	return "inmemory"
}

func (inMem *InMemoryStorage) GetDocument(ctx context.Context, key string) ([]byte, bool, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	doc, ok := inMem.documents[key]
	if !ok {
		return nil, false, nil
	}
	body := make([]byte, len(doc.Body))
	copy(body, doc.Body)
	return body, true, nil
}

func (inMem *InMemoryStorage) PutDocument(ctx context.Context, key string, body []byte) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	stored := make([]byte, len(body))
	copy(stored, body)
	inMem.documents[key] = dbDocument{Key: key, Body: stored, UpdatedAt: time.Now().UTC()}
	return nil
}

func (inMem *InMemoryStorage) Close() error {
	return nil
}
