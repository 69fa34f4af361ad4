package docstore

import (
	"context"
	"sync"
)

// MemoryStore mantém as coleções em memória. Usado em testes e no modo
// STORE_DRIVER=memory (sem durabilidade).
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]Document
}

// NewMemoryStore cria um armazenamento vazio.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

// Load devolve uma cópia do documento da coleção.
func (s *MemoryStore) Load(ctx context.Context, collection string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.docs[collection]
	return Document{Payload: append([]byte(nil), doc.Payload...), Version: doc.Version}, nil
}

// Save grava a coleção se a versão esperada conferir.
func (s *MemoryStore) Save(ctx context.Context, collection string, payload []byte, expectedVersion int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.docs[collection]
	if current.Version != expectedVersion {
		return 0, ErrVersionConflict
	}
	next := Document{Payload: append([]byte(nil), payload...), Version: expectedVersion + 1}
	s.docs[collection] = next
	return next.Version, nil
}
