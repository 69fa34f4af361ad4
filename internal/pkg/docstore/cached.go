package docstore

import (
	"context"
	"errors"
	"time"

	"gobackoffice/internal/pkg/cache"
	"gobackoffice/internal/pkg/logger"
)

const cacheKeyPrefix = "backoffice:cache:"

// CachedStore é uma camada read-through/write-through sobre outro Store.
// O cache nunca é fonte de verdade: uma versão velha no cache apenas faz o
// Save falhar com ErrVersionConflict, e nesse caso a entrada é descartada.
// Toda gravação no cache compara versões, então uma leitura lenta nunca
// sobrescreve o que uma escrita mais nova já colocou lá.
type CachedStore struct {
	inner  Store
	cache  cache.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewCachedStore envolve inner com o cache informado.
func NewCachedStore(inner Store, cacheClient cache.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{inner: inner, cache: cacheClient, ttl: ttl, logger: log}
}

func cacheKey(collection string) string {
	return cacheKeyPrefix + collection
}

// Load tenta o cache e cai para o armazenamento principal em caso de falta.
func (s *CachedStore) Load(ctx context.Context, collection string) (Document, error) {
	payload, version, err := s.cache.GetVersioned(ctx, cacheKey(collection))
	if err == nil {
		return Document{Payload: []byte(payload), Version: version}, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Falha ao ler do cache, lendo do armazenamento.", map[string]interface{}{"collection": collection, "error": err.Error()})
	}

	doc, err := s.inner.Load(ctx, collection)
	if err != nil {
		return Document{}, err
	}
	s.put(ctx, collection, doc)
	return doc, nil
}

// Save grava no armazenamento principal e atualiza o cache.
func (s *CachedStore) Save(ctx context.Context, collection string, payload []byte, expectedVersion int64) (int64, error) {
	version, err := s.inner.Save(ctx, collection, payload, expectedVersion)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			s.invalidate(ctx, collection)
		}
		return 0, err
	}
	s.put(ctx, collection, Document{Payload: payload, Version: version})
	return version, nil
}

// put só grava se o cache não tiver versão igual ou mais nova.
func (s *CachedStore) put(ctx context.Context, collection string, doc Document) {
	stored, err := s.cache.SetIfNewer(ctx, cacheKey(collection), doc.Payload, doc.Version, s.ttl)
	if err != nil {
		s.logger.Warn("Falha ao gravar no cache.", map[string]interface{}{"collection": collection, "error": err.Error()})
		return
	}
	if !stored {
		s.logger.Debug("Cache já tem versão mais nova; gravação ignorada.", map[string]interface{}{"collection": collection, "version": doc.Version})
	}
}

func (s *CachedStore) invalidate(ctx context.Context, collection string) {
	if err := s.cache.Delete(ctx, cacheKey(collection)); err != nil {
		s.logger.Warn("Falha ao invalidar cache.", map[string]interface{}{"collection": collection, "error": err.Error()})
	}
}
