package docstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

const (
	redisKeyPrefix    = "backoffice:doc:"
	redisFieldPayload = "payload"
	redisFieldVersion = "version"
)

// RedisStore grava cada coleção em um hash Redis (payload + version).
// A escrita usa WATCH/MULTI: se a chave mudar entre a leitura da versão e o
// EXEC, a transação falha e devolvemos ErrVersionConflict.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore cria o armazenamento sobre uma conexão Redis existente.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(collection string) string {
	return redisKeyPrefix + collection
}

// Load lê o documento da coleção.
func (s *RedisStore) Load(ctx context.Context, collection string) (Document, error) {
	fields, err := s.rdb.HGetAll(ctx, redisKey(collection)).Result()
	if err != nil {
		return Document{}, fmt.Errorf("falha ao ler coleção %s do Redis: %w", collection, err)
	}
	if len(fields) == 0 {
		return Document{}, nil
	}

	version, err := strconv.ParseInt(fields[redisFieldVersion], 10, 64)
	if err != nil {
		return Document{}, fmt.Errorf("versão inválida na coleção %s: %w", collection, err)
	}
	return Document{Payload: []byte(fields[redisFieldPayload]), Version: version}, nil
}

// Save grava a coleção inteira se a versão esperada conferir.
func (s *RedisStore) Save(ctx context.Context, collection string, payload []byte, expectedVersion int64) (int64, error) {
	key := redisKey(collection)
	next := expectedVersion + 1

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, redisFieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expectedVersion {
			return ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, redisFieldPayload, payload, redisFieldVersion, next)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return 0, ErrVersionConflict
	default:
		return 0, fmt.Errorf("falha ao gravar coleção %s no Redis: %w", collection, err)
	}
}
