package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client define o contrato de interface para qualquer serviço de cache que o
// armazenamento de documentos e o rate limiter possam usar.
type Client interface {
	GetVersioned(ctx context.Context, key string) (string, int64, error)
	SetIfNewer(ctx context.Context, key string, value []byte, version int64, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ErrCacheMiss é retornado quando a chave não é encontrada no cache.
var ErrCacheMiss = redis.Nil

const (
	fieldPayload = "payload"
	fieldVersion = "version"
)

// setIfNewerScript só grava quando a versão em cache é menor que a nova.
// KEYS[1] = chave, ARGV[1] = payload, ARGV[2] = versão, ARGV[3] = TTL em ms.
var setIfNewerScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) >= tonumber(ARGV[2]) then
  return 0
end
redis.call('HSET', KEYS[1], 'payload', ARGV[1], 'version', ARGV[2])
if tonumber(ARGV[3]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// incrWindowScript incrementa o contador e garante o TTL no mesmo comando.
// Um contador sem TTL (PTTL < 0) recebe a janela de novo.
var incrWindowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// Options descreve a conexão com o Redis.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect abre a conexão com o Redis e valida com PING.
// Esta função é chamada no main.go; a conexão é compartilhada entre cache,
// rate limit e o armazenamento de documentos.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("falha ao conectar ao Redis em %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

// RedisClient é a implementação concreta da interface Client, usando Redis.
type RedisClient struct {
	rdb *redis.Client
}

// NewRedisClient cria o cliente de cache sobre uma conexão existente.
func NewRedisClient(rdb *redis.Client) *RedisClient {
	return &RedisClient{rdb: rdb}
}

// GetVersioned recupera o valor e a versão gravados por SetIfNewer.
func (c *RedisClient) GetVersioned(ctx context.Context, key string) (string, int64, error) {
	vals, err := c.rdb.HMGet(ctx, key, fieldPayload, fieldVersion).Result()
	if err != nil {
		return "", 0, err
	}
	payload, okPayload := vals[0].(string)
	rawVersion, okVersion := vals[1].(string)
	if !okPayload || !okVersion {
		return "", 0, ErrCacheMiss
	}
	version, err := strconv.ParseInt(rawVersion, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("versão inválida no cache para %s: %w", key, err)
	}
	return payload, version, nil
}

// SetIfNewer grava value com a versão informada, a menos que o cache já tenha
// uma versão igual ou mais nova. Devolve true quando gravou.
func (c *RedisClient) SetIfNewer(ctx context.Context, key string, value []byte, version int64, expiration time.Duration) (bool, error) {
	stored, err := setIfNewerScript.Run(ctx, c.rdb, []string{key}, value, version, expiration.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Delete remove uma chave do cache.
func (c *RedisClient) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// IncrWindow incrementa um contador de janela fixa e devolve o novo valor.
func (c *RedisClient) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	return incrWindowScript.Run(ctx, c.rdb, []string{key}, window.Milliseconds()).Int64()
}
