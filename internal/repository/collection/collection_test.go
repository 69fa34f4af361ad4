package collection_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/docstore"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/repository/collection"
)

type item struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// racingStore simula outra operação gravando a coleção entre a leitura e a
// escrita das primeiras `races` chamadas a Save.
type racingStore struct {
	*docstore.MemoryStore
	races int
}

func (s *racingStore) Save(ctx context.Context, name string, payload []byte, expected int64) (int64, error) {
	if s.races > 0 {
		s.races--
		doc, _ := s.MemoryStore.Load(ctx, name)
		if _, err := s.MemoryStore.Save(ctx, name, []byte(`[{"id":"a","count":100}]`), doc.Version); err != nil {
			return 0, err
		}
	}
	return s.MemoryStore.Save(ctx, name, payload, expected)
}

type failingStore struct{ *docstore.MemoryStore }

func (s *failingStore) Save(context.Context, string, []byte, int64) (int64, error) {
	return 0, errors.New("disco cheio")
}

func increment(items []item) ([]item, error) {
	if len(items) == 0 {
		return []item{{ID: "a", Count: 1}}, nil
	}
	items[0].Count++
	return items, nil
}

func TestUpdate_ReadModifyWrite(t *testing.T) {
	col := collection.New[item](docstore.NewMemoryStore(), "items", 3, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, col.Update(ctx, increment))
	require.NoError(t, col.Update(ctx, increment))

	items, err := col.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "a", Count: 2}}, items)
}

func TestUpdate_RetriesOnConcurrentWrite(t *testing.T) {
	store := &racingStore{MemoryStore: docstore.NewMemoryStore(), races: 1}
	col := collection.New[item](store, "items", 3, logger.NewNop())
	ctx := context.Background()

	calls := 0
	err := col.Update(ctx, func(items []item) ([]item, error) {
		calls++
		return increment(items)
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls, "fn deve ser reexecutada sobre o snapshot novo")

	items, err := col.All(ctx)
	require.NoError(t, err)
	// A escrita concorrente (count=100) não é sobrescrita: o incremento é aplicado sobre ela.
	assert.Equal(t, 101, items[0].Count)
}

// Sem novas tentativas, a corrida clássica (duas leituras do mesmo snapshot)
// é detectada em vez de a segunda escrita apagar a primeira.
func TestUpdate_DetectsLostUpdateWithoutRetries(t *testing.T) {
	store := &racingStore{MemoryStore: docstore.NewMemoryStore(), races: 1}
	col := collection.New[item](store, "items", 0, logger.NewNop())
	ctx := context.Background()

	err := col.Update(ctx, increment)

	var conflict *apperror.ConflictError
	require.ErrorAs(t, err, &conflict)

	items, err := col.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, items[0].Count)
}

func TestUpdate_FnErrorAbortsWithoutWriting(t *testing.T) {
	store := docstore.NewMemoryStore()
	col := collection.New[item](store, "items", 3, logger.NewNop())
	ctx := context.Background()

	boom := apperror.NewValidationError("não")
	err := col.Update(ctx, func([]item) ([]item, error) { return []item{{ID: "x"}}, boom })

	assert.Same(t, boom, err)
	doc, _ := store.Load(ctx, "items")
	assert.Equal(t, int64(0), doc.Version)
}

func TestUpdate_StoreFailureIsInternalError(t *testing.T) {
	col := collection.New[item](&failingStore{MemoryStore: docstore.NewMemoryStore()}, "items", 3, logger.NewNop())

	err := col.Update(context.Background(), increment)

	var internal *apperror.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Contains(t, err.Error(), "disco cheio")
}

func TestAll_CorruptPayload(t *testing.T) {
	store := docstore.NewMemoryStore()
	_, err := store.Save(context.Background(), "items", []byte(`{não é json`), 0)
	require.NoError(t, err)

	_, err = collection.New[item](store, "items", 0, logger.NewNop()).All(context.Background())

	var internal *apperror.InternalError
	assert.ErrorAs(t, err, &internal)
}
