// Package collection implementa a fronteira transacional de leitura-modificação-
// escrita sobre uma coleção inteira do docstore.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/docstore"
	"gobackoffice/internal/pkg/logger"
)

// MutateFunc recebe um snapshot recém-lido da coleção e devolve a nova versão.
// Pode ser executada mais de uma vez (nova tentativa após conflito), portanto
// não deve ter efeitos fora do próprio snapshot. Um erro aborta sem gravar.
type MutateFunc[T any] func(items []T) ([]T, error)

// Collection é uma coleção tipada persistida como um único documento.
type Collection[T any] struct {
	store      docstore.Store
	name       string
	maxRetries int
	logger     logger.Logger
}

// New cria a coleção. maxRetries é o número de novas tentativas após um
// conflito de versão (0 = nenhuma).
func New[T any](store docstore.Store, name string, maxRetries int, log logger.Logger) *Collection[T] {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Collection[T]{store: store, name: name, maxRetries: maxRetries, logger: log}
}

// Name devolve o nome da coleção.
func (c *Collection[T]) Name() string {
	return c.name
}

// All lê a coleção inteira.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	items, _, err := c.load(ctx)
	return items, err
}

// Update executa uma leitura-modificação-escrita versionada. Se outra operação
// gravar a coleção entre a leitura e a escrita, fn é reexecutada sobre um
// snapshot novo, até maxRetries vezes; depois disso devolve ConflictError.
func (c *Collection[T]) Update(ctx context.Context, fn MutateFunc[T]) error {
	for attempt := 0; ; attempt++ {
		items, version, err := c.load(ctx)
		if err != nil {
			return err
		}

		next, err := fn(items)
		if err != nil {
			return err
		}

		payload, err := json.Marshal(next)
		if err != nil {
			return apperror.NewInternalError(fmt.Sprintf("falha ao serializar coleção %s", c.name), err)
		}

		_, err = c.store.Save(ctx, c.name, payload, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, docstore.ErrVersionConflict) {
			c.logger.Error(fmt.Sprintf("Falha ao gravar coleção %s.", c.name), err)
			return apperror.NewDBError(fmt.Sprintf("Falha ao gravar coleção %s", c.name), err)
		}
		if attempt >= c.maxRetries {
			c.logger.Warn("Conflito de versão persistente; desistindo.", map[string]interface{}{
				"collection": c.name,
				"attempts":   attempt + 1,
			})
			return apperror.NewConflictError(fmt.Sprintf("A coleção %s foi modificada por outra operação. Tente novamente.", c.name))
		}
		c.logger.Debug("Conflito de versão; repetindo sobre snapshot novo.", map[string]interface{}{
			"collection": c.name,
			"attempt":    attempt + 1,
			"version":    version,
		})
	}
}

func (c *Collection[T]) load(ctx context.Context) ([]T, int64, error) {
	doc, err := c.store.Load(ctx, c.name)
	if err != nil {
		c.logger.Error(fmt.Sprintf("Falha ao ler coleção %s.", c.name), err)
		return nil, 0, apperror.NewDBError(fmt.Sprintf("Falha ao ler coleção %s", c.name), err)
	}
	if len(doc.Payload) == 0 {
		return nil, doc.Version, nil
	}

	var items []T
	if err := json.Unmarshal(doc.Payload, &items); err != nil {
		return nil, 0, apperror.NewInternalError(fmt.Sprintf("coleção %s corrompida", c.name), err)
	}
	return items, doc.Version, nil
}
