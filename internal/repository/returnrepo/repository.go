package returnrepo

import (
	"context"
	"fmt"

	"gobackoffice/internal/domain"
	"gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/docstore"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/repository/collection"
)

// ReturnRepository dá acesso à coleção de solicitações de devolução.
type ReturnRepository struct {
	returns *collection.Collection[domain.ReturnRequest]
	logger  logger.Logger
}

// NewReturnRepository cria e retorna uma nova instância do Repositório de Devoluções.
func NewReturnRepository(store docstore.Store, maxRetries int, log logger.Logger) *ReturnRepository {
	return &ReturnRepository{
		returns: collection.New[domain.ReturnRequest](store, docstore.CollectionReturns, maxRetries, log),
		logger:  log,
	}
}

// NotFound é o erro padrão para uma devolução ausente.
func NotFound(id string) error {
	return errors.NewNotFoundError(fmt.Sprintf("Devolução com ID %s não existe.", id))
}

// IndexOf devolve a posição da devolução no snapshot, ou -1.
func IndexOf(returns []domain.ReturnRequest, id string) int {
	for i := range returns {
		if returns[i].ID == id {
			return i
		}
	}
	return -1
}

// FindAll lista as devoluções, opcionalmente filtradas por status.
func (r *ReturnRepository) FindAll(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnRequest, error) {
	all, err := r.returns.All(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Status == "" {
		return all, nil
	}

	filtered := make([]domain.ReturnRequest, 0, len(all))
	for _, ret := range all {
		if ret.Status == filter.Status {
			filtered = append(filtered, ret)
		}
	}
	return filtered, nil
}

// FindByID busca uma devolução pelo ID.
func (r *ReturnRepository) FindByID(ctx context.Context, id string) (domain.ReturnRequest, error) {
	all, err := r.returns.All(ctx)
	if err != nil {
		return domain.ReturnRequest{}, err
	}
	if idx := IndexOf(all, id); idx >= 0 {
		return all[idx], nil
	}
	return domain.ReturnRequest{}, NotFound(id)
}

// Mutate executa uma transação versionada sobre a coleção de devoluções.
func (r *ReturnRepository) Mutate(ctx context.Context, fn collection.MutateFunc[domain.ReturnRequest]) error {
	return r.returns.Update(ctx, fn)
}
