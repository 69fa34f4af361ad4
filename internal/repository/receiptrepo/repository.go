package receiptrepo

import (
	"context"
	"fmt"

	"gobackoffice/internal/domain"
	"gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/docstore"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/repository/collection"
)

// ReceiptRepository dá acesso à coleção de notas de recebimento (GRN).
// Recebimentos não são editados: a única escrita é Append.
type ReceiptRepository struct {
	receipts *collection.Collection[domain.Receipt]
	logger   logger.Logger
}

// NewReceiptRepository cria e retorna uma nova instância do Repositório de Recebimentos.
func NewReceiptRepository(store docstore.Store, maxRetries int, log logger.Logger) *ReceiptRepository {
	return &ReceiptRepository{
		receipts: collection.New[domain.Receipt](store, docstore.CollectionReceipts, maxRetries, log),
		logger:   log,
	}
}

// FindAll lista os recebimentos na ordem de criação.
func (r *ReceiptRepository) FindAll(ctx context.Context) ([]domain.Receipt, error) {
	return r.receipts.All(ctx)
}

// FindByID busca um recebimento pelo ID.
func (r *ReceiptRepository) FindByID(ctx context.Context, id string) (domain.Receipt, error) {
	all, err := r.receipts.All(ctx)
	if err != nil {
		return domain.Receipt{}, err
	}
	for _, rc := range all {
		if rc.ID == id {
			return rc, nil
		}
	}
	return domain.Receipt{}, errors.NewNotFoundError(fmt.Sprintf("Recebimento com ID %s não existe.", id))
}

// Append grava um novo recebimento no fim da coleção.
func (r *ReceiptRepository) Append(ctx context.Context, receipt domain.Receipt) error {
	err := r.receipts.Update(ctx, func(items []domain.Receipt) ([]domain.Receipt, error) {
		return append(items, receipt), nil
	})
	if err != nil {
		return err
	}
	r.logger.Debug("Recebimento gravado.", map[string]interface{}{"receipt_id": receipt.ID, "number": receipt.Number})
	return nil
}
