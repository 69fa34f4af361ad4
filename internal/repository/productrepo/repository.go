package productrepo

import (
	"context"
	"fmt"
	"strings"

	"gobackoffice/internal/domain"
	"gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/docstore"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/repository/collection"
)

// ProductRepository dá acesso à coleção de produtos.
// Toda escrita passa por Mutate: leitura-modificação-escrita da coleção inteira.
type ProductRepository struct {
	products *collection.Collection[domain.Product]
	logger   logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
func NewProductRepository(store docstore.Store, maxRetries int, log logger.Logger) *ProductRepository {
	return &ProductRepository{
		products: collection.New[domain.Product](store, docstore.CollectionProducts, maxRetries, log),
		logger:   log,
	}
}

// NotFound é o erro padrão para um produto ausente da coleção.
func NotFound(id string) error {
	return errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe.", id))
}

// IndexOf devolve a posição do produto no snapshot, ou -1.
func IndexOf(products []domain.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

// IndexByID monta um índice id -> produto do snapshot.
func IndexByID(products []domain.Product) map[string]domain.Product {
	index := make(map[string]domain.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index
}

// FindAll devolve todos os produtos na ordem persistida.
func (r *ProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	return r.products.All(ctx)
}

// FindByID busca um produto pelo ID.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	products, err := r.products.All(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	if idx := IndexOf(products, id); idx >= 0 {
		return products[idx], nil
	}
	r.logger.Debug("Produto não encontrado.", map[string]interface{}{"product_id": id})
	return domain.Product{}, NotFound(id)
}

// FindByBarcode busca um produto pelo código de barras (comparação exata, sem espaços).
func (r *ProductRepository) FindByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	products, err := r.products.All(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if barcode != "" && p.Barcode == barcode {
			return p, nil
		}
	}
	return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com código de barras %s não existe.", barcode))
}

// Mutate executa uma transação versionada sobre a coleção de produtos.
func (r *ProductRepository) Mutate(ctx context.Context, fn collection.MutateFunc[domain.Product]) error {
	return r.products.Update(ctx, fn)
}
