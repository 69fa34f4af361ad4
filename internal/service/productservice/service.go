package productservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/docstore"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/pkg/precision"
	"gobackoffice/internal/repository/collection"
	"gobackoffice/internal/repository/productrepo"
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	Mutate(ctx context.Context, fn collection.MutateFunc[domain.Product]) error
}

// Settings são os padrões da loja aplicados no cadastro.
type Settings struct {
	Currency        string
	DefaultMinStock decimal.Decimal
}

// Service é o catálogo de produtos (cadastro e edição direta).
type Service struct {
	repo     ProductRepository
	logger   logger.Logger
	settings Settings
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, logger logger.Logger, settings Settings) *Service {
	if settings.Currency == "" {
		settings.Currency = "BRL"
	}
	if settings.DefaultMinStock.IsZero() {
		settings.DefaultMinStock = domain.DefaultMinStock
	}
	settings.Currency = strings.ToUpper(settings.Currency)
	return &Service{repo: repo, logger: logger, settings: settings}
}

func validateInput(input domain.ProductInput) error {
	var violations []string
	if strings.TrimSpace(input.Name) == "" {
		violations = append(violations, "O nome do produto é obrigatório.")
	}
	if input.Price != nil && input.Price.IsNegative() {
		violations = append(violations, "O preço do produto não pode ser negativo.")
	}
	if input.Quantity != nil && input.Quantity.IsNegative() {
		violations = append(violations, "A quantidade em estoque não pode ser negativa.")
	}
	if input.MinStock != nil && input.MinStock.IsNegative() {
		violations = append(violations, "O estoque mínimo não pode ser negativo.")
	}
	if len(violations) > 0 {
		return apperror.NewViolationsError(violations)
	}
	return nil
}

// barcodeTaken verifica se outro produto (diferente de selfID) já usa o código.
func barcodeTaken(products []domain.Product, barcode, selfID string) bool {
	if barcode == "" {
		return false
	}
	for _, p := range products {
		if p.Barcode == barcode && p.ID != selfID {
			return true
		}
	}
	return false
}

// apply copia os campos editáveis da entrada para o produto, já arredondados.
// Preço, quantidade e estoque mínimo só mudam quando informados.
func (s *Service) apply(p *domain.Product, input domain.ProductInput) {
	p.Name = strings.TrimSpace(input.Name)
	p.Category = strings.TrimSpace(input.Category)
	p.Description = strings.TrimSpace(input.Description)
	p.Brand = strings.TrimSpace(input.Brand)
	p.Unit = strings.TrimSpace(input.Unit)
	p.Barcode = strings.TrimSpace(input.Barcode)
	if input.Price != nil {
		p.Price = precision.Money(*input.Price)
	}
	if input.Quantity != nil {
		p.Quantity = precision.Storage(*input.Quantity)
	}
	if input.MinStock != nil {
		p.MinStock = precision.Storage(*input.MinStock)
	}
}

// Create cadastra um novo produto com os padrões da loja.
func (s *Service) Create(ctx context.Context, actor domain.Actor, input domain.ProductInput) (domain.Product, error) {
	if err := validateInput(input); err != nil {
		return domain.Product{}, err
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:        docstore.GenerateID(),
		Price:     decimal.Zero,
		Quantity:  precision.Storage(decimal.Zero),
		MinStock:  precision.Storage(s.settings.DefaultMinStock),
		Currency:  s.settings.Currency,
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c := strings.TrimSpace(input.Currency); c != "" {
		product.Currency = strings.ToUpper(c)
	}
	s.apply(&product, input)

	err := s.repo.Mutate(ctx, func(products []domain.Product) ([]domain.Product, error) {
		if barcodeTaken(products, product.Barcode, product.ID) {
			return nil, apperror.NewConflictError(fmt.Sprintf("Já existe um produto com o código de barras %s.", product.Barcode))
		}
		return append(products, product), nil
	})
	if err != nil {
		return domain.Product{}, apperror.Ensure(err, "Falha ao salvar produto")
	}

	s.logger.Info("Produto cadastrado.", map[string]interface{}{"product_id": product.ID, "name": product.Name})
	return product, nil
}

// Update é a edição direta do produto, inclusive da quantidade em estoque.
// A moeda definida no cadastro não muda.
func (s *Service) Update(ctx context.Context, id string, input domain.ProductInput) (domain.Product, error) {
	if err := validateInput(input); err != nil {
		return domain.Product{}, err
	}

	var updated domain.Product
	err := s.repo.Mutate(ctx, func(products []domain.Product) ([]domain.Product, error) {
		idx := productrepo.IndexOf(products, id)
		if idx < 0 {
			return nil, productrepo.NotFound(id)
		}
		if barcodeTaken(products, strings.TrimSpace(input.Barcode), id) {
			return nil, apperror.NewConflictError(fmt.Sprintf("Já existe um produto com o código de barras %s.", strings.TrimSpace(input.Barcode)))
		}
		s.apply(&products[idx], input)
		products[idx].UpdatedAt = time.Now().UTC()
		updated = products[idx]
		return products, nil
	})
	if err != nil {
		return domain.Product{}, apperror.Ensure(err, "Falha ao atualizar produto")
	}

	s.logger.Info("Produto atualizado.", map[string]interface{}{
		"product_id": id,
		"quantity":   precision.FormatQuantity(updated.Quantity),
	})
	return updated, nil
}

// Delete remove o produto do catálogo. Devoluções e recebimentos guardam
// a fotografia do produto e não são afetados.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Mutate(ctx, func(products []domain.Product) ([]domain.Product, error) {
		idx := productrepo.IndexOf(products, id)
		if idx < 0 {
			return nil, productrepo.NotFound(id)
		}
		return append(products[:idx], products[idx+1:]...), nil
	})
	if err != nil {
		return apperror.Ensure(err, "Falha ao excluir produto")
	}
	s.logger.Info("Produto excluído.", map[string]interface{}{"product_id": id})
	return nil
}

// Get busca um produto pelo ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, apperror.Ensure(err, "Falha ao buscar produto")
	}
	return product, nil
}

// List devolve os produtos que atendem ao filtro. Com Limit > 0 o resultado é paginado.
func (s *Service) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if filter.Page < 0 || filter.Limit < 0 {
		return nil, apperror.NewValidationError("Página e limite devem ser positivos.")
	}

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Ensure(err, "Falha ao listar produtos")
	}

	name := strings.ToLower(strings.TrimSpace(filter.Name))
	category := strings.ToLower(strings.TrimSpace(filter.Category))
	barcode := strings.TrimSpace(filter.Barcode)
	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(p.Category), category) {
			continue
		}
		if barcode != "" && p.Barcode != barcode {
			continue
		}
		result = append(result, p)
	}

	if filter.Limit == 0 {
		return result, nil
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	start := (page - 1) * filter.Limit
	if start >= len(result) {
		return []domain.Product{}, nil
	}
	end := start + filter.Limit
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], nil
}

// LowStock devolve os produtos com quantidade no estoque mínimo ou abaixo dele.
func (s *Service) LowStock(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Ensure(err, "Falha ao listar produtos")
	}
	low := make([]domain.Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}
