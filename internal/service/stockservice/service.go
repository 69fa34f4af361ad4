package stockservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/pkg/metrics"
	"gobackoffice/internal/pkg/precision"
	"gobackoffice/internal/repository/collection"
	"gobackoffice/internal/repository/productrepo"
)

// ProductRepository define o contrato que o livro de estoque espera da camada de Persistência.
type ProductRepository interface {
	Mutate(ctx context.Context, fn collection.MutateFunc[domain.Product]) error
}

// BatchMode define como um lote de movimentos é aplicado.
type BatchMode string

const (
	// BatchAtomic valida e aplica todas as linhas em uma única gravação:
	// qualquer linha inválida aborta o lote sem efeito.
	BatchAtomic BatchMode = "atomic"
	// BatchSequential grava linha a linha; uma falha no meio deixa as linhas
	// anteriores aplicadas e é reportada com PartialBatchError.
	BatchSequential BatchMode = "sequential"
)

// ParseBatchMode converte o valor de configuração.
func ParseBatchMode(value string) (BatchMode, error) {
	switch mode := BatchMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "", BatchAtomic:
		return BatchAtomic, nil
	case BatchSequential:
		return BatchSequential, nil
	default:
		return "", fmt.Errorf("modo de lote desconhecido: %q", value)
	}
}

// Service é o livro de estoque: única autoridade que altera Product.Quantity.
type Service struct {
	repo    ProductRepository
	logger  logger.Logger
	metrics *metrics.Recorder
	mode    BatchMode
}

// NewService cria e retorna uma nova instância do livro de estoque.
func NewService(repo ProductRepository, logger logger.Logger, mode BatchMode, rec *metrics.Recorder) *Service {
	if mode == "" {
		mode = BatchAtomic
	}
	return &Service{repo: repo, logger: logger, metrics: rec, mode: mode}
}

// Mode devolve o modo de lote configurado.
func (s *Service) Mode() BatchMode {
	return s.mode
}

// Apply calcula a nova quantidade. Operandos e resultado são arredondados para
// 3 casas; um débito que deixaria o estoque negativo falha com InsufficientStock.
func Apply(productID string, current, magnitude decimal.Decimal, direction domain.StockDirection) (decimal.Decimal, error) {
	current = precision.Storage(current)
	magnitude = precision.Storage(magnitude)

	var next decimal.Decimal
	switch direction {
	case domain.DirectionCredit:
		next = current.Add(magnitude)
	case domain.DirectionDebit:
		next = current.Sub(magnitude)
	default:
		return decimal.Decimal{}, apperror.NewValidationError(fmt.Sprintf("Direção de movimento inválida: %q.", direction))
	}

	next = precision.Storage(next)
	if next.IsNegative() {
		return decimal.Decimal{}, apperror.NewInsufficientStockError(productID, current, magnitude)
	}
	return next, nil
}

func validateDelta(delta domain.StockDelta) string {
	switch {
	case strings.TrimSpace(delta.ProductID) == "":
		return "O produto do movimento é obrigatório."
	case delta.Magnitude.IsNegative():
		return fmt.Sprintf("A quantidade do movimento do produto %s não pode ser negativa.", delta.ProductID)
	case !delta.Direction.IsValid():
		return fmt.Sprintf("Direção de movimento inválida: %q.", delta.Direction)
	}
	return ""
}

// ApplyStockDelta credita ou debita a quantidade de um produto.
// Falhas (produto ausente, estoque insuficiente) não gravam nada.
func (s *Service) ApplyStockDelta(ctx context.Context, productID string, magnitude decimal.Decimal, direction domain.StockDirection) (domain.Product, error) {
	delta := domain.StockDelta{ProductID: productID, Magnitude: magnitude, Direction: direction}
	s.logger.Debug("Iniciando movimento de estoque.", map[string]interface{}{
		"product_id": productID,
		"magnitude":  magnitude.String(),
		"direction":  direction,
	})

	if msg := validateDelta(delta); msg != "" {
		err := apperror.NewValidationError(msg)
		s.metrics.StockDelta(string(direction), err)
		return domain.Product{}, err
	}

	var updated domain.Product
	err := s.repo.Mutate(ctx, func(products []domain.Product) ([]domain.Product, error) {
		idx := productrepo.IndexOf(products, productID)
		if idx < 0 {
			return nil, productrepo.NotFound(productID)
		}
		next, err := Apply(productID, products[idx].Quantity, magnitude, direction)
		if err != nil {
			return nil, err
		}
		products[idx].Quantity = next
		products[idx].UpdatedAt = time.Now().UTC()
		updated = products[idx]
		return products, nil
	})
	s.metrics.StockDelta(string(direction), err)
	if err != nil {
		s.logger.Warn("Movimento de estoque recusado.", map[string]interface{}{
			"product_id": productID,
			"direction":  direction,
			"error":      err.Error(),
		})
		return domain.Product{}, apperror.Ensure(err, "Falha interna ao ajustar estoque")
	}

	s.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"product_id":   productID,
		"direction":    direction,
		"new_quantity": precision.FormatQuantity(updated.Quantity),
	})
	return updated, nil
}

// ApplyBatch aplica uma lista de movimentos na ordem recebida e devolve o
// estado de cada produto logo após a sua linha.
func (s *Service) ApplyBatch(ctx context.Context, deltas []domain.StockDelta) ([]domain.Product, error) {
	if len(deltas) == 0 {
		return nil, apperror.NewValidationError("O lote deve conter ao menos um movimento.")
	}

	var violations []string
	for i, d := range deltas {
		if msg := validateDelta(d); msg != "" {
			violations = append(violations, fmt.Sprintf("Linha %d: %s", i+1, msg))
		}
	}
	if len(violations) > 0 {
		return nil, apperror.NewViolationsError(violations)
	}

	if s.mode == BatchSequential {
		return s.applySequential(ctx, deltas)
	}
	return s.applyAtomic(ctx, deltas)
}

func (s *Service) applyAtomic(ctx context.Context, deltas []domain.StockDelta) ([]domain.Product, error) {
	var updated []domain.Product
	err := s.repo.Mutate(ctx, func(products []domain.Product) ([]domain.Product, error) {
		updated = make([]domain.Product, len(deltas))
		now := time.Now().UTC()
		for i, d := range deltas {
			idx := productrepo.IndexOf(products, d.ProductID)
			if idx < 0 {
				return nil, productrepo.NotFound(d.ProductID)
			}
			next, err := Apply(d.ProductID, products[idx].Quantity, d.Magnitude, d.Direction)
			if err != nil {
				return nil, err
			}
			products[idx].Quantity = next
			products[idx].UpdatedAt = now
			updated[i] = products[idx]
		}
		return products, nil
	})
	for _, d := range deltas {
		s.metrics.StockDelta(string(d.Direction), err)
	}
	if err != nil {
		s.logger.Warn("Lote de estoque recusado; nenhuma linha aplicada.", map[string]interface{}{
			"lines": len(deltas),
			"error": err.Error(),
		})
		return nil, apperror.Ensure(err, "Falha interna ao aplicar lote de estoque")
	}

	s.logger.Info("Lote de estoque aplicado.", map[string]interface{}{"lines": len(deltas), "mode": BatchAtomic})
	return updated, nil
}

func (s *Service) applySequential(ctx context.Context, deltas []domain.StockDelta) ([]domain.Product, error) {
	updated := make([]domain.Product, 0, len(deltas))
	applied := make([]int, 0, len(deltas))
	for i, d := range deltas {
		p, err := s.ApplyStockDelta(ctx, d.ProductID, d.Magnitude, d.Direction)
		if err != nil {
			if len(applied) == 0 {
				return nil, err
			}
			s.logger.Warn("Lote sequencial interrompido; linhas anteriores permanecem aplicadas.", map[string]interface{}{
				"failed_line":   i + 1,
				"applied_lines": len(applied),
			})
			return updated, &apperror.PartialBatchError{Applied: applied, FailedIndex: i, Err: err}
		}
		updated = append(updated, p)
		applied = append(applied, i)
	}
	return updated, nil
}

// Invert devolve os movimentos opostos, em ordem reversa (ação compensatória).
func Invert(deltas []domain.StockDelta) []domain.StockDelta {
	inverted := make([]domain.StockDelta, 0, len(deltas))
	for i := len(deltas) - 1; i >= 0; i-- {
		d := deltas[i]
		if d.Direction == domain.DirectionCredit {
			d.Direction = domain.DirectionDebit
		} else {
			d.Direction = domain.DirectionCredit
		}
		inverted = append(inverted, d)
	}
	return inverted
}
