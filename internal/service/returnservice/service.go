package returnservice

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
	"gobackoffice/internal/pkg/metrics"
	"gobackoffice/internal/pkg/precision"
	"gobackoffice/internal/repository/collection"
	"gobackoffice/internal/repository/productrepo"
	"gobackoffice/internal/repository/returnrepo"
	"gobackoffice/internal/service/stockservice"
)

// NumberPrefix prefixa o número legível das devoluções.
const NumberPrefix = "RET"

// ProductReader é o acesso de leitura ao catálogo usado para validar e fotografar linhas.
type ProductReader interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
}

// ReturnRepository define o contrato esperado da camada de Persistência de devoluções.
type ReturnRepository interface {
	FindAll(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnRequest, error)
	FindByID(ctx context.Context, id string) (domain.ReturnRequest, error)
	Mutate(ctx context.Context, fn collection.MutateFunc[domain.ReturnRequest]) error
}

// StockLedger é a parte do livro de estoque usada na aprovação.
type StockLedger interface {
	ApplyBatch(ctx context.Context, deltas []domain.StockDelta) ([]domain.Product, error)
}

// Service conduz a devolução de pending para approved ou rejected.
type Service struct {
	products ProductReader
	returns  ReturnRepository
	ledger   StockLedger
	logger   logger.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
	newID    func() string
	number   func(time.Time) string
}

// Option ajusta dependências do serviço (relógio e geradores, em testes).
type Option func(*Service)

// WithClock troca o relógio usado nos carimbos de data.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator troca o gerador de IDs e de números legíveis.
func WithIDGenerator(newID func() string, number func(time.Time) string) Option {
	return func(s *Service) {
		s.newID = newID
		s.number = number
	}
}

// NewService cria e retorna uma nova instância do fluxo de devoluções.
func NewService(products ProductReader, returns ReturnRepository, ledger StockLedger, logger logger.Logger, rec *metrics.Recorder, opts ...Option) *Service {
	s := &Service{
		products: products,
		returns:  returns,
		ledger:   ledger,
		logger:   logger,
		metrics:  rec,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    docstore.GenerateID,
		number:   func(at time.Time) string { return docstore.GenerateNumber(NumberPrefix, at) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List devolve as devoluções, opcionalmente filtradas por status.
func (s *Service) List(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnRequest, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperror.NewValidationError(fmt.Sprintf("Status de devolução inválido: %q.", filter.Status))
	}
	returns, err := s.returns.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.Ensure(err, "Falha ao listar devoluções")
	}
	return returns, nil
}

// Get busca uma devolução pelo ID.
func (s *Service) Get(ctx context.Context, id string) (domain.ReturnRequest, error) {
	ret, err := s.returns.FindByID(ctx, id)
	if err != nil {
		return domain.ReturnRequest{}, apperror.Ensure(err, "Falha ao buscar devolução")
	}
	return ret, nil
}

// Create valida as linhas contra o estoque atual e grava uma devolução pending.
// Qualquer violação impede a criação.
func (s *Service) Create(ctx context.Context, actor domain.Actor, input domain.CreateReturnInput) (ret domain.ReturnRequest, err error) {
	defer func() { s.metrics.ReturnTransition("create", err) }()

	if len(input.Lines) == 0 {
		return domain.ReturnRequest{}, apperror.NewValidationError("A devolução deve conter ao menos um item.")
	}

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return domain.ReturnRequest{}, apperror.Ensure(err, "Falha ao carregar produtos")
	}

	lines := snapshotLines(input.Lines, productrepo.IndexByID(products))
	violations := append(validateReasons(input.Lines), Validate(lines, products)...)
	if len(violations) > 0 {
		s.logger.Info("Devolução recusada na validação.", map[string]interface{}{
			"violations": len(violations),
			"actor":      actor.Email,
		})
		return domain.ReturnRequest{}, apperror.NewViolationsError(domain.ViolationMessages(violations))
	}

	now := s.now()
	ret = domain.ReturnRequest{
		ID:               s.newID(),
		Number:           s.number(now),
		Lines:            lines,
		Status:           domain.ReturnPending,
		Customer:         normalizeCustomer(input.Customer),
		RequestedBy:      actor.ID,
		RequestedByEmail: actor.Email,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	ret.TotalItems, ret.TotalValue = totals(lines)

	err = s.returns.Mutate(ctx, func(items []domain.ReturnRequest) ([]domain.ReturnRequest, error) {
		return append(items, ret), nil
	})
	if err != nil {
		return domain.ReturnRequest{}, apperror.Ensure(err, "Falha ao gravar devolução")
	}

	s.logger.Info("Devolução criada.", map[string]interface{}{
		"return_id":   ret.ID,
		"number":      ret.Number,
		"total_items": ret.TotalItems.String(),
	})
	return ret, nil
}

// Approve revalida a devolução contra o estoque vigente, debita cada linha e
// marca a devolução como approved.
func (s *Service) Approve(ctx context.Context, actor domain.Actor, id string) (ret domain.ReturnRequest, err error) {
	defer func() { s.metrics.ReturnTransition("approve", err) }()

	current, err := s.returns.FindByID(ctx, id)
	if err != nil {
		return domain.ReturnRequest{}, apperror.Ensure(err, "Falha ao buscar devolução")
	}
	if current.Status != domain.ReturnPending {
		return domain.ReturnRequest{}, notPending(current)
	}

	products, err := s.products.FindAll(ctx)
	if err != nil {
		return domain.ReturnRequest{}, apperror.Ensure(err, "Falha ao carregar produtos")
	}
	if violations := Validate(current.Lines, products); len(violations) > 0 {
		s.logger.Info("Aprovação recusada: estoque mudou desde a criação.", map[string]interface{}{
			"return_id":  id,
			"violations": len(violations),
		})
		return domain.ReturnRequest{}, apperror.NewViolationsError(domain.ViolationMessages(violations))
	}

	debits := debitsFor(current.Lines)
	if _, err := s.ledger.ApplyBatch(ctx, debits); err != nil {
		s.logger.Warn("Débitos da devolução falharam; devolução permanece pending.", map[string]interface{}{
			"return_id": id,
			"error":     err.Error(),
		})
		return domain.ReturnRequest{}, apperror.Ensure(err, "Falha ao debitar estoque da devolução")
	}

	now := s.now()
	err = s.returns.Mutate(ctx, func(items []domain.ReturnRequest) ([]domain.ReturnRequest, error) {
		idx := returnrepo.IndexOf(items, id)
		if idx < 0 {
			return nil, returnrepo.NotFound(id)
		}
		if items[idx].Status != domain.ReturnPending {
			return nil, notPending(items[idx])
		}
		items[idx].Status = domain.ReturnApproved
		items[idx].ApprovedBy = actor.ID
		items[idx].ApprovedByEmail = actor.Email
		items[idx].ApprovedAt = &now
		items[idx].UpdatedAt = now
		ret = items[idx]
		return items, nil
	})
	if err != nil {
		// Outra operação mudou a devolução depois dos débitos: devolve o estoque.
		s.compensate(ctx, id, debits)
		return domain.ReturnRequest{}, apperror.Ensure(err, "Falha ao aprovar devolução")
	}

	s.logger.Info("Devolução aprovada.", map[string]interface{}{
		"return_id": id,
		"number":    ret.Number,
		"actor":     actor.Email,
	})
	return ret, nil
}

// Reject marca a devolução pending como rejected. Não toca no estoque.
func (s *Service) Reject(ctx context.Context, actor domain.Actor, id string, reason string) (ret domain.ReturnRequest, err error) {
	defer func() { s.metrics.ReturnTransition("reject", err) }()

	now := s.now()
	err = s.returns.Mutate(ctx, func(items []domain.ReturnRequest) ([]domain.ReturnRequest, error) {
		idx := returnrepo.IndexOf(items, id)
		if idx < 0 {
			return nil, returnrepo.NotFound(id)
		}
		// Estado antes do motivo: devolução finalizada é sempre InvalidState.
		if items[idx].Status != domain.ReturnPending {
			return nil, notPending(items[idx])
		}
		if strings.TrimSpace(reason) == "" {
			return nil, apperror.NewValidationError("O motivo da rejeição é obrigatório.")
		}
		items[idx].Status = domain.ReturnRejected
		items[idx].RejectedBy = actor.ID
		items[idx].RejectedByEmail = actor.Email
		items[idx].RejectedAt = &now
		items[idx].RejectionReason = reason
		items[idx].UpdatedAt = now
		ret = items[idx]
		return items, nil
	})
	if err != nil {
		return domain.ReturnRequest{}, apperror.Ensure(err, "Falha ao rejeitar devolução")
	}

	s.logger.Info("Devolução rejeitada.", map[string]interface{}{"return_id": id, "actor": actor.Email})
	return ret, nil
}

// Delete remove a devolução em qualquer estado. Débitos já aplicados por uma
// aprovação anterior não são desfeitos.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	defer func() { s.metrics.ReturnTransition("delete", err) }()

	var removed domain.ReturnRequest
	err = s.returns.Mutate(ctx, func(items []domain.ReturnRequest) ([]domain.ReturnRequest, error) {
		idx := returnrepo.IndexOf(items, id)
		if idx < 0 {
			return nil, returnrepo.NotFound(id)
		}
		removed = items[idx]
		return append(items[:idx], items[idx+1:]...), nil
	})
	if err != nil {
		return apperror.Ensure(err, "Falha ao excluir devolução")
	}

	s.logger.Info("Devolução excluída.", map[string]interface{}{"return_id": id, "status": removed.Status})
	return nil
}

func (s *Service) compensate(ctx context.Context, id string, debits []domain.StockDelta) {
	if _, err := s.ledger.ApplyBatch(ctx, stockservice.Invert(debits)); err != nil {
		s.logger.Error(fmt.Sprintf("Falha ao estornar débitos da devolução %s.", id), err)
		return
	}
	s.logger.Warn("Débitos da devolução estornados.", map[string]interface{}{"return_id": id})
}

func notPending(ret domain.ReturnRequest) error {
	return apperror.NewInvalidStateError(fmt.Sprintf("Devolução %s não está pendente (status atual: %s).", ret.Number, ret.Status))
}

// snapshotLines fotografa nome, código de barras, preço, moeda e saldo de cada
// produto. Linhas de produtos ausentes ficam só com o ID (o Validate as acusa).
func snapshotLines(inputs []domain.ReturnLineInput, index map[string]domain.Product) []domain.ReturnLine {
	lines := make([]domain.ReturnLine, 0, len(inputs))
	for _, in := range inputs {
		line := domain.ReturnLine{
			ProductID: strings.TrimSpace(in.ProductID),
			Quantity:  precision.Storage(in.Quantity),
			Reason:    in.Reason,
		}
		if in.Reason == domain.ReasonOther {
			line.CustomReason = strings.TrimSpace(in.CustomReason)
		}
		if p, ok := index[line.ProductID]; ok {
			line.ProductName = p.Name
			line.Barcode = p.Barcode
			line.Price = p.Price
			line.Currency = p.Currency
			line.MaxQuantity = p.Quantity
		}
		lines = append(lines, line)
	}
	return lines
}

func totals(lines []domain.ReturnLine) (items, value decimal.Decimal) {
	for _, l := range lines {
		items = items.Add(l.Quantity)
		value = value.Add(l.Quantity.Mul(l.Price))
	}
	return precision.Storage(items), precision.Money(value)
}

func debitsFor(lines []domain.ReturnLine) []domain.StockDelta {
	deltas := make([]domain.StockDelta, 0, len(lines))
	for _, l := range lines {
		deltas = append(deltas, domain.StockDelta{
			ProductID: l.ProductID,
			Magnitude: l.Quantity,
			Direction: domain.DirectionDebit,
		})
	}
	return deltas
}

func normalizeCustomer(c *domain.Customer) *domain.Customer {
	if c == nil {
		return nil
	}
	trimmed := domain.Customer{
		Name:  strings.TrimSpace(c.Name),
		Phone: strings.TrimSpace(c.Phone),
		Notes: strings.TrimSpace(c.Notes),
	}
	if trimmed == (domain.Customer{}) {
		return nil
	}
	return &trimmed
}
