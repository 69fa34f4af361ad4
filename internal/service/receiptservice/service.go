package receiptservice

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
	"gobackoffice/internal/service/stockservice"
)

// NumberPrefix prefixa o número legível das notas de recebimento.
const NumberPrefix = "GRN"

// ReceiptRepository define o contrato esperado da camada de Persistência de recebimentos.
type ReceiptRepository interface {
	FindAll(ctx context.Context) ([]domain.Receipt, error)
	FindByID(ctx context.Context, id string) (domain.Receipt, error)
	Append(ctx context.Context, receipt domain.Receipt) error
}

// StockLedger é a parte do livro de estoque usada no recebimento.
type StockLedger interface {
	ApplyBatch(ctx context.Context, deltas []domain.StockDelta) ([]domain.Product, error)
}

// Service registra a entrada de mercadorias (GRN).
type Service struct {
	receipts ReceiptRepository
	ledger   StockLedger
	logger   logger.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
}

// NewService cria e retorna uma nova instância do serviço de recebimentos.
func NewService(receipts ReceiptRepository, ledger StockLedger, logger logger.Logger, rec *metrics.Recorder) *Service {
	return &Service{
		receipts: receipts,
		ledger:   ledger,
		logger:   logger,
		metrics:  rec,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List devolve os recebimentos na ordem de criação.
func (s *Service) List(ctx context.Context) ([]domain.Receipt, error) {
	receipts, err := s.receipts.FindAll(ctx)
	if err != nil {
		return nil, apperror.Ensure(err, "Falha ao listar recebimentos")
	}
	return receipts, nil
}

// Get busca um recebimento pelo ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Receipt, error) {
	receipt, err := s.receipts.FindByID(ctx, id)
	if err != nil {
		return domain.Receipt{}, apperror.Ensure(err, "Falha ao buscar recebimento")
	}
	return receipt, nil
}

func validateLines(lines []domain.ReceiptLineInput) []string {
	var violations []string
	for i, l := range lines {
		id := strings.TrimSpace(l.ProductID)
		switch {
		case id == "":
			violations = append(violations, fmt.Sprintf("Product is required on line %d", i+1))
		case !precision.Storage(l.Quantity).IsPositive():
			violations = append(violations, fmt.Sprintf("Quantity for product %s must be greater than zero", id))
		case l.UnitCost.IsNegative():
			violations = append(violations, fmt.Sprintf("Unit cost for product %s cannot be negative", id))
		}
	}
	return violations
}

// Receive credita cada linha no estoque e grava a nota com status "received".
// Linhas inválidas são recusadas antes de qualquer movimento.
func (s *Service) Receive(ctx context.Context, actor domain.Actor, input domain.ReceiveInput) (receipt domain.Receipt, err error) {
	defer func() { s.metrics.Receipt(err) }()

	if len(input.Lines) == 0 {
		return domain.Receipt{}, apperror.NewValidationError("O recebimento deve conter ao menos um item.")
	}
	if violations := validateLines(input.Lines); len(violations) > 0 {
		return domain.Receipt{}, apperror.NewViolationsError(violations)
	}

	credits := make([]domain.StockDelta, 0, len(input.Lines))
	for _, l := range input.Lines {
		credits = append(credits, domain.StockDelta{
			ProductID: strings.TrimSpace(l.ProductID),
			Magnitude: precision.Storage(l.Quantity),
			Direction: domain.DirectionCredit,
		})
	}

	updated, err := s.ledger.ApplyBatch(ctx, credits)
	if err != nil {
		s.logger.Warn("Créditos do recebimento falharam.", map[string]interface{}{
			"lines": len(credits),
			"error": err.Error(),
		})
		return domain.Receipt{}, apperror.Ensure(err, "Falha ao creditar estoque do recebimento")
	}

	now := s.now()
	receipt = domain.Receipt{
		ID:             docstore.GenerateID(),
		Number:         docstore.GenerateNumber(NumberPrefix, now),
		Lines:          make([]domain.ReceiptLine, 0, len(input.Lines)),
		Status:         domain.ReceiptStatusReceived,
		Supplier:       strings.TrimSpace(input.Supplier),
		Notes:          strings.TrimSpace(input.Notes),
		CreatedBy:      actor.ID,
		CreatedByEmail: actor.Email,
		CreatedAt:      now,
	}
	total := decimal.Zero
	for i, l := range input.Lines {
		line := domain.ReceiptLine{
			ProductID: credits[i].ProductID,
			Quantity:  credits[i].Magnitude,
			UnitCost:  l.UnitCost,
		}
		if i < len(updated) {
			line.ProductName = updated[i].Name
		}
		amount := line.Quantity.Mul(line.UnitCost)
		line.LineTotal = precision.Money(amount)
		total = total.Add(amount)
		receipt.Lines = append(receipt.Lines, line)
	}
	receipt.TotalValue = precision.Money(total)

	if err = s.receipts.Append(ctx, receipt); err != nil {
		// A nota não foi gravada: desfaz os créditos.
		if _, cErr := s.ledger.ApplyBatch(ctx, stockservice.Invert(credits)); cErr != nil {
			s.logger.Error("Falha ao estornar créditos de recebimento não gravado.", cErr)
		}
		return domain.Receipt{}, apperror.Ensure(err, "Falha ao gravar recebimento")
	}

	s.logger.Info("Recebimento registrado.", map[string]interface{}{
		"receipt_id":  receipt.ID,
		"number":      receipt.Number,
		"total_value": receipt.TotalValue.String(),
		"actor":       actor.Email,
	})
	return receipt, nil
}
