package stockservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/docstore"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/pkg/metrics"
	"gobackoffice/internal/repository/collection"
	"gobackoffice/internal/repository/productrepo"
	"gobackoffice/internal/service/stockservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Mutate(ctx context.Context, fn collection.MutateFunc[domain.Product]) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLedger(t *testing.T, mode stockservice.BatchMode, products ...domain.Product) (*stockservice.Service, *productrepo.ProductRepository) {
	t.Helper()
	repo := productrepo.NewProductRepository(docstore.NewMemoryStore(), 3, logger.NewNop())
	require.NoError(t, repo.Mutate(context.Background(), func([]domain.Product) ([]domain.Product, error) {
		return products, nil
	}))
	return stockservice.NewService(repo, logger.NewNop(), mode, nil), repo
}

func quantityOf(t *testing.T, repo *productrepo.ProductRepository, id string) decimal.Decimal {
	t.Helper()
	p, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func TestApply_RoundsAndRejectsNegative(t *testing.T) {
	next, err := stockservice.Apply("p1", dec("1.0004"), dec("0.0006"), domain.DirectionCredit)
	require.NoError(t, err)
	assert.Equal(t, "1.001", next.StringFixed(3))

	next, err = stockservice.Apply("p1", dec("2"), dec("2"), domain.DirectionDebit)
	require.NoError(t, err)
	assert.True(t, next.IsZero())

	_, err = stockservice.Apply("p1", dec("1"), dec("1.001"), domain.DirectionDebit)
	var insufficient *apperror.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "p1", insufficient.ProductID)
}

func TestApplyStockDelta_CreditAndDebit(t *testing.T) {
	svc, repo := newLedger(t, stockservice.BatchAtomic, domain.Product{ID: "p1", Quantity: dec("10")})
	ctx := context.Background()

	p, err := svc.ApplyStockDelta(ctx, "p1", dec("2.5"), domain.DirectionCredit)
	require.NoError(t, err)
	assert.Equal(t, "12.500", p.Quantity.StringFixed(3))
	assert.False(t, p.UpdatedAt.IsZero())

	_, err = svc.ApplyStockDelta(ctx, "p1", dec("12.5"), domain.DirectionDebit)
	require.NoError(t, err)
	assert.True(t, quantityOf(t, repo, "p1").IsZero())
}

// Um débito maior que o disponível falha e não grava nada.
// Mil créditos de 0.001 somam exatamente 1: nenhum erro de arredondamento acumula.
func TestApplyStockDelta_ThousandSmallCreditsStayExact(t *testing.T) {
	svc, repo := newLedger(t, stockservice.BatchAtomic, domain.Product{ID: "p1", Quantity: decimal.Zero})
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_, err := svc.ApplyStockDelta(ctx, "p1", dec("0.001"), domain.DirectionCredit)
		require.NoError(t, err)
	}

	assert.Equal(t, "1.000", quantityOf(t, repo, "p1").StringFixed(3))
	assert.True(t, quantityOf(t, repo, "p1").Equal(decimal.NewFromInt(1)))
}

func TestApplyStockDelta_InsufficientStockLeavesQuantity(t *testing.T) {
	svc, repo := newLedger(t, stockservice.BatchAtomic, domain.Product{ID: "p1", Quantity: dec("3")})

	_, err := svc.ApplyStockDelta(context.Background(), "p1", dec("3.001"), domain.DirectionDebit)

	var insufficient *apperror.InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "3.000", quantityOf(t, repo, "p1").StringFixed(3))
}

func TestApplyStockDelta_InvalidInput(t *testing.T) {
	svc, _ := newLedger(t, stockservice.BatchAtomic, domain.Product{ID: "p1", Quantity: dec("3")})
	ctx := context.Background()

	_, err := svc.ApplyStockDelta(ctx, "nope", dec("1"), domain.DirectionCredit)
	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = svc.ApplyStockDelta(ctx, "p1", dec("-1"), domain.DirectionCredit)
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = svc.ApplyStockDelta(ctx, "p1", dec("1"), domain.StockDirection("sideways"))
	assert.ErrorAs(t, err, &validation)
}

func TestApplyStockDelta_RepositoryFailure(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockRepo.On("Mutate", mock.Anything, mock.Anything).Return(errors.New("conexão perdida"))
	svc := stockservice.NewService(mockRepo, logger.NewNop(), stockservice.BatchAtomic, nil)

	_, err := svc.ApplyStockDelta(context.Background(), "p1", dec("1"), domain.DirectionCredit)

	var internal *apperror.InternalError
	assert.ErrorAs(t, err, &internal)
	mockRepo.AssertExpectations(t)
}

func TestApplyBatch_AtomicAllOrNothing(t *testing.T) {
	svc, repo := newLedger(t, stockservice.BatchAtomic,
		domain.Product{ID: "p1", Quantity: dec("10")},
		domain.Product{ID: "p2", Quantity: dec("1")},
	)

	_, err := svc.ApplyBatch(context.Background(), []domain.StockDelta{
		{ProductID: "p1", Magnitude: dec("4"), Direction: domain.DirectionDebit},
		{ProductID: "p2", Magnitude: dec("2"), Direction: domain.DirectionDebit},
	})

	var insufficient *apperror.InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "10.000", quantityOf(t, repo, "p1").StringFixed(3))
	assert.Equal(t, "1.000", quantityOf(t, repo, "p2").StringFixed(3))
}

func TestApplyBatch_AtomicSameProductTwice(t *testing.T) {
	svc, repo := newLedger(t, stockservice.BatchAtomic, domain.Product{ID: "p1", Quantity: dec("5")})

	updated, err := svc.ApplyBatch(context.Background(), []domain.StockDelta{
		{ProductID: "p1", Magnitude: dec("3"), Direction: domain.DirectionDebit},
		{ProductID: "p1", Magnitude: dec("1.5"), Direction: domain.DirectionCredit},
	})

	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, "2.000", updated[0].Quantity.StringFixed(3))
	assert.Equal(t, "3.500", updated[1].Quantity.StringFixed(3))
	assert.Equal(t, "3.500", quantityOf(t, repo, "p1").StringFixed(3))
}

// No modo sequencial as linhas anteriores à falha continuam gravadas.
func TestApplyBatch_SequentialReportsPartialApplication(t *testing.T) {
	svc, repo := newLedger(t, stockservice.BatchSequential,
		domain.Product{ID: "p1", Quantity: dec("10")},
		domain.Product{ID: "p2", Quantity: dec("1")},
	)

	updated, err := svc.ApplyBatch(context.Background(), []domain.StockDelta{
		{ProductID: "p1", Magnitude: dec("4"), Direction: domain.DirectionDebit},
		{ProductID: "p2", Magnitude: dec("2"), Direction: domain.DirectionDebit},
	})

	var partial *apperror.PartialBatchError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []int{0}, partial.Applied)
	assert.Equal(t, 1, partial.FailedIndex)
	var insufficient *apperror.InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)
	assert.Len(t, updated, 1)
	assert.Equal(t, "6.000", quantityOf(t, repo, "p1").StringFixed(3))
	assert.Equal(t, "1.000", quantityOf(t, repo, "p2").StringFixed(3))
}

func TestApplyBatch_SequentialFirstLineFailureIsPlain(t *testing.T) {
	svc, _ := newLedger(t, stockservice.BatchSequential, domain.Product{ID: "p1", Quantity: dec("1")})

	_, err := svc.ApplyBatch(context.Background(), []domain.StockDelta{
		{ProductID: "ghost", Magnitude: dec("1"), Direction: domain.DirectionCredit},
	})

	var partial *apperror.PartialBatchError
	assert.False(t, errors.As(err, &partial))
	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestApplyBatch_ValidatesEveryLineFirst(t *testing.T) {
	svc, repo := newLedger(t, stockservice.BatchSequential, domain.Product{ID: "p1", Quantity: dec("1")})

	_, err := svc.ApplyBatch(context.Background(), []domain.StockDelta{
		{ProductID: "p1", Magnitude: dec("1"), Direction: domain.DirectionCredit},
		{ProductID: "p1", Magnitude: dec("-1"), Direction: domain.DirectionCredit},
		{ProductID: "", Magnitude: dec("1"), Direction: domain.DirectionCredit},
	})

	assert.Len(t, apperror.Violations(err), 2)
	assert.Equal(t, "1.000", quantityOf(t, repo, "p1").StringFixed(3))

	_, err = svc.ApplyBatch(context.Background(), nil)
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestApplyBatch_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	repo := productrepo.NewProductRepository(docstore.NewMemoryStore(), 3, logger.NewNop())
	require.NoError(t, repo.Mutate(context.Background(), func([]domain.Product) ([]domain.Product, error) {
		return []domain.Product{{ID: "p1", Quantity: dec("1")}}, nil
	}))
	svc := stockservice.NewService(repo, logger.NewNop(), stockservice.BatchAtomic, metrics.NewRecorder(reg))

	_, err := svc.ApplyBatch(context.Background(), []domain.StockDelta{
		{ProductID: "p1", Magnitude: dec("1"), Direction: domain.DirectionCredit},
		{ProductID: "p1", Magnitude: dec("1"), Direction: domain.DirectionDebit},
	})
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "backoffice_stock_deltas_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInvertAndParseBatchMode(t *testing.T) {
	inverted := stockservice.Invert([]domain.StockDelta{
		{ProductID: "p1", Magnitude: dec("1"), Direction: domain.DirectionDebit},
		{ProductID: "p2", Magnitude: dec("2"), Direction: domain.DirectionCredit},
	})
	require.Len(t, inverted, 2)
	assert.Equal(t, "p2", inverted[0].ProductID)
	assert.Equal(t, domain.DirectionDebit, inverted[0].Direction)
	assert.Equal(t, domain.DirectionCredit, inverted[1].Direction)

	mode, err := stockservice.ParseBatchMode(" Sequential ")
	require.NoError(t, err)
	assert.Equal(t, stockservice.BatchSequential, mode)
	mode, err = stockservice.ParseBatchMode("")
	require.NoError(t, err)
	assert.Equal(t, stockservice.BatchAtomic, mode)
	_, err = stockservice.ParseBatchMode("parcial")
	assert.Error(t, err)
}
