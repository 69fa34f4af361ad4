package productrepo_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/docstore"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/repository/productrepo"
)

func seed(t *testing.T, repo *productrepo.ProductRepository, products ...domain.Product) {
	t.Helper()
	require.NoError(t, repo.Mutate(context.Background(), func([]domain.Product) ([]domain.Product, error) {
		return products, nil
	}))
}

func TestProductRepository_FindByIDAndBarcode(t *testing.T) {
	repo := productrepo.NewProductRepository(docstore.NewMemoryStore(), 3, logger.NewNop())
	seed(t, repo,
		domain.Product{ID: "p1", Name: "Café", Barcode: "789", Quantity: decimal.NewFromInt(4)},
		domain.Product{ID: "p2", Name: "Açúcar"},
	)
	ctx := context.Background()

	p, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Café", p.Name)
	assert.True(t, p.Quantity.Equal(decimal.NewFromInt(4)))

	p, err = repo.FindByBarcode(ctx, " 789 ")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	_, err = repo.FindByID(ctx, "nope")
	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = repo.FindByBarcode(ctx, "")
	assert.ErrorAs(t, err, &notFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 1, productrepo.IndexOf(all, "p2"))
	assert.Equal(t, -1, productrepo.IndexOf(all, "p3"))
	assert.Contains(t, productrepo.IndexByID(all), "p1")
}
