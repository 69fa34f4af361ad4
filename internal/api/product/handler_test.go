package product_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gobackoffice/internal/api/product"
	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/logger"
)

// MockProductService é uma implementação mock da interface ProductService
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, actor domain.Actor, input domain.ProductInput) (domain.Product, error) {
	args := m.Called(ctx, actor, input)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, input domain.ProductInput) (domain.Product, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) Get(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]domain.Product)
	return list, args.Error(1)
}

func (m *MockProductService) LowStock(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]domain.Product)
	return list, args.Error(1)
}

func newRouter(svc product.ProductService) http.Handler {
	h := product.NewHandler(svc, logger.NewNop())
	r := chi.NewRouter()
	r.Get("/products", h.ListProductsHandler)
	r.Post("/products", h.CreateProductHandler)
	r.Get("/products/{id}", h.GetProductByIDHandler)
	return r
}

func TestListProductsHandler_ParsesFilter(t *testing.T) {
	svc := new(MockProductService)
	want := domain.ProductFilter{Name: "sham", Category: "higiene", Page: 2, Limit: 10}
	svc.On("List", mock.Anything, want).Return([]domain.Product{{ID: "p1"}}, nil)

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?name=sham&category=higiene&page=2&limit=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestListProductsHandler_InvalidPage(t *testing.T) {
	svc := new(MockProductService)

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?page=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCreateProductHandler_RejectsMissingName(t *testing.T) {
	svc := new(MockProductService)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"price":"10"}`))
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name é obrigatório")
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetProductByIDHandler_NotFound(t *testing.T) {
	svc := new(MockProductService)
	svc.On("Get", mock.Anything, "p9").Return(domain.Product{}, apperror.NewNotFoundError("Produto p9"))

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p9", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}
