package product

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/httpx"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/pkg/middleware"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	Create(ctx context.Context, actor domain.Actor, input domain.ProductInput) (domain.Product, error)
	Update(ctx context.Context, id string, input domain.ProductInput) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	LowStock(ctx context.Context) ([]domain.Product, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateProductHandler lida com a requisição POST /v1/products.
// @Summary Cadastra um produto
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body domain.ProductInput true "Dados do produto"
// @Success 201 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "Campos inválidos"
// @Failure 409 {object} domain.ErrorResponse "Código de barras já cadastrado"
// @Router /products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	var input domain.ProductInput
	if err := httpx.DecodeJSONBody(r, &input); err != nil {
		httpx.WriteError(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.Create(ctx, actor, input)
	httpx.Respond(w, r, h.Logger, product, err, http.StatusCreated)
}

// UpdateProductHandler lida com a requisição PUT /v1/products/{id}.
// @Summary Edita um produto
// @Description Edição direta, inclusive da quantidade. Preço, quantidade e estoque mínimo omitidos são mantidos; a moeda definida na criação não muda.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do produto"
// @Param product body domain.ProductInput true "Dados do produto"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id} [put]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	var input domain.ProductInput
	if err := httpx.DecodeJSONBody(r, &input); err != nil {
		httpx.WriteError(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), input)
	httpx.Respond(w, r, h.Logger, product, err, http.StatusOK)
}

// DeleteProductHandler lida com a requisição DELETE /v1/products/{id}.
// @Summary Remove um produto
// @Tags products
// @Security BearerAuth
// @Param id path string true "ID do produto"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id} [delete]
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"))
	httpx.Respond(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// GetProductByIDHandler lida com a requisição GET /v1/products/{id}.
// @Summary Busca um produto
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do produto"
// @Success 200 {object} domain.Product
// @Failure 404 {object} domain.ErrorResponse
// @Router /products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	product, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	httpx.Respond(w, r, h.Logger, product, err, http.StatusOK)
}

// ListProductsHandler lida com a requisição GET /v1/products.
// @Summary Lista o catálogo
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param name query string false "Trecho do nome"
// @Param category query string false "Trecho da categoria"
// @Param barcode query string false "Código de barras exato"
// @Param page query int false "Página (a partir de 1)"
// @Param limit query int false "Itens por página"
// @Success 200 {array} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Router /products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Name:     q.Get("name"),
		Category: q.Get("category"),
		Barcode:  q.Get("barcode"),
	}

	var err error
	if filter.Page, err = intParam(q.Get("page"), "page"); err != nil {
		httpx.WriteError(w, r, h.Logger, err)
		return
	}
	if filter.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		httpx.WriteError(w, r, h.Logger, err)
		return
	}

	products, err := h.Service.List(r.Context(), filter)
	httpx.Respond(w, r, h.Logger, products, err, http.StatusOK)
}

// LowStockHandler lida com a requisição GET /v1/products/low-stock.
// @Summary Produtos no estoque mínimo ou abaixo dele
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Product
// @Router /products/low-stock [get]
func (h *Handler) LowStockHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.LowStock(r.Context())
	httpx.Respond(w, r, h.Logger, products, err, http.StatusOK)
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.NewValidationError(name + " deve ser um inteiro não negativo.")
	}
	return n, nil
}
