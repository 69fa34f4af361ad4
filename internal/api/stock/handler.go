package stock

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"gobackoffice/internal/domain"
	"gobackoffice/internal/pkg/httpx"
	"gobackoffice/internal/pkg/logger"
)

// StockService define o contrato que o Handler espera do livro de estoque.
type StockService interface {
	ApplyStockDelta(ctx context.Context, productID string, magnitude decimal.Decimal, direction domain.StockDirection) (domain.Product, error)
}

// Handler agrupa todos os métodos de Handler de estoque.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StockService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// AdjustStockHandler lida com a requisição POST /v1/stock/adjust.
// @Summary Ajuste manual de estoque
// @Description Credita ou debita a quantidade de um produto. Débitos maiores que o saldo são recusados.
// @Tags stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param adjustment body domain.StockAdjustmentRequest true "Movimento de estoque"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 422 {object} domain.ErrorResponse "Estoque insuficiente"
// @Router /stock/adjust [post]
func (h *Handler) AdjustStockHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.StockAdjustmentRequest
	if err := httpx.DecodeJSONBody(r, &req); err != nil {
		httpx.WriteError(w, r, h.Logger, err)
		return
	}

	product, err := h.Service.ApplyStockDelta(r.Context(), req.ProductID, req.Magnitude, req.Direction)
	httpx.Respond(w, r, h.Logger, product, err, http.StatusOK)
}
