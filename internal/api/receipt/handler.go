package receipt

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gobackoffice/internal/domain"
	"gobackoffice/internal/pkg/httpx"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/pkg/middleware"
)

// ReceiptService define o recebimento de mercadorias consumido pelo Handler.
type ReceiptService interface {
	List(ctx context.Context) ([]domain.Receipt, error)
	Get(ctx context.Context, id string) (domain.Receipt, error)
	Receive(ctx context.Context, actor domain.Actor, input domain.ReceiveInput) (domain.Receipt, error)
}

// Handler agrupa os handlers de recebimento.
type Handler struct {
	Service ReceiptService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ReceiptService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// ReceiveHandler lida com a requisição POST /v1/receipts.
// @Summary Registra um recebimento (GRN)
// @Description Credita o estoque de cada linha e grava a nota com status received.
// @Tags receipts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param receipt body domain.ReceiveInput true "Linhas recebidas"
// @Success 201 {object} domain.Receipt
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Produto inexistente"
// @Failure 409 {object} domain.ErrorResponse "Lote parcialmente aplicado"
// @Router /receipts [post]
func (h *Handler) ReceiveHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	var input domain.ReceiveInput
	if err := httpx.DecodeJSONBody(r, &input); err != nil {
		httpx.WriteError(w, r, h.Logger, err)
		return
	}

	receipt, err := h.Service.Receive(ctx, actor, input)
	httpx.Respond(w, r, h.Logger, receipt, err, http.StatusCreated)
}

// ListReceiptsHandler lida com a requisição GET /v1/receipts.
// @Summary Lista recebimentos
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Receipt
// @Router /receipts [get]
func (h *Handler) ListReceiptsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	httpx.Respond(w, r, h.Logger, list, err, http.StatusOK)
}

// GetReceiptHandler lida com a requisição GET /v1/receipts/{id}.
// @Summary Busca um recebimento
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do recebimento"
// @Success 200 {object} domain.Receipt
// @Failure 404 {object} domain.ErrorResponse
// @Router /receipts/{id} [get]
func (h *Handler) GetReceiptHandler(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	httpx.Respond(w, r, h.Logger, receipt, err, http.StatusOK)
}
