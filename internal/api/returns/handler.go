package returns

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gobackoffice/internal/domain"
	"gobackoffice/internal/pkg/httpx"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/pkg/middleware"
)

// ReturnService define o fluxo de devoluções consumido pelo Handler.
type ReturnService interface {
	List(ctx context.Context, filter domain.ReturnFilter) ([]domain.ReturnRequest, error)
	Get(ctx context.Context, id string) (domain.ReturnRequest, error)
	Create(ctx context.Context, actor domain.Actor, input domain.CreateReturnInput) (domain.ReturnRequest, error)
	Approve(ctx context.Context, actor domain.Actor, id string) (domain.ReturnRequest, error)
	Reject(ctx context.Context, actor domain.Actor, id string, reason string) (domain.ReturnRequest, error)
	Delete(ctx context.Context, id string) error
}

// Handler agrupa os handlers de devolução.
type Handler struct {
	Service ReturnService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ReturnService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateReturnHandler lida com a requisição POST /v1/returns.
// @Summary Registra uma devolução pendente
// @Description Valida as linhas contra o estoque atual. Nenhum estoque é movido até a aprovação.
// @Tags returns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param return body domain.CreateReturnInput true "Linhas e cliente"
// @Success 201 {object} domain.ReturnRequest
// @Failure 400 {object} domain.ErrorResponse "Violações por linha em details"
// @Router /returns [post]
func (h *Handler) CreateReturnHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	var input domain.CreateReturnInput
	if err := httpx.DecodeJSONBody(r, &input); err != nil {
		httpx.WriteError(w, r, h.Logger, err)
		return
	}

	ret, err := h.Service.Create(ctx, actor, input)
	httpx.Respond(w, r, h.Logger, ret, err, http.StatusCreated)
}

// ListReturnsHandler lida com a requisição GET /v1/returns.
// @Summary Lista devoluções
// @Tags returns
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved ou rejected"
// @Success 200 {array} domain.ReturnRequest
// @Failure 400 {object} domain.ErrorResponse
// @Router /returns [get]
func (h *Handler) ListReturnsHandler(w http.ResponseWriter, r *http.Request) {
	filter := domain.ReturnFilter{Status: domain.ReturnStatus(r.URL.Query().Get("status"))}
	list, err := h.Service.List(r.Context(), filter)
	httpx.Respond(w, r, h.Logger, list, err, http.StatusOK)
}

// GetReturnHandler lida com a requisição GET /v1/returns/{id}.
// @Summary Busca uma devolução
// @Tags returns
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da devolução"
// @Success 200 {object} domain.ReturnRequest
// @Failure 404 {object} domain.ErrorResponse
// @Router /returns/{id} [get]
func (h *Handler) GetReturnHandler(w http.ResponseWriter, r *http.Request) {
	ret, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	httpx.Respond(w, r, h.Logger, ret, err, http.StatusOK)
}

// ApproveReturnHandler lida com a requisição POST /v1/returns/{id}/approve.
// @Summary Aprova uma devolução pendente
// @Description Revalida contra o estoque atual e debita cada linha.
// @Tags returns
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da devolução"
// @Success 200 {object} domain.ReturnRequest
// @Failure 400 {object} domain.ErrorResponse "Violações na revalidação"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Lote parcialmente aplicado"
// @Failure 422 {object} domain.ErrorResponse "Devolução não está pendente"
// @Router /returns/{id}/approve [post]
func (h *Handler) ApproveReturnHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	ret, err := h.Service.Approve(ctx, actor, chi.URLParam(r, "id"))
	httpx.Respond(w, r, h.Logger, ret, err, http.StatusOK)
}

// RejectReturnHandler lida com a requisição POST /v1/returns/{id}/reject.
// @Summary Rejeita uma devolução pendente
// @Tags returns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da devolução"
// @Param body body domain.RejectReturnInput true "Motivo da rejeição"
// @Success 200 {object} domain.ReturnRequest
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 422 {object} domain.ErrorResponse "Devolução não está pendente"
// @Router /returns/{id}/reject [post]
func (h *Handler) RejectReturnHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFromContext(ctx)

	var input domain.RejectReturnInput
	if err := httpx.DecodeJSONBody(r, &input); err != nil {
		httpx.WriteError(w, r, h.Logger, err)
		return
	}

	ret, err := h.Service.Reject(ctx, actor, chi.URLParam(r, "id"), input.Reason)
	httpx.Respond(w, r, h.Logger, ret, err, http.StatusOK)
}

// DeleteReturnHandler lida com a requisição DELETE /v1/returns/{id}.
// @Summary Remove o registro de uma devolução
// @Description Não desfaz movimentos de estoque já aplicados.
// @Tags returns
// @Security BearerAuth
// @Param id path string true "ID da devolução"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Router /returns/{id} [delete]
func (h *Handler) DeleteReturnHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"))
	httpx.Respond(w, r, h.Logger, nil, err, http.StatusNoContent)
}
