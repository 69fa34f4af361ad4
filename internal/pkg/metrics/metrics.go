package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	apperror "gobackoffice/internal/errors"
)

// Recorder registra contadores das operações de estoque, devoluções e recebimentos.
// Um Recorder nil (ou criado sem Registerer) ignora as chamadas.
type Recorder struct {
	stockDeltas       *prometheus.CounterVec
	returnTransitions *prometheus.CounterVec
	receipts          *prometheus.CounterVec
}

// NewRecorder registra as métricas no Registerer informado.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		return &Recorder{}
	}
	stockDeltas := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_stock_deltas_total",
		Help: "Movimentos de estoque aplicados pelo livro de estoque.",
	}, []string{"direction", "outcome"})
	returnTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_return_transitions_total",
		Help: "Operações do fluxo de devoluções.",
	}, []string{"transition", "outcome"})
	receipts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_receipts_total",
		Help: "Recebimentos de mercadoria (GRN) processados.",
	}, []string{"outcome"})
	reg.MustRegister(stockDeltas, returnTransitions, receipts)

	return &Recorder{
		stockDeltas:       stockDeltas,
		returnTransitions: returnTransitions,
		receipts:          receipts,
	}
}

// StockDelta conta um movimento de estoque.
func (r *Recorder) StockDelta(direction string, err error) {
	if r == nil || r.stockDeltas == nil {
		return
	}
	r.stockDeltas.WithLabelValues(normalizeLabel(direction), Outcome(err)).Inc()
}

// ReturnTransition conta uma operação do fluxo de devoluções (create, approve, reject, delete).
func (r *Recorder) ReturnTransition(transition string, err error) {
	if r == nil || r.returnTransitions == nil {
		return
	}
	r.returnTransitions.WithLabelValues(normalizeLabel(transition), Outcome(err)).Inc()
}

// Receipt conta um recebimento.
func (r *Recorder) Receipt(err error) {
	if r == nil || r.receipts == nil {
		return
	}
	r.receipts.WithLabelValues(Outcome(err)).Inc()
}

// Outcome traduz o erro em rótulo: "success" ou a categoria do AppError.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if appErr, ok := apperror.AsAppError(err); ok {
		return strings.ToLower(appErr.Category())
	}
	return "unknown_error"
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
