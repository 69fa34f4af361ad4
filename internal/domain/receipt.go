package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptStatusReceived é o único estado de uma nota de recebimento (GRN).
const ReceiptStatusReceived = "received"

// ReceiptLine é um item recebido. ProductName é fotografado no recebimento.
type ReceiptLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Receipt é a nota de recebimento de mercadorias. Quando existe, o estoque já
// foi creditado: é um comprovante, não um pedido pendente.
type Receipt struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Lines          []ReceiptLine   `json:"lines"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Status         string          `json:"status"`
	Supplier       string          `json:"supplier,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedBy      string          `json:"created_by"`
	CreatedByEmail string          `json:"created_by_email"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ReceiptLineInput é uma linha do recebimento.
type ReceiptLineInput struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// ReceiveInput é o payload do recebimento.
type ReceiveInput struct {
	Lines    []ReceiptLineInput `json:"lines" validate:"required,min=1,dive"`
	Supplier string             `json:"supplier" validate:"max=200"`
	Notes    string             `json:"notes" validate:"max=1000"`
}
