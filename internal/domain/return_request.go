package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnStatus é o estado de uma solicitação de devolução.
// pending -> approved | rejected; estados finais não mudam mais.
type ReturnStatus string

const (
	ReturnPending  ReturnStatus = "pending"
	ReturnApproved ReturnStatus = "approved"
	ReturnRejected ReturnStatus = "rejected"
)

// IsTerminal indica se o estado não admite novas transições.
func (s ReturnStatus) IsTerminal() bool {
	return s == ReturnApproved || s == ReturnRejected
}

// IsValid verifica se o estado é conhecido.
func (s ReturnStatus) IsValid() bool {
	return s == ReturnPending || s.IsTerminal()
}

// ReturnReason é o motivo fixo de uma linha de devolução.
type ReturnReason string

const (
	ReasonDamaged     ReturnReason = "damaged"
	ReasonWrongItem   ReturnReason = "wrong_item"
	ReasonExpired     ReturnReason = "expired"
	ReasonChangedMind ReturnReason = "customer_changed_mind"
	ReasonOther       ReturnReason = "other" // exige CustomReason
	ReasonNotInformed ReturnReason = ""
)

// IsValid verifica se o motivo pertence à enumeração (vazio é aceito).
func (r ReturnReason) IsValid() bool {
	switch r {
	case ReasonNotInformed, ReasonDamaged, ReasonWrongItem, ReasonExpired, ReasonChangedMind, ReasonOther:
		return true
	}
	return false
}

// ReturnLine é um item da devolução. Nome, código de barras, preço e moeda são
// uma fotografia do produto no momento da criação e não acompanham alterações
// posteriores. MaxQuantity é apenas informativo: a aprovação revalida contra o
// estoque vigente.
type ReturnLine struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Barcode      string          `json:"barcode,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       ReturnReason    `json:"reason,omitempty"`
	CustomReason string          `json:"custom_reason,omitempty"`
	MaxQuantity  decimal.Decimal `json:"max_quantity"`
}

// Customer guarda os dados opcionais do cliente que devolveu.
type Customer struct {
	Name  string `json:"name,omitempty" validate:"max=200"`
	Phone string `json:"phone,omitempty" validate:"max=40"`
	Notes string `json:"notes,omitempty" validate:"max=1000"`
}

// ReturnRequest é a solicitação de devolução. TotalItems e TotalValue são
// calculados na criação e não são recalculados depois.
type ReturnRequest struct {
	ID               string          `json:"id"`
	Number           string          `json:"number"`
	Lines            []ReturnLine    `json:"lines"`
	Status           ReturnStatus    `json:"status"`
	Customer         *Customer       `json:"customer,omitempty"`
	TotalItems       decimal.Decimal `json:"total_items"`
	TotalValue       decimal.Decimal `json:"total_value"`
	RequestedBy      string          `json:"requested_by"`
	RequestedByEmail string          `json:"requested_by_email"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovedByEmail string     `json:"approved_by_email,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`

	RejectedBy      string     `json:"rejected_by,omitempty"`
	RejectedByEmail string     `json:"rejected_by_email,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

// ReturnLineInput é uma linha proposta na criação da devolução.
type ReturnLineInput struct {
	ProductID    string          `json:"product_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       ReturnReason    `json:"reason"`
	CustomReason string          `json:"custom_reason" validate:"max=500"`
}

// CreateReturnInput é o payload de criação de uma devolução.
type CreateReturnInput struct {
	Lines    []ReturnLineInput `json:"lines" validate:"required,min=1,dive"`
	Customer *Customer         `json:"customer,omitempty"`
}

// RejectReturnInput é o payload da rejeição.
type RejectReturnInput struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ReturnFilter filtra a listagem de devoluções.
type ReturnFilter struct {
	Status ReturnStatus
}

// Violation é uma regra de negócio violada por uma linha proposta.
type Violation struct {
	Line      int    `json:"line"`
	ProductID string `json:"product_id"`
	Message   string `json:"message"`
}

// ViolationMessages extrai apenas as mensagens, na ordem das linhas.
func ViolationMessages(violations []Violation) []string {
	messages := make([]string, 0, len(violations))
	for _, v := range violations {
		messages = append(messages, v.Message)
	}
	return messages
}
