package domain

import "github.com/shopspring/decimal"

// StockDirection indica se um movimento de estoque credita ou debita a quantidade.
type StockDirection string

const (
	DirectionCredit StockDirection = "credit"
	DirectionDebit  StockDirection = "debit"
)

// IsValid verifica se a direção é conhecida.
func (d StockDirection) IsValid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// StockDelta é um movimento de estoque a ser aplicado pelo livro de estoque.
// Magnitude é sempre >= 0; o sinal vem de Direction.
type StockDelta struct {
	ProductID string          `json:"product_id"`
	Magnitude decimal.Decimal `json:"magnitude"`
	Direction StockDirection  `json:"direction"`
}

// StockAdjustmentRequest é o payload esperado para a requisição de ajuste de estoque.
type StockAdjustmentRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Magnitude decimal.Decimal `json:"magnitude"`
	Direction StockDirection  `json:"direction" validate:"required,oneof=credit debit"`
}
