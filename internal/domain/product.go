package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinStock é o estoque mínimo atribuído quando o cadastro não informa um.
var DefaultMinStock = decimal.NewFromInt(5)

// Product representa o item do catálogo da loja (a Entidade).
// Quantity e MinStock são sempre gravados com 3 casas decimais.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Unit        string          `json:"unit,omitempty"` // Ex: "un", "kg"
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Currency    string          `json:"currency"` // Definida na criação, nunca convertida
	Barcode     string          `json:"barcode,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsLowStock indica se a quantidade atual está no limite mínimo ou abaixo dele.
func (p Product) IsLowStock() bool {
	return p.Quantity.LessThanOrEqual(p.MinStock)
}

// ProductInput é o payload de criação/edição direta de um produto.
// Campos numéricos ausentes (nil) valem zero no cadastro e são mantidos na edição.
// MinStock e Currency ausentes recebem os padrões da loja no cadastro.
type ProductInput struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Category    string           `json:"category" validate:"max=100"`
	Description string           `json:"description" validate:"max=2000"`
	Brand       string           `json:"brand" validate:"max=100"`
	Unit        string           `json:"unit" validate:"max=20"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	MinStock    *decimal.Decimal `json:"min_stock,omitempty"`
	Currency    string           `json:"currency" validate:"omitempty,len=3"`
	Barcode     string           `json:"barcode" validate:"max=64"`
}

// ProductFilter filtra e pagina a listagem do catálogo.
// Name e Category comparam por trecho, sem diferenciar maiúsculas.
type ProductFilter struct {
	Name     string
	Category string
	Barcode  string
	Page     int
	Limit    int
}
