package returnservice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobackoffice/internal/domain"
)

func line(productID, qty string) domain.ReturnLine {
	return domain.ReturnLine{ProductID: productID, Quantity: decimal.RequireFromString(qty)}
}

func product(id, qty string) domain.Product {
	return domain.Product{ID: id, Name: "Produto " + id, Quantity: decimal.RequireFromString(qty)}
}

// Uma linha com produto ausente e outra sem saldo geram exatamente duas violações.
func TestValidate_ReportsEveryCause(t *testing.T) {
	violations := Validate(
		[]domain.ReturnLine{line("ghost", "1"), line("p1", "3")},
		[]domain.Product{product("p1", "2")},
	)

	require.Len(t, violations, 2)
	assert.Equal(t, domain.Violation{Line: 1, ProductID: "ghost", Message: "Product ghost not found"}, violations[0])
	assert.Equal(t, 2, violations[1].Line)
	assert.Equal(t, "Only 2 units available", violations[1].Message)
}

func TestValidate_EmptyWhenSatisfiable(t *testing.T) {
	violations := Validate(
		[]domain.ReturnLine{line("p1", "2"), line("p2", "0.5")},
		[]domain.Product{product("p1", "2"), product("p2", "10")},
	)
	assert.Empty(t, violations)
}

func TestValidate_ComparesAtTwoDecimals(t *testing.T) {
	// 1.004 e 1.001 empatam em 1.00.
	assert.Empty(t, Validate([]domain.ReturnLine{line("p1", "1.004")}, []domain.Product{product("p1", "1.001")}))

	violations := Validate([]domain.ReturnLine{line("p1", "1.006")}, []domain.Product{product("p1", "1.001")})
	require.Len(t, violations, 1)
	assert.Equal(t, "Only 1 units available", violations[0].Message)
}

func TestValidate_LinesShareTheSameStock(t *testing.T) {
	violations := Validate(
		[]domain.ReturnLine{line("p1", "2"), line("p1", "2")},
		[]domain.Product{product("p1", "3")},
	)

	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].Line)
	assert.Equal(t, "Only 1 units available", violations[0].Message)
}

func TestValidate_RejectsNonPositiveQuantity(t *testing.T) {
	violations := Validate(
		[]domain.ReturnLine{line("p1", "0"), line("p1", "-1")},
		[]domain.Product{product("p1", "3")},
	)

	require.Len(t, violations, 2)
	assert.Equal(t, "Quantity for product Produto p1 must be greater than zero", violations[0].Message)
}

func TestValidateReasons(t *testing.T) {
	violations := validateReasons([]domain.ReturnLineInput{
		{ProductID: "p1", Reason: domain.ReasonDamaged},
		{ProductID: "p2", Reason: domain.ReasonOther, CustomReason: "  "},
		{ProductID: "p3", Reason: domain.ReturnReason("lost")},
		{ProductID: "p4"},
		{ProductID: "p5", Reason: domain.ReasonOther, CustomReason: "Embalagem trocada"},
	})

	require.Len(t, violations, 2)
	assert.Equal(t, "A custom reason is required for product p2", violations[0].Message)
	assert.Equal(t, `Invalid return reason "lost" for product p3`, violations[1].Message)
}
