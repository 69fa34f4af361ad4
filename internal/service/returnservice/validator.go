package returnservice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gobackoffice/internal/domain"
	"gobackoffice/internal/pkg/precision"
	"gobackoffice/internal/repository/productrepo"
)

// Mensagens exibidas ao operador da loja.
const (
	msgProductNotFound     = "Product %s not found"
	msgQuantityNotPositive = "Quantity for product %s must be greater than zero"
	msgOnlyAvailable       = "Only %s units available"
	msgInvalidReason       = "Invalid return reason %q for product %s"
	msgCustomReason        = "A custom reason is required for product %s"
)

// Validate confere as linhas propostas contra o snapshot atual de produtos,
// sem efeitos colaterais. Não interrompe na primeira violação: devolve uma por
// linha problemática, na ordem das linhas. A comparação usa 2 casas decimais.
// Linhas do mesmo produto consomem o mesmo saldo, então a lista só sai vazia
// se todas as linhas couberem juntas no estoque.
func Validate(lines []domain.ReturnLine, products []domain.Product) []domain.Violation {
	index := productrepo.IndexByID(products)
	remaining := make(map[string]decimal.Decimal, len(lines))
	var violations []domain.Violation

	for i, line := range lines {
		violation := func(format string, args ...interface{}) {
			violations = append(violations, domain.Violation{
				Line:      i + 1,
				ProductID: line.ProductID,
				Message:   fmt.Sprintf(format, args...),
			})
		}

		product, ok := index[line.ProductID]
		if !ok {
			violation(msgProductNotFound, line.ProductID)
			continue
		}
		if !line.Quantity.IsPositive() {
			violation(msgQuantityNotPositive, product.Name)
			continue
		}

		available, seen := remaining[product.ID]
		if !seen {
			available = precision.Comparison(product.Quantity)
		}
		requested := precision.Comparison(line.Quantity)
		if requested.GreaterThan(available) {
			violation(msgOnlyAvailable, available.String())
			continue
		}
		remaining[product.ID] = available.Sub(requested)
	}
	return violations
}

// validateReasons confere o motivo de cada linha: vazio ou da enumeração, e
// "other" exige texto livre.
func validateReasons(lines []domain.ReturnLineInput) []domain.Violation {
	var violations []domain.Violation
	for i, line := range lines {
		switch {
		case !line.Reason.IsValid():
			violations = append(violations, domain.Violation{
				Line:      i + 1,
				ProductID: line.ProductID,
				Message:   fmt.Sprintf(msgInvalidReason, line.Reason, line.ProductID),
			})
		case line.Reason == domain.ReasonOther && strings.TrimSpace(line.CustomReason) == "":
			violations = append(violations, domain.Violation{
				Line:      i + 1,
				ProductID: line.ProductID,
				Message:   fmt.Sprintf(msgCustomReason, line.ProductID),
			})
		}
	}
	return violations
}
