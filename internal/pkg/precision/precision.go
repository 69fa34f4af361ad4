package precision

import "github.com/shopspring/decimal"

// Escalas fixas usadas em todo o sistema. Nenhum outro pacote deve arredondar
// quantidades por conta própria.
const (
	// StorageScale é a precisão com que quantidades são persistidas.
	StorageScale int32 = 3
	// ComparisonScale é a precisão usada apenas na comparação de devoluções
	// contra o estoque disponível (faixa de tolerância).
	ComparisonScale int32 = 2
	// MoneyScale é a precisão dos totais monetários calculados.
	MoneyScale int32 = 2
)

// Storage arredonda para 3 casas decimais (meio para longe do zero).
func Storage(d decimal.Decimal) decimal.Decimal {
	return d.Round(StorageScale)
}

// Comparison arredonda para 2 casas decimais.
func Comparison(d decimal.Decimal) decimal.Decimal {
	return d.Round(ComparisonScale)
}

// Money arredonda valores monetários calculados (totais de linha e de documento).
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// FormatQuantity devolve a quantidade com exatamente 3 casas, como é exibida.
func FormatQuantity(d decimal.Decimal) string {
	return Storage(d).StringFixed(StorageScale)
}
