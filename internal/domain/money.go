package domain

import "github.com/shopspring/decimal"

// суммы в документе храним числами, как в исходном JSON, а не строками
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Amount денежная сумма в рупиях
type Amount = decimal.Decimal

// NewAmount создаёт сумму из строки вида "2.5"; для констант и тестов
func NewAmount(s string) Amount {
	return decimal.RequireFromString(s)
}
