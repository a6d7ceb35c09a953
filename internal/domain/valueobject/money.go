package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

// MaxAmountUSD - верхняя граница любой суммы в системе.
var MaxAmountUSD = decimal.NewFromInt(1_000_000)

// NewAmountUSD проверяет, что сумма положительна и содержит не больше двух знаков после запятой.
func NewAmountUSD(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperror.Validation("сумма должна быть больше нуля")
	}
	if amount.GreaterThan(MaxAmountUSD) {
		return decimal.Zero, apperror.Validation("сумма превышает допустимый максимум")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return decimal.Zero, apperror.Validation("сумма должна содержать не более двух знаков после запятой")
	}
	return amount, nil
}

// ParseAmountUSD разбирает сумму из строки запроса.
func ParseAmountUSD(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.Validation("некорректная сумма")
	}
	return NewAmountUSD(amount)
}
