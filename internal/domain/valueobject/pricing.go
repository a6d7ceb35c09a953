package valueobject

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

// WordsPerPage - сколько слов считается одной страницей.
const WordsPerPage = 275

const MaxWords = 100_000

type AcademicLevel string

const (
	LevelHighSchool    AcademicLevel = "high_school"
	LevelUndergraduate AcademicLevel = "undergraduate"
	LevelMasters       AcademicLevel = "masters"
	LevelPhD           AcademicLevel = "phd"
	LevelProfessional  AcademicLevel = "professional"
)

var baseRates = map[AcademicLevel]int64{
	LevelHighSchool:    15,
	LevelUndergraduate: 20,
	LevelMasters:       25,
	LevelPhD:           30,
	LevelProfessional:  35,
}

func (l AcademicLevel) IsValid() bool {
	_, ok := baseRates[l]
	return ok
}

// BaseRate - цена страницы в USD для уровня.
func (l AcademicLevel) BaseRate() decimal.Decimal {
	return decimal.NewFromInt(baseRates[l])
}

func NewAcademicLevel(v string) (AcademicLevel, error) {
	l := AcademicLevel(v)
	if !l.IsValid() {
		return "", apperror.Validation("некорректный академический уровень")
	}
	return l, nil
}

// PagesForWords округляет количество страниц вверх.
func PagesForWords(words int) int {
	return (words + WordsPerPage - 1) / WordsPerPage
}

// UrgencyMultiplier зависит от того, сколько осталось до дедлайна.
func UrgencyMultiplier(now, deadline time.Time) decimal.Decimal {
	left := deadline.Sub(now)
	switch {
	case left <= 24*time.Hour:
		return decimal.NewFromInt(3)
	case left <= 3*24*time.Hour:
		return decimal.NewFromInt(2)
	case left <= 7*24*time.Hour:
		return decimal.NewFromFloat(1.5)
	default:
		return decimal.NewFromInt(1)
	}
}

// Quote - расчёт стоимости заказа.
type Quote struct {
	Pages         int
	BaseRate      decimal.Decimal
	Multiplier    decimal.Decimal
	BudgetUSD     decimal.Decimal
	CommissionPct decimal.Decimal
	WriterPoolUSD decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// NewQuote считает pages = ceil(words/275) и budget = ceil(pages * rate * multiplier).
func NewQuote(level AcademicLevel, words int, now, deadline time.Time, commissionPct decimal.Decimal) (Quote, error) {
	if !level.IsValid() {
		return Quote{}, apperror.Validation("некорректный академический уровень")
	}
	if words <= 0 || words > MaxWords {
		return Quote{}, apperror.Validation("количество слов должно быть от 1 до 100000")
	}
	if !deadline.After(now) {
		return Quote{}, apperror.Validation("дедлайн должен быть в будущем")
	}
	if commissionPct.IsNegative() || commissionPct.GreaterThanOrEqual(hundred) {
		return Quote{}, apperror.Validation("некорректная комиссия платформы")
	}

	pages := PagesForWords(words)
	rate := level.BaseRate()
	multiplier := UrgencyMultiplier(now, deadline)
	budget := decimal.NewFromInt(int64(pages)).Mul(rate).Mul(multiplier).Ceil()

	share := hundred.Sub(commissionPct).Div(hundred)
	pool := budget.Mul(share).Truncate(2)

	return Quote{
		Pages:         pages,
		BaseRate:      rate,
		Multiplier:    multiplier,
		BudgetUSD:     budget,
		CommissionPct: commissionPct,
		WriterPoolUSD: pool,
	}, nil
}
