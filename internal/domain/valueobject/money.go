package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const DefaultCurrency = "eur"

var hundred = decimal.NewFromInt(100)

type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, apperror.New(apperror.ErrCodeValidation, "сумма не может быть отрицательной")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// MoneyFromCents переводит сумму в минимальных единицах (как её отдаёт Stripe) в Money.
func MoneyFromCents(cents int64, currency string) Money {
	m, err := NewMoney(decimal.New(cents, -2), currency)
	if err != nil {
		return Money{Amount: decimal.Zero, Currency: DefaultCurrency}
	}
	return m
}

func (m Money) Cents() int64 {
	return m.Amount.Mul(hundred).Round(0).IntPart()
}

func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + strings.ToUpper(m.Currency)
}
