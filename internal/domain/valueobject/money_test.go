package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyFromCents(t *testing.T) {
	m := MoneyFromCents(19900, "EUR")
	assert.Equal(t, "eur", m.Currency)
	assert.True(t, m.Amount.Equal(decimal.RequireFromString("199")))
	assert.Equal(t, int64(19900), m.Cents())
	assert.Equal(t, "199.00 EUR", m.String())
}

func TestMoney_Add(t *testing.T) {
	total := MoneyFromCents(1050, "eur").Add(MoneyFromCents(250, "eur"))
	assert.Equal(t, int64(1300), total.Cents())
}

func TestNewMoney_Negative(t *testing.T) {
	_, err := NewMoney(decimal.NewFromInt(-1), "eur")
	require.Error(t, err)
}

func TestPlanForSubscriptionStatus(t *testing.T) {
	assert.Equal(t, PlanPro, PlanForSubscriptionStatus("active"))
	assert.Equal(t, PlanPro, PlanForSubscriptionStatus("trialing"))
	assert.Equal(t, PlanFree, PlanForSubscriptionStatus("past_due"))
	assert.Equal(t, PlanFree, PlanForSubscriptionStatus("canceled"))
}
