package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("4.50", "USD")
	require.NoError(t, err)
	assert.Equal(t, "4.50 USD", m.String())

	_, err = NewMoneyFromString("not-a-number", "USD")
	assert.Error(t, err)
}

func TestMoneyArithmetic(t *testing.T) {
	a, err := NewMoneyFromString("10.00", "CHF")
	require.NoError(t, err)
	b, err := NewMoneyFromString("4.50", "CHF")
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "14.50 CHF", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "5.50 CHF", diff.String())
}

func TestMoneyMixedCommodities(t *testing.T) {
	chf := NewMoney(decimal.NewFromInt(10), "CHF")
	usd := NewMoney(decimal.NewFromInt(10), "USD")

	_, err := chf.Add(usd)
	assert.Error(t, err)

	_, err = chf.Sub(usd)
	assert.Error(t, err)
}

func TestMoneySignHelpers(t *testing.T) {
	m, err := NewMoneyFromString("-4.50", "USD")
	require.NoError(t, err)

	assert.True(t, m.IsNegative())
	assert.False(t, m.IsZero())
	assert.Equal(t, "4.50 USD", m.Abs().String())
	assert.Equal(t, "4.50 USD", m.Neg().String())
	assert.True(t, ZeroMoney("USD").IsZero())
}

func TestMoneyEqual(t *testing.T) {
	a := NewMoney(decimal.NewFromFloat(4.5), "USD")
	b := NewMoney(decimal.NewFromFloat(4.50), "USD")
	c := NewMoney(decimal.NewFromFloat(4.5), "CHF")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
