package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with a commodity code.
type Money struct {
	Amount    decimal.Decimal `json:"amount" yaml:"amount"`
	Commodity string          `json:"commodity" yaml:"commodity"`
}

// NewMoney creates a new Money instance with the given amount and commodity.
func NewMoney(amount decimal.Decimal, commodity string) Money {
	return Money{
		Amount:    amount,
		Commodity: commodity,
	}
}

// NewMoneyFromString creates a new Money instance from a string amount.
func NewMoneyFromString(amount, commodity string) (Money, error) {
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string '%s': %w", amount, err)
	}
	return Money{
		Amount:    dec,
		Commodity: commodity,
	}, nil
}

// ZeroMoney returns a Money instance with zero amount in the given commodity.
func ZeroMoney(commodity string) Money {
	return Money{
		Amount:    decimal.Zero,
		Commodity: commodity,
	}
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsNegative returns true if the amount is negative.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// Abs returns the absolute value of the money amount.
func (m Money) Abs() Money {
	return Money{
		Amount:    m.Amount.Abs(),
		Commodity: m.Commodity,
	}
}

// Neg returns the negated money amount.
func (m Money) Neg() Money {
	return Money{
		Amount:    m.Amount.Neg(),
		Commodity: m.Commodity,
	}
}

// Add adds another Money value to this one.
// Returns an error if commodities don't match.
func (m Money) Add(other Money) (Money, error) {
	if m.Commodity != other.Commodity {
		return Money{}, fmt.Errorf("cannot add different commodities: %s and %s", m.Commodity, other.Commodity)
	}
	return Money{
		Amount:    m.Amount.Add(other.Amount),
		Commodity: m.Commodity,
	}, nil
}

// Sub subtracts another Money value from this one.
// Returns an error if commodities don't match.
func (m Money) Sub(other Money) (Money, error) {
	if m.Commodity != other.Commodity {
		return Money{}, fmt.Errorf("cannot subtract different commodities: %s and %s", m.Commodity, other.Commodity)
	}
	return Money{
		Amount:    m.Amount.Sub(other.Amount),
		Commodity: m.Commodity,
	}, nil
}

// Equal returns true if two Money values are equal (same amount and commodity).
func (m Money) Equal(other Money) bool {
	return m.Amount.Equal(other.Amount) && m.Commodity == other.Commodity
}

// String returns a string representation of the money value.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Commodity)
}
