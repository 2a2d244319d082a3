package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Coffee Shop", "coffee shop"},
		{"collapses whitespace", "Coffee   Shop\tDowntown", "coffee shop downtown"},
		{"trims edges", "  Coffee Shop  ", "coffee shop"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDescription(tt.input))
		})
	}
}

func TestHasUnclassified(t *testing.T) {
	tx := &Transaction{
		Postings: []*Posting{
			{Account: UnclassifiedAccount, Amount: NewMoney(decimal.NewFromFloat(4.5), "USD")},
			{Account: "Assets:Checking", Elided: true},
		},
	}
	assert.True(t, tx.HasUnclassified())
	assert.True(t, tx.Postings[0].IsUnclassified())
	assert.False(t, tx.Postings[1].IsUnclassified())

	tx.Postings[0].Account = "Expenses:Food"
	assert.False(t, tx.HasUnclassified())
}

func TestTransactionCommodity(t *testing.T) {
	tx := &Transaction{
		Postings: []*Posting{
			{Account: "Assets:Checking", Elided: true},
			{Account: "Expenses:Food", Amount: NewMoney(decimal.NewFromFloat(4.5), "CHF")},
		},
	}
	assert.Equal(t, "CHF", tx.Commodity())

	// No non-elided postings with a commodity falls back to the default.
	empty := &Transaction{Postings: []*Posting{{Account: "A", Elided: true}}}
	assert.Equal(t, DefaultCommodity, empty.Commodity())
}

func TestTransactionYear(t *testing.T) {
	tx := &Transaction{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 2024, tx.Year())
}
