package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswerPlainJSON(t *testing.T) {
	answer, err := parseAnswer(`{"category": "Expenses:Coffee", "confidence": 0.82}`)
	require.NoError(t, err)
	assert.Equal(t, "Expenses:Coffee", answer.Category)
	assert.Equal(t, 0.82, answer.Confidence)
}

func TestParseAnswerCodeFence(t *testing.T) {
	text := "Here is my answer:\n```json\n{\"category\": \"Expenses:Rent\", \"confidence\": 0.9}\n```\nHope that helps."
	answer, err := parseAnswer(text)
	require.NoError(t, err)
	assert.Equal(t, "Expenses:Rent", answer.Category)
}

func TestParseAnswerConfidenceClamped(t *testing.T) {
	answer, err := parseAnswer(`{"category": "A", "confidence": 1.7}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, answer.Confidence)

	answer, err = parseAnswer(`{"category": "A", "confidence": -0.2}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, answer.Confidence)
}

func TestParseAnswerErrors(t *testing.T) {
	_, err := parseAnswer("no json here")
	assert.Error(t, err)

	_, err = parseAnswer("{not valid json}")
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("Coffee Shop", []string{"Expenses:Coffee", "Expenses:Rent"})
	assert.Contains(t, prompt, "Coffee Shop")
	assert.Contains(t, prompt, "- Expenses:Coffee")
	assert.Contains(t, prompt, "- Expenses:Rent")
	assert.True(t, strings.Contains(prompt, "JSON"))
}
