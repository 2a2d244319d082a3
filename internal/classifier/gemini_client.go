package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/ledger-audit/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements AIClient against the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger logging.Logger
}

// NewGeminiClient creates a Gemini-backed AI client.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is empty")
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// geminiAnswer is the JSON shape the prompt asks the model to return.
type geminiAnswer struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Classify asks the model to pick one account from the candidate list for
// the given transaction description.
func (c *GeminiClient) Classify(ctx context.Context, description string, categories []string) (Suggestion, error) {
	model := c.client.GenerativeModel(c.model)

	prompt := buildPrompt(description, categories)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Suggestion{}, fmt.Errorf("gemini request failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return Suggestion{}, err
	}

	answer, err := parseAnswer(text)
	if err != nil {
		return Suggestion{}, err
	}

	c.logger.WithFields(
		logging.Field{Key: logging.FieldAccount, Value: answer.Category},
		logging.Field{Key: "confidence", Value: answer.Confidence},
	).Debug("Gemini classification response")

	return Suggestion{
		Account:    answer.Category,
		Confidence: answer.Confidence,
	}, nil
}

func buildPrompt(description string, categories []string) string {
	var b strings.Builder
	b.WriteString("You are a bookkeeping assistant. Assign the transaction below to exactly one account.\n\n")
	b.WriteString("Transaction description: ")
	b.WriteString(description)
	b.WriteString("\n\nAvailable accounts:\n")
	for _, category := range categories {
		b.WriteString("- ")
		b.WriteString(category)
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with JSON only, no prose: ")
	b.WriteString(`{"category": "<one of the accounts above>", "confidence": <0.0-1.0>}`)
	return b.String()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty gemini response")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text part in gemini response")
	}
	return b.String(), nil
}

// parseAnswer extracts the JSON object from the response text. The model
// sometimes wraps JSON in a markdown code fence, so it scans for braces.
func parseAnswer(text string) (geminiAnswer, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return geminiAnswer{}, fmt.Errorf("no JSON found in response: %s", text)
	}

	var answer geminiAnswer
	if err := json.Unmarshal([]byte(text[start:end+1]), &answer); err != nil {
		return geminiAnswer{}, fmt.Errorf("failed to parse gemini response: %w", err)
	}
	if answer.Confidence < 0 {
		answer.Confidence = 0
	}
	if answer.Confidence > 1 {
		answer.Confidence = 1
	}
	return answer, nil
}
