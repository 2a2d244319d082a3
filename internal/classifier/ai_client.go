package classifier

import "context"

// Suggestion is the AI provider's answer for one description.
type Suggestion struct {
	Account    string
	Confidence float64
}

// AIClient is the external classification capability: one synchronous
// request per description, which may fail or time out.
type AIClient interface {
	Classify(ctx context.Context, description string, categories []string) (Suggestion, error)
}
