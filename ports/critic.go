package ports

import "context"

// UsageData represents token usage reported by a critic provider
type UsageData struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
}

// Critic is an external adversarial reviewer. It receives a structured
// critique prompt and returns free text; no schema is imposed on the reply.
type Critic interface {
	Critique(ctx context.Context, prompt string) (string, error)
}
