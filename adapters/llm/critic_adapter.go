// Package llm adapts an OpenAI-compatible chat API into an adversarial critic.
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"geoverify/internal"
	"geoverify/ports"
)

// Config holds critic client settings
type Config struct {
	Model               string        // e.g. "gpt-4o-mini"
	APIKey              string        // bearer token
	BaseURL             string        // default https://api.openai.com/v1
	Temperature         float64       // lower = more deterministic
	MaxTokens           int           // max tokens in response
	Timeout             time.Duration // per-request timeout
	FallbackToHeuristic bool          // answer with the heuristic critic when the API fails
}

const criticSystemPrompt = `You are an adversarial scientific reviewer for geoengineering research.
Assume nothing. Challenge every claim against physical law, observational evidence and
detectability. Name fundamental flaws and physically impossible mechanisms explicitly.`

// CriticAdapter implements ports.Critic with an LLM and accumulates token usage
type CriticAdapter struct {
	config   Config
	client   LLMClient
	fallback ports.Critic
	recorder ports.UsageRecorder
	logger   *internal.Logger

	mu    sync.Mutex
	usage []ports.UsageData
}

var _ ports.Critic = (*CriticAdapter)(nil)

// NewCriticAdapter creates an LLM critic. fallback may be nil.
func NewCriticAdapter(config Config, fallback ports.Critic, logger *internal.Logger) (*CriticAdapter, error) {
	client, err := newLLMClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return newCriticAdapter(config, client, fallback, logger), nil
}

func newCriticAdapter(config Config, client LLMClient, fallback ports.Critic, logger *internal.Logger) *CriticAdapter {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &CriticAdapter{
		config:   config,
		client:   client,
		fallback: fallback,
		logger:   logger.With("critic"),
	}
}

// SetUsageRecorder forwards the usage of every successful call to recorder
func (a *CriticAdapter) SetUsageRecorder(recorder ports.UsageRecorder) {
	a.recorder = recorder
}

// Critique sends prompt to the model and returns its free-text reply
func (a *CriticAdapter) Critique(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	reply, usage, err := a.client.ChatCompletion(ctx, a.config.Model, criticSystemPrompt, prompt, a.config.MaxTokens)
	if err != nil {
		if a.config.FallbackToHeuristic && a.fallback != nil && ctx.Err() == nil {
			a.logger.Warn("critic call failed, using heuristic critic: %v", err)
			return a.fallback.Critique(ctx, prompt)
		}
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("critic returned an empty reply")
	}

	a.mu.Lock()
	a.usage = append(a.usage, usage)
	a.mu.Unlock()
	if a.recorder != nil {
		if err := a.recorder.RecordUsage(ctx, usage); err != nil {
			a.logger.Warn("failed to record critic usage: %v", err)
		}
	}

	a.logger.Debug("critic reply in %v (%d tokens)", time.Since(start), usage.TotalTokens)
	return reply, nil
}

// Usage returns the token usage of every successful call so far
func (a *CriticAdapter) Usage() []ports.UsageData {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ports.UsageData, len(a.usage))
	copy(out, a.usage)
	return out
}

// TotalTokens sums token usage across calls
func (a *CriticAdapter) TotalTokens() int {
	total := 0
	for _, u := range a.Usage() {
		total += u.TotalTokens
	}
	return total
}
