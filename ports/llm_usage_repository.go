package ports

import (
	"context"
	"time"

	"geoverify/domain/core"
)

// UsageRecord is one critic call attributed to a critique session
type UsageRecord struct {
	ID               string         `db:"id" json:"id"`
	SessionID        core.SessionID `db:"session_id" json:"session_id"`
	Model            string         `db:"model" json:"model"`
	PromptTokens     int            `db:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int            `db:"completion_tokens" json:"completion_tokens"`
	TotalTokens      int            `db:"total_tokens" json:"total_tokens"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// UsageSummary aggregates the critic calls of one session
type UsageSummary struct {
	SessionID        core.SessionID `json:"session_id"`
	RequestCount     int            `json:"request_count"`
	PromptTokens     int            `json:"prompt_tokens"`
	CompletionTokens int            `json:"completion_tokens"`
	TotalTokens      int            `json:"total_tokens"`
	ByModel          map[string]int `json:"tokens_by_model"`
}

// LLMUsageRepository stores critic token usage
type LLMUsageRepository interface {
	// RecordUsage stores one call
	RecordUsage(ctx context.Context, usage *UsageRecord) error

	// SessionUsage aggregates every call recorded for a session. A session
	// with no calls yields an empty summary, not an error.
	SessionUsage(ctx context.Context, sessionID core.SessionID) (*UsageSummary, error)
}

// UsageRecorder receives provider usage as critic calls complete
type UsageRecorder interface {
	RecordUsage(ctx context.Context, usage UsageData) error
}
