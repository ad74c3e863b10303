package sqlstore

import (
	"context"

	"geoverify/domain/core"
	"geoverify/internal/errors"
	"geoverify/ports"

	"github.com/jmoiron/sqlx"
)

// LLMUsageRepository implements ports.LLMUsageRepository
type LLMUsageRepository struct {
	db *sqlx.DB
}

// NewLLMUsageRepository creates a usage repository on db
func NewLLMUsageRepository(db *sqlx.DB) *LLMUsageRepository {
	return &LLMUsageRepository{db: db}
}

var _ ports.LLMUsageRepository = (*LLMUsageRepository)(nil)

// RecordUsage inserts one usage record
func (r *LLMUsageRepository) RecordUsage(ctx context.Context, usage *ports.UsageRecord) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO llm_usage (
			id, session_id, model, prompt_tokens, completion_tokens, total_tokens, created_at
		) VALUES (
			:id, :session_id, :model, :prompt_tokens, :completion_tokens, :total_tokens, :created_at
		)
	`, usage)
	if err != nil {
		return errors.DatabaseError("failed to record llm usage", err)
	}
	return nil
}

// SessionUsage aggregates usage per model for one session
func (r *LLMUsageRepository) SessionUsage(ctx context.Context, sessionID core.SessionID) (*ports.UsageSummary, error) {
	var rows []struct {
		Model            string `db:"model"`
		RequestCount     int    `db:"request_count"`
		PromptTokens     int    `db:"prompt_tokens"`
		CompletionTokens int    `db:"completion_tokens"`
		TotalTokens      int    `db:"total_tokens"`
	}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT
			model,
			COUNT(*) AS request_count,
			COALESCE(SUM(prompt_tokens), 0) AS prompt_tokens,
			COALESCE(SUM(completion_tokens), 0) AS completion_tokens,
			COALESCE(SUM(total_tokens), 0) AS total_tokens
		FROM llm_usage
		WHERE session_id = ?
		GROUP BY model
	`), sessionID.String())
	if err != nil {
		return nil, errors.DatabaseError("failed to summarize llm usage", err)
	}

	summary := &ports.UsageSummary{SessionID: sessionID, ByModel: make(map[string]int, len(rows))}
	for _, row := range rows {
		summary.RequestCount += row.RequestCount
		summary.PromptTokens += row.PromptTokens
		summary.CompletionTokens += row.CompletionTokens
		summary.TotalTokens += row.TotalTokens
		summary.ByModel[row.Model] = row.TotalTokens
	}
	return summary, nil
}
