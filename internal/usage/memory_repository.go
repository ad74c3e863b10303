package usage

import (
	"context"
	"sync"

	"geoverify/domain/core"
	"geoverify/ports"
)

// MemoryRepository keeps usage records in process memory
type MemoryRepository struct {
	mu      sync.RWMutex
	records []ports.UsageRecord
}

var _ ports.LLMUsageRepository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// RecordUsage stores a copy of usage
func (m *MemoryRepository) RecordUsage(ctx context.Context, usage *ports.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *usage)
	return nil
}

// SessionUsage aggregates the records of one session
func (m *MemoryRepository) SessionUsage(ctx context.Context, sessionID core.SessionID) (*ports.UsageSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := &ports.UsageSummary{SessionID: sessionID, ByModel: map[string]int{}}
	for _, r := range m.records {
		if r.SessionID != sessionID {
			continue
		}
		summary.RequestCount++
		summary.PromptTokens += r.PromptTokens
		summary.CompletionTokens += r.CompletionTokens
		summary.TotalTokens += r.TotalTokens
		summary.ByModel[r.Model] += r.TotalTokens
	}
	return summary, nil
}
