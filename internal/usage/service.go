// Package usage tracks critic token usage per critique session.
package usage

import (
	"context"
	"sync"
	"time"

	"geoverify/domain/core"
	"geoverify/internal"
	"geoverify/ports"
)

const (
	maxRetries = 3
	baseDelay  = 100 * time.Millisecond
)

// Service handles critic usage tracking and persistence
type Service struct {
	repo   ports.LLMUsageRepository
	logger *internal.Logger
	wg     sync.WaitGroup
}

var _ ports.UsageRecorder = (*Service)(nil)

// NewService creates a new usage service
func NewService(repo ports.LLMUsageRepository, logger *internal.Logger) *Service {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &Service{repo: repo, logger: logger.With("usage")}
}

// RecordUsage records usage for the session ctx is attributed to. Calls made
// outside a session are ignored. Persistence happens in the background so
// critic calls never wait on storage; Wait blocks until it is done.
func (s *Service) RecordUsage(ctx context.Context, usage ports.UsageData) error {
	sessionID, ok := SessionFrom(ctx)
	if !ok {
		return nil
	}
	if usage.PromptTokens < 0 || usage.CompletionTokens < 0 || usage.TotalTokens < 0 {
		s.logger.Warn("ignoring invalid token counts for session %s: %+v", sessionID, usage)
		return nil
	}

	record := &ports.UsageRecord{
		ID:               core.NewID().String(),
		SessionID:        sessionID,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		CreatedAt:        time.Now().UTC(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.persistWithRetry(record); err != nil {
			s.logger.Error("failed to persist usage for session %s after retries: %v", sessionID, err)
		}
	}()
	return nil
}

// persistWithRetry attempts to persist usage with linear backoff
func (s *Service) persistWithRetry(record *ports.UsageRecord) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = s.repo.RecordUsage(context.Background(), record); err == nil {
			return nil
		}
		if attempt < maxRetries-1 {
			time.Sleep(time.Duration(attempt+1) * baseDelay)
		}
	}
	return err
}

// SessionUsage returns aggregated usage for a session
func (s *Service) SessionUsage(ctx context.Context, sessionID core.SessionID) (*ports.UsageSummary, error) {
	return s.repo.SessionUsage(ctx, sessionID)
}

// Wait blocks until every queued record has been persisted or abandoned
func (s *Service) Wait() {
	s.wg.Wait()
}
