package usage

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"geoverify/domain/core"
	"geoverify/ports"
)

func TestRecordUsageAttributesSession(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, nil)
	id := core.NewSessionID()
	ctx := WithSession(context.Background(), id)

	require.NoError(t, svc.RecordUsage(ctx, ports.UsageData{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120, Model: "m1"}))
	require.NoError(t, svc.RecordUsage(ctx, ports.UsageData{PromptTokens: 50, CompletionTokens: 10, TotalTokens: 60, Model: "m2"}))
	require.NoError(t, svc.RecordUsage(context.Background(), ports.UsageData{TotalTokens: 999, Model: "m1"}))
	require.NoError(t, svc.RecordUsage(ctx, ports.UsageData{TotalTokens: -1}))
	svc.Wait()

	summary, err := svc.SessionUsage(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RequestCount)
	assert.Equal(t, 150, summary.PromptTokens)
	assert.Equal(t, 30, summary.CompletionTokens)
	assert.Equal(t, 180, summary.TotalTokens)
	assert.Equal(t, map[string]int{"m1": 120, "m2": 60}, summary.ByModel)

	empty, err := svc.SessionUsage(context.Background(), core.NewSessionID())
	require.NoError(t, err)
	assert.Zero(t, empty.RequestCount)
}

func TestSessionFrom(t *testing.T) {
	_, ok := SessionFrom(context.Background())
	assert.False(t, ok)
	_, ok = SessionFrom(WithSession(context.Background(), ""))
	assert.False(t, ok)

	id := core.NewSessionID()
	got, ok := SessionFrom(WithSession(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

type flakyRepository struct {
	mock.Mock
}

func (f *flakyRepository) RecordUsage(ctx context.Context, usage *ports.UsageRecord) error {
	return f.Called(usage.SessionID).Error(0)
}

func (f *flakyRepository) SessionUsage(ctx context.Context, id core.SessionID) (*ports.UsageSummary, error) {
	return nil, nil
}

func TestRecordUsageRetries(t *testing.T) {
	id := core.NewSessionID()
	repo := new(flakyRepository)
	repo.On("RecordUsage", id).Return(stderrors.New("connection reset")).Once()
	repo.On("RecordUsage", id).Return(nil).Once()

	svc := NewService(repo, nil)
	require.NoError(t, svc.RecordUsage(WithSession(context.Background(), id), ports.UsageData{TotalTokens: 5}))
	svc.Wait()

	repo.AssertNumberOfCalls(t, "RecordUsage", 2)
}
