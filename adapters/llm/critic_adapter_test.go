package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"geoverify/adapters/llm/heuristic"
	"geoverify/ports"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "user", req.Messages[1].Role)
		}

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) Config {
	return Config{
		Model:     "test-model",
		APIKey:    "test-key",
		BaseURL:   baseURL,
		MaxTokens: 256,
		Timeout:   5 * time.Second,
	}
}

func TestCriticAdapterCritique(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{
		"model": "test-model-2026",
		"choices": [{"message": {"content": "The mechanism is physically impossible."}}],
		"usage": {"prompt_tokens": 120, "completion_tokens": 8, "total_tokens": 128}
	}`)

	critic, err := NewCriticAdapter(testConfig(srv.URL+"/"), nil, nil)
	require.NoError(t, err)

	reply, err := critic.Critique(context.Background(), "ADVERSARIAL CRITIQUE - INITIAL REVIEW")
	require.NoError(t, err)
	assert.Equal(t, "The mechanism is physically impossible.", reply)

	usage := critic.Usage()
	require.Len(t, usage, 1)
	assert.Equal(t, ports.UsageData{PromptTokens: 120, CompletionTokens: 8, TotalTokens: 128, Model: "test-model-2026"}, usage[0])
	assert.Equal(t, 128, critic.TotalTokens())
}

func TestCriticAdapterHTTPError(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, `{"error": "rate limited"}`)

	critic, err := NewCriticAdapter(testConfig(srv.URL), nil, nil)
	require.NoError(t, err)

	_, err = critic.Critique(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "critic http 429")
	assert.Empty(t, critic.Usage())
}

func TestCriticAdapterMissingChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"choices": []}`)

	critic, err := NewCriticAdapter(testConfig(srv.URL), nil, nil)
	require.NoError(t, err)

	_, err = critic.Critique(context.Background(), "prompt")
	assert.ErrorContains(t, err, "missing choices")
}

func TestCriticAdapterFallback(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, `boom`)

	cfg := testConfig(srv.URL)
	cfg.FallbackToHeuristic = true
	critic, err := NewCriticAdapter(cfg, heuristic.NewCritic(), nil)
	require.NoError(t, err)

	reply, err := critic.Critique(context.Background(), "Plausibility risk: 0.9 (CRITICAL, x)")
	require.NoError(t, err)
	assert.Contains(t, reply, "physically impossible")
}

func TestNewCriticAdapterRequiresKey(t *testing.T) {
	_, err := NewCriticAdapter(Config{Model: "m"}, nil, nil)
	assert.Error(t, err)
}

type mockClient struct {
	mock.Mock
}

func (m *mockClient) ChatCompletion(ctx context.Context, model, system, prompt string, maxTokens int) (string, ports.UsageData, error) {
	args := m.Called(ctx, model, system, prompt, maxTokens)
	return args.String(0), args.Get(1).(ports.UsageData), args.Error(2)
}

func TestCriticAdapterRejectsEmptyReply(t *testing.T) {
	client := new(mockClient)
	client.On("ChatCompletion", mock.Anything, "m", criticSystemPrompt, "prompt", 100).
		Return("   ", ports.UsageData{}, nil)

	critic := newCriticAdapter(Config{Model: "m", MaxTokens: 100}, client, nil, nil)
	_, err := critic.Critique(context.Background(), "prompt")
	assert.ErrorContains(t, err, "empty reply")
	client.AssertExpectations(t)
}

type recordingUsage struct {
	mock.Mock
}

func (r *recordingUsage) RecordUsage(ctx context.Context, usage ports.UsageData) error {
	return r.Called(usage).Error(0)
}

func TestCriticAdapterForwardsUsage(t *testing.T) {
	client := new(mockClient)
	usage := ports.UsageData{PromptTokens: 10, CompletionTokens: 4, TotalTokens: 14, Model: "m"}
	client.On("ChatCompletion", mock.Anything, "m", criticSystemPrompt, "prompt", 100).
		Return("Fundamental flaws in the mechanism.", usage, nil)

	recorder := new(recordingUsage)
	recorder.On("RecordUsage", usage).Return(nil).Once()

	critic := newCriticAdapter(Config{Model: "m", MaxTokens: 100}, client, nil, nil)
	critic.SetUsageRecorder(recorder)
	_, err := critic.Critique(context.Background(), "prompt")
	require.NoError(t, err)
	recorder.AssertExpectations(t)
}
