package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoverify/domain/claim"
	"geoverify/internal/compliance"
	"geoverify/internal/critique"
	"geoverify/internal/domainparams"
)

func newTestApp(t *testing.T) (*App, *critique.Service, *compliance.Engine) {
	t.Helper()
	params, err := domainparams.NewValidator(nil)
	require.NoError(t, err)

	critiques := critique.NewService(critique.NewMemoryStore(), 0, nil)
	engine := compliance.NewEngine(params, nil, 0)
	app, err := NewApp(critiques, engine, nil)
	require.NoError(t, err)
	return app, critiques, engine
}

func get(t *testing.T, app http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSessionReport(t *testing.T) {
	app, critiques, _ := newTestApp(t)
	ctx := context.Background()

	id, err := critiques.StartSession(ctx, claim.ParsedPaper{Title: "Ocean <script>alert(1)</script> fertilization"}, "ocean", nil)
	require.NoError(t, err)
	_, err = critiques.ProcessResponse(ctx, id, 1, "The nutrient budget is questionable and the sampling is limited.")
	require.NoError(t, err)

	w := get(t, app, "/reports/sessions/"+id.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "<h1")
	assert.Contains(t, body, "Iteration 1: initial review")
	assert.Contains(t, body, "Iteration 2:")
	assert.Contains(t, body, "<blockquote>")
	assert.NotContains(t, body, "<script>")

	w = get(t, app, "/reports/sessions/"+id.String()+"?format=md")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Critique: Ocean")
	assert.Contains(t, w.Body.String(), "_Awaiting response._")
}

func TestSessionReportNotFound(t *testing.T) {
	app, _, _ := newTestApp(t)

	assert.Equal(t, http.StatusNotFound, get(t, app, "/reports/sessions/nope").Code)
	assert.Equal(t, http.StatusNotFound, get(t, app, "/reports/sessions/0190b6a4-7c1e-7000-8000-000000000000").Code)
}

func TestSessionList(t *testing.T) {
	app, critiques, _ := newTestApp(t)

	w := get(t, app, "/reports/sessions")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No sessions yet")

	id, err := critiques.StartSession(context.Background(), claim.ParsedPaper{Title: "Cirrus thinning | revisited"}, "climate", nil)
	require.NoError(t, err)

	w = get(t, app, "/reports/sessions?format=md")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "[Cirrus thinning \\| revisited](/reports/sessions/"+id.String()+")")

	w = get(t, app, "/")
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestComplianceReport(t *testing.T) {
	app, _, engine := newTestApp(t)

	_, err := engine.Validate(claim.Claim{Text: "x", Domain: "climate"}, &claim.EvidenceBundle{
		SNRAnalysis: &claim.SNRAnalysis{Method: "hansen", SNRDb: 12, Detectable: true},
		RealDataVerification: &claim.RealDataVerification{
			AuthenticDataConfirmed: true,
			SyntheticDataDetected:  true,
		},
	})
	require.NoError(t, err)

	w := get(t, app, "/reports/compliance?format=md")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "1 validations: 0 passed, 1 rejected")
	assert.Contains(t, body, "| SYNTHETIC_DATA_DETECTED | 1 |")
}

func TestRenderMarkdownDropsRawHTML(t *testing.T) {
	out := string(renderMarkdown([]byte("# Title\n\n<iframe src=\"x\"></iframe>\n\n[link](https://example.org)\n")))
	assert.Contains(t, out, "<h1")
	assert.NotContains(t, out, "<iframe")
	assert.Contains(t, out, `target="_blank"`)
}
