// Package ui serves human-readable HTML reports of critique sessions and
// compliance history.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"geoverify/domain/core"
	"geoverify/internal"
	"geoverify/internal/compliance"
	"geoverify/internal/critique"
	"geoverify/internal/errors"
)

//go:embed templates/*.html
var templateFiles embed.FS

const defaultListLimit = 50

// App is the report site
type App struct {
	router     *chi.Mux
	critiques  *critique.Service
	compliance *compliance.Engine
	templates  *template.Template
	logger     *internal.Logger
}

// NewApp creates the report site. compliance may be nil, which disables the
// compliance page.
func NewApp(critiques *critique.Service, engine *compliance.Engine, logger *internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.NopLogger()
	}

	templates, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:     chi.NewRouter(),
		critiques:  critiques,
		compliance: engine,
		templates:  templates,
		logger:     logger.With("ui"),
	}

	app.setupMiddleware()
	app.setupRoutes()
	return app, nil
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
	a.router.Use(a.requestLogger)
}

func (a *App) setupRoutes() {
	a.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/reports/sessions", http.StatusFound)
	})
	a.router.Route("/reports", func(r chi.Router) {
		r.Get("/sessions", a.handleSessions)
		r.Get("/sessions/{id}", a.handleSession)
		r.Get("/compliance", a.handleCompliance)
	})
}

func (a *App) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	sessions, err := a.critiques.ListSessions(r.Context(), limit)
	if err != nil {
		a.renderError(w, err)
		return
	}
	a.renderReport(w, r, "Critique sessions", SessionListMarkdown(sessions))
}

func (a *App) handleSession(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := core.ParseSessionID(raw)
	if err != nil {
		a.renderError(w, errors.SessionNotFound(raw))
		return
	}

	session, err := a.critiques.GetSession(r.Context(), id)
	if err != nil {
		a.renderError(w, err)
		return
	}
	a.renderReport(w, r, "Critique: "+session.PaperTitle, SessionMarkdown(session))
}

func (a *App) handleCompliance(w http.ResponseWriter, r *http.Request) {
	if a.compliance == nil {
		http.NotFound(w, r)
		return
	}
	a.renderReport(w, r, "Compliance statistics", ComplianceMarkdown(a.compliance.Statistics()))
}

type page struct {
	Title string
	Body  template.HTML
}

// renderReport writes md as HTML, or as markdown source when ?format=md
func (a *App) renderReport(w http.ResponseWriter, r *http.Request, title string, md []byte) {
	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write(md)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	body := template.HTML(renderMarkdown(md))
	if err := a.templates.ExecuteTemplate(w, "layout", page{Title: title, Body: body}); err != nil {
		a.logger.Error("template error: %v", err)
	}
}

func (a *App) renderError(w http.ResponseWriter, err error) {
	switch errors.GetCode(err) {
	case errors.CodeSessionNotFound:
		http.Error(w, "session not found", http.StatusNotFound)
	default:
		a.logger.Error("report failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debug("%s %s -> %d (%s) [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start),
			middleware.GetReqID(r.Context()))
	})
}
