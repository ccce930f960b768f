package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/spacesedan/ballotboard/internal/charts"
	"github.com/spacesedan/ballotboard/internal/clients"
	"github.com/spacesedan/ballotboard/internal/dashboard"
	"github.com/spacesedan/ballotboard/internal/processing"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"title":   titleCase,
	}
	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type indexPage struct {
	Sources  []clients.Source
	Selected string
	View     dashboard.SummaryView
	Analyzer dashboard.AnalyzerState
	Error    string
}

type comparePage struct {
	View dashboard.ComparisonView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	source := r.URL.Query().Get("source")
	if source == "" {
		source = sess.Dashboard.Selection()
	}
	if source == "" {
		source = s.sessions.DefaultSource()
	}

	page := indexPage{Sources: s.opts.Routes.Sources(), Selected: source}

	// refresh re-fetches whatever the selector shows, even on a session
	// that has never selected anything
	var done <-chan struct{}
	var err error
	if r.URL.Query().Get("refresh") != "" {
		done, err = sess.Dashboard.Select(source)
	} else {
		done, err = sess.Dashboard.Ensure(source)
	}
	status := http.StatusOK
	if err != nil {
		var configErr *clients.ConfigurationError
		if !errors.As(err, &configErr) {
			writeError(w, err)
			return
		}
		status = http.StatusBadRequest
		page.Error = configErr.Error()

		page.Selected = sess.Dashboard.Selection()
		if page.Selected == "" {
			page.Selected = s.sessions.DefaultSource()
		}
		done, _ = sess.Dashboard.Ensure(page.Selected)
	}
	s.await(r.Context(), done)

	page.View = sess.Dashboard.View()
	page.Analyzer = sess.Analyzer.State()
	s.render(w, status, "index.html", page)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	done, err := sess.Comparison.Ensure()
	if err != nil {
		writeError(w, err)
		return
	}
	s.await(r.Context(), done)

	s.render(w, http.StatusOK, "compare.html", comparePage{View: sess.Comparison.View()})
}

// handleAnalyzeForm is the no-script path of the analyzer form.
func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, fmt.Sprintf("Invalid form: %v", err), http.StatusBadRequest)
		return
	}

	if _, err := sess.Analyzer.Submit(r.Context(), r.PostForm.Get("text")); err != nil &&
		!errors.Is(err, dashboard.ErrBusy) {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, "/#analyzer", http.StatusSeeOther)
}

func (s *Server) handleSummaryChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.existingSession(r)
	if !ok {
		http.Error(w, "no session", http.StatusNotFound)
		return
	}

	view := sess.Dashboard.View()
	if view.State != dashboard.StateReady || view.Model == nil {
		http.Error(w, "summary not ready", http.StatusNotFound)
		return
	}
	s.writeChart(w, chi.URLParam(r, "kind"), view.Model.ChartSeries, charts.FullSize)
}

func (s *Server) handleCompareChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.existingSession(r)
	if !ok {
		http.Error(w, "no session", http.StatusNotFound)
		return
	}

	view := sess.Comparison.View()
	if view.State != dashboard.StateReady {
		http.Error(w, "comparison not ready", http.StatusNotFound)
		return
	}

	var card *dashboard.CardView
	switch chi.URLParam(r, "side") {
	case "left":
		card = view.Left
	case "right":
		card = view.Right
	default:
		http.Error(w, "unknown side", http.StatusNotFound)
		return
	}
	s.writeChart(w, chi.URLParam(r, "kind"), card.Model.ChartSeries, charts.CompactSize)
}

func (s *Server) writeChart(w http.ResponseWriter, rawKind string, series []processing.ChartPoint, size charts.Size) {
	kind, err := charts.ParseKind(rawKind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := charts.Render(&buf, kind, series, size); err != nil {
		if errors.Is(err, charts.ErrNoChartData) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		slog.Error("[Server] Failed to render chart",
			slog.String("kind", rawKind),
			slog.String("error", err.Error()))
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("[Server] Failed to render page",
			slog.String("page", name),
			slog.String("error", err.Error()))
		http.Error(w, clients.GENERIC_FAILURE_MESSAGE, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
