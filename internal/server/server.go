// internal/server/server.go
// Package server exposes the dashboard HTTP API over the parsed test
// logs, behind a consent gate.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jsandlin/vigil/internal/appconfig"
	"github.com/jsandlin/vigil/internal/classify"
	"github.com/jsandlin/vigil/internal/eventlog"
	"github.com/jsandlin/vigil/internal/logging"
	"github.com/jsandlin/vigil/internal/perf"
)

type errResp struct {
	Error string `json:"error"`
}

// FailureEntry annotates one failed inference in an API response.
type FailureEntry struct {
	TestNumber int                  `json:"test_number,omitempty"`
	TestID     string               `json:"test_id,omitempty"`
	TestName   string               `json:"test_name"`
	Category   string               `json:"category,omitempty"`
	TestType   string               `json:"test_type,omitempty"`
	Kind       classify.FailureKind `json:"kind"`
	Reason     string               `json:"reason"`
}

// ResultsResponse is the payload of GET /api/results.
type ResultsResponse struct {
	Run         *eventlog.TestRunData `json:"run"`
	Strict      bool                  `json:"strict"`
	Failures    []FailureEntry        `json:"failures"`
	Performance perf.Metrics          `json:"performance"`
}

// Server serves the dashboard API.
type Server struct {
	cfg   *appconfig.Config
	cache *Cache
	auth  Authorizer
	mux   *http.ServeMux

	loadLatest func() (*eventlog.TestRunData, error)
}

// New wires the API routes behind the consent gate. A nil auth blocks
// everything outside the gate's allow-list.
func New(cfg *appconfig.Config, auth Authorizer) *Server {
	s := &Server{
		cfg:   cfg,
		cache: NewCache(cfg.CacheTTL()),
		auth:  auth,
	}
	s.loadLatest = func() (*eventlog.TestRunData, error) {
		return eventlog.LoadLatest(cfg.LogsDirPath(), eventlog.ParseOptions{ValidateSchema: cfg.ValidateRecords})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/results", s.handleResults)
	mux.HandleFunc("GET /api/logs", s.handleLogList)
	mux.HandleFunc("GET /api/logs/{name}", s.handleLogByName)
	mux.HandleFunc("GET /consent", s.handleConsentForm)
	mux.HandleFunc("POST /consent", s.handleConsentSubmit)
	mux.HandleFunc("GET /privacy", staticPage("Privacy", privacyBody))
	mux.HandleFunc("GET /terms", staticPage("Terms", termsBody))
	s.mux = mux
	return s
}

// Handler returns the full handler chain: consent gate in front of the
// API routes.
func (s *Server) Handler() http.Handler {
	return Gate(s.auth, s.mux)
}

// ListenAndServe runs the server until ctx is canceled. A logs-directory
// watcher invalidates the results cache on any change.
func (s *Server) ListenAndServe(ctx context.Context) error {
	go func() {
		if err := WatchLogs(ctx, s.cfg.LogsDirPath(), func() {
			s.cache.Invalidate(ResultsTag)
		}); err != nil && !errors.Is(err, context.Canceled) {
			logging.LogEvent("[SERVE] log watcher stopped: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.LogEvent("[SERVE] dashboard listening on %s (logs dir %s)", s.cfg.Addr(), s.cfg.LogsDirPath())
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// mergedRun returns the cached merged run, recomputing it on miss.
func (s *Server) mergedRun() (*eventlog.TestRunData, error) {
	if cached, ok := s.cache.Get(ResultsTag); ok {
		if run, ok := cached.(*eventlog.TestRunData); ok {
			return run, nil
		}
	}
	run, err := s.loadLatest()
	if err != nil {
		return nil, err
	}
	s.cache.Set(ResultsTag, run)
	return run, nil
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	strict := s.cfg.StrictValidation
	if v := r.URL.Query().Get("strict"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			strict = parsed
		}
	}

	run, err := s.mergedRun()
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}

	resp := ResultsResponse{
		Run:         run,
		Strict:      strict,
		Failures:    CollectFailures(run.Inferences, strict),
		Performance: perf.Aggregate(run.Inferences),
	}
	logging.LogHTTP(r.Method, r.URL.Path, http.StatusOK, r.RemoteAddr)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogList(w http.ResponseWriter, r *http.Request) {
	files, err := eventlog.ListLogFiles(s.cfg.LogsDirPath())
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}
	logging.LogHTTP(r.Method, r.URL.Path, http.StatusOK, r.RemoteAddr)
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleLogByName(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	info, err := eventlog.FindLogFile(s.cfg.LogsDirPath(), name)
	if err != nil {
		logging.LogHTTP(r.Method, r.URL.Path, http.StatusNotFound, r.RemoteAddr)
		writeJSON(w, http.StatusNotFound, errResp{Error: "log file not found: " + name})
		return
	}

	run, err := eventlog.ParseFileWith(info.Path, eventlog.ParseOptions{ValidateSchema: s.cfg.ValidateRecords})
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}
	logging.LogHTTP(r.Method, r.URL.Path, http.StatusOK, r.RemoteAddr)
	writeJSON(w, http.StatusOK, run)
}

// writeLoadError maps the ingestion error taxonomy onto HTTP: no data is
// a 404 the UI renders as an empty state, anything else is a 500 error
// banner.
func (s *Server) writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, eventlog.ErrNoData) {
		status = http.StatusNotFound
	}
	logging.LogHTTP(r.Method, r.URL.Path, status, r.RemoteAddr)
	logging.LogEvent("[SERVE] %s %s failed: %v", r.Method, r.URL.Path, err)
	writeJSON(w, status, errResp{Error: err.Error()})
}

// CollectFailures classifies every inference and returns entries for the
// failures, preserving input order.
func CollectFailures(events []eventlog.InferenceEvent, strict bool) []FailureEntry {
	failures := make([]FailureEntry, 0)
	for i := range events {
		ev := &events[i]
		analysis := classify.Classify(ev, strict)
		if analysis == nil {
			continue
		}
		failures = append(failures, FailureEntry{
			TestNumber: ev.TestNumber,
			TestID:     ev.TestID,
			TestName:   ev.TestName,
			Category:   eventlog.NormalizeTestType(ev.Category),
			TestType:   eventlog.NormalizeTestType(ev.TestType),
			Kind:       analysis.Kind,
			Reason:     analysis.Reason,
		})
	}
	return failures
}

func (s *Server) handleConsentSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "invalid form submission"})
		return
	}

	agreed := r.PostFormValue("agree") == "on" || r.PostFormValue("agree") == "true"
	if !agreed {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "consent checkbox is required"})
		return
	}

	rec := ConsentRecord{
		Timestamp: time.Now(),
		Name:      strings.TrimSpace(r.PostFormValue("name")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Agreed:    true,
		UserAgent: r.UserAgent(),
	}
	recordConsent(s.cfg.ConsentCSVPath(), rec)

	if granter, ok := s.auth.(*CookieAuthorizer); ok && granter != nil {
		if err := granter.Grant(w, rec.Name); err != nil {
			writeJSON(w, http.StatusInternalServerError, errResp{Error: "unable to establish session"})
			return
		}
	}
	http.Redirect(w, r, "/api/results", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
