// Package dashboard serves the checklist as a local web page with a JSON API,
// live score updates over websocket or SSE, and Prometheus metrics.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/chamai/internal/infrastructure/sse"
	"github.com/felixgeelhaar/chamai/pkg/application"
	"github.com/felixgeelhaar/chamai/pkg/domain"
	"github.com/felixgeelhaar/chamai/pkg/domain/report"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
	"github.com/felixgeelhaar/chamai/pkg/domain/scoring"
	"github.com/felixgeelhaar/chamai/pkg/export"
)

//go:embed templates/*
var templatesFS embed.FS

// Server is the dashboard HTTP server.
type Server struct {
	addr        string
	checklist   *application.ChecklistService
	exports     *application.ExportService
	logger      *zap.Logger
	hub         *Hub
	events      *sse.Handler
	metrics     *Metrics
	tmpl        *template.Template
	server      *http.Server
	unsubscribe func()
}

// NewServer creates a dashboard over checklist and subscribes to its store.
func NewServer(addr string, checklist *application.ChecklistService, exports *application.ExportService, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	funcMap := template.FuncMap{
		"number": report.FormatNumber,
		"json":   toJSON,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		addr:      addr,
		checklist: checklist,
		exports:   exports,
		logger:    logger,
		hub:       NewHub(logger.Named("ws")),
		events:    sse.NewHandler(checklist.Store()),
		metrics:   NewMetrics(),
		tmpl:      tmpl,
	}
	s.unsubscribe = checklist.Store().Subscribe(s.onChange)
	s.observe()
	return s, nil
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/summary", s.handleAPISummary)
	mux.HandleFunc("GET /api/checklist", s.handleAPIChecklist)
	mux.HandleFunc("POST /api/responses", s.handleAPIResponse)
	mux.HandleFunc("POST /api/role", s.handleAPIRole)
	mux.HandleFunc("POST /api/commit", s.handleAPICommit)
	mux.HandleFunc("POST /api/reset", s.handleAPIReset)
	mux.HandleFunc("GET /export.csv", s.handleExport(application.FormatCSV))
	mux.HandleFunc("GET /export.pdf", s.handleExport(application.FormatPDF))
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.Handle("GET /events", s.events)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return mux
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	s.logger.Info("Dashboard server starting", zap.String("addr", s.addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, ends live streams and unsubscribes from the store.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.events.Close()
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	return errors.Join(err, s.hub.Close(ctx))
}

// PageData holds data for template rendering.
type PageData struct {
	Title    string
	Role     response.Role
	Summary  scoring.Summary
	Sections []application.SectionView
	Error    string
}

// liveMessage is what /ws pushes after every change.
type liveMessage struct {
	Kind    application.ChangeKind `json:"kind"`
	Rebuild bool                   `json:"rebuild"`
	Role    response.Role          `json:"role"`
	Summary scoring.Summary        `json:"summary"`
}

func (s *Server) onChange(ev application.ChangeEvent) {
	s.metrics.Count(ev.Kind)
	summary, err := s.checklist.Summary()
	if err != nil {
		return
	}
	s.metrics.Observe(summary)

	msg, err := json.Marshal(liveMessage{
		Kind:    ev.Kind,
		Rebuild: ev.Rebuild,
		Role:    s.checklist.Store().Role(),
		Summary: summary,
	})
	if err != nil {
		s.logger.Warn("Failed to encode live update", zap.Error(err))
		return
	}
	s.hub.Broadcast(msg)
}

func (s *Server) observe() {
	if summary, err := s.checklist.Summary(); err == nil {
		s.metrics.Observe(summary)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := PageData{
		Title: s.checklist.Brand() + " Checklist",
		Role:  s.checklist.Store().Role(),
	}

	sections, err := s.checklist.Sections()
	if err != nil {
		data.Error = "Failed to load checklist JSON."
		w.WriteHeader(http.StatusServiceUnavailable)
		s.render(w, "index.html", data)
		return
	}
	data.Sections = sections
	data.Summary, _ = s.checklist.Summary()

	s.render(w, "index.html", data)
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.checklist.Summary()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAPIChecklist(w http.ResponseWriter, r *http.Request) {
	sections, err := s.checklist.Sections()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"role":     s.checklist.Store().Role(),
		"sections": sections,
	})
}

type responseRequest struct {
	Code   string `json:"code"`
	Choice string `json:"choice"`
	Role   string `json:"role,omitempty"`
}

func (s *Server) handleAPIResponse(w http.ResponseWriter, r *http.Request) {
	var req responseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	role := s.checklist.Store().Role()
	if req.Role != "" {
		role = response.NormalizeRole(req.Role)
	}
	if err := s.checklist.AnswerAs(req.Code, role, req.Choice); err != nil {
		s.writeError(w, err)
		return
	}
	s.handleAPISummary(w, r)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (s *Server) handleAPIRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	role := s.checklist.SetRole(req.Role)
	writeJSON(w, http.StatusOK, map[string]any{
		"role":    role,
		"choices": response.ChoicesFor(role),
	})
}

type commitRequest struct {
	Sections []string `json:"sections"`
}

func (s *Server) handleAPICommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	sections := req.Sections
	var err error
	if len(sections) == 0 {
		sections, err = s.checklist.CommitAll()
	} else {
		err = s.checklist.Commit(sections...)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	msg := fmt.Sprintf("Committed %d section(s).", len(sections))
	if len(req.Sections) == 0 {
		msg = "All sections marked as committed."
	}
	writeJSON(w, http.StatusOK, map[string]any{"committed": sections, "message": msg})
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeJSON(w, http.StatusPreconditionRequired, map[string]string{"error": "Reset all responses? Repeat with ?confirm=true."})
		return
	}
	s.checklist.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(format application.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := s.checklist.Store().Role()
		if q := r.URL.Query().Get("role"); q != "" {
			role = response.NormalizeRole(q)
		}

		// Render fully before writing headers so a failure can still become an error response.
		var buf bytes.Buffer
		if err := s.exports.WriteAs(&buf, format, role); err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
		_, _ = w.Write(buf.Bytes())
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	var initial []byte
	if summary, err := s.checklist.Summary(); err == nil {
		initial, _ = json.Marshal(liveMessage{
			Kind:    application.ChangeLoad,
			Rebuild: true,
			Role:    s.checklist.Store().Role(),
			Summary: summary,
		})
	}
	s.hub.ServeWS(w, r, initial)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownItem), errors.Is(err, domain.ErrUnknownSection):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidChoice):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoDefinition):
		status = http.StatusServiceUnavailable
	case errors.Is(err, export.ErrPDFUnavailable):
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeBody(w, r, v, false)
}

// decodeOptionalJSON accepts an empty body, sized or chunked, and leaves v zero.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeBody(w, r, v, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
