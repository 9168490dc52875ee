// Package web serves rendered calendars, their events and ICS exports
// over HTTP.
package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"calgen/internal/config"
	"calgen/internal/ics"
	appLog "calgen/internal/log"
	"calgen/internal/metric"
	"calgen/internal/model"
	"calgen/internal/recurrence"
	"calgen/internal/render"
)

const shutdownTimeout = 5 * time.Second

// Server renders the calendar held by a Store. Query parameters override
// the config defaults per request.
type Server struct {
	cfg     *config.Config
	store   *Store
	metrics *metric.Metrics
	mux     *http.ServeMux
	now     func() time.Time
}

// NewServer constructs a Server. m may be nil to disable /metrics.
func NewServer(cfg *config.Config, store *Store, m *metric.Metrics) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		metrics: m,
		mux:     http.NewServeMux(),
		now:     time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, wrapped in basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled")
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware guards every route except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calgen", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleCalendar)
	s.mux.HandleFunc("GET /calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// request reads year, output, group and on_error from the query string.
func (s *Server) request(r *http.Request, groups []model.EventGroup) (render.Request, error) {
	q := r.URL.Query()

	year := s.cfg.EffectiveYear(s.now())
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return render.Request{}, fmt.Errorf("invalid year %q", v)
		}
		year = n
	}

	outName := s.cfg.Output
	if v := q.Get("output"); v != "" {
		outName = v
	}
	output, err := model.ParseOutput(outName)
	if err != nil {
		return render.Request{}, err
	}

	titles := s.cfg.Groups
	if vs := q["group"]; len(vs) > 0 {
		titles = vs
	}
	sel, err := model.SelectTitles(groups, titles)
	if err != nil {
		return render.Request{}, err
	}

	policyName := s.cfg.OnError
	if v := q.Get("on_error"); v != "" {
		policyName = v
	}
	policy, err := recurrence.ParsePolicy(policyName)
	if err != nil {
		return render.Request{}, err
	}

	return render.Request{Year: year, Output: output, Selection: sel, Policy: policy}, nil
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	groups := s.store.Groups()
	req, err := s.request(r, groups)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	page, res, err := render.Generate(groups, req)
	skipped := 0
	if res != nil {
		skipped = len(res.Skipped)
	}

	var buf bytes.Buffer
	if err == nil {
		err = render.Render(&buf, page)
	}
	s.metrics.ObserveRender(string(req.Output), time.Since(start), skipped, err)
	if err != nil {
		appLog.Error("calendar render failed", err, "year", req.Year, "output", req.Output)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		appLog.Error("failed to write calendar", err)
		return
	}
	appLog.Debug("calendar served", "year", req.Year, "output", req.Output, "duration", time.Since(start))
}

type eventDTO struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Title   string `json:"title"`
	Group   string `json:"group"`
}

type skippedDTO struct {
	Group string `json:"group"`
	Event string `json:"event"`
	Rule  string `json:"rule"`
	Error string `json:"error"`
}

type eventsResponse struct {
	Year    int          `json:"year"`
	Groups  []string     `json:"groups"`
	Events  []eventDTO   `json:"events"`
	Skipped []skippedDTO `json:"skipped,omitempty"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	groups := s.store.Groups()
	req, err := s.request(r, groups)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := recurrence.Collect(groups, req.Selection, req.Year, req.Policy)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	titles := make(map[model.GroupID]string, len(groups))
	for _, g := range groups {
		titles[g.ID] = g.Title
	}

	resp := eventsResponse{
		Year:   res.Year,
		Groups: req.Selection.Titles(groups),
		Events: make([]eventDTO, 0, len(res.Events)),
	}
	for _, ev := range res.Events {
		resp.Events = append(resp.Events, eventDTO{
			Date:    ev.Date.Format(time.DateOnly),
			Weekday: ev.Date.Weekday().String(),
			Title:   ev.Title,
			Group:   titles[ev.Group],
		})
	}
	for _, f := range res.Skipped {
		resp.Skipped = append(resp.Skipped, skippedDTO{Group: f.Group, Event: f.Event, Rule: f.Rule, Error: f.Err.Error()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	groups := s.store.Groups()
	req, err := s.request(r, groups)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := recurrence.Collect(groups, req.Selection, req.Year, req.Policy)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var buf bytes.Buffer
	opts := ics.ExportOptions{Name: fmt.Sprintf("Calendar %d", req.Year)}
	if err := ics.Export(&buf, groups, res, opts); err != nil {
		appLog.Error("ics export failed", err, "year", req.Year)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="calendar-%d.ics"`, req.Year))
	_, _ = buf.WriteTo(w)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return serve(ctx, ln, s.Handler(), nil)
}

// ServeOnce serves an already rendered page at / and /calendar until it has
// been delivered once or ctx is cancelled. ready is called with the page
// URL once the server accepts connections.
func ServeOnce(ctx context.Context, ln net.Listener, page []byte, ready func(url string) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var start func() error
	if ready != nil {
		start = func() error { return ready(URL(ln)) }
	}
	return serve(ctx, ln, pageHandler(page, cancel), start)
}

// pageHandler writes page and then calls delivered.
func pageHandler(page []byte, delivered func()) http.Handler {
	h := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(page); err != nil {
			appLog.Error("failed to write calendar", err)
			return
		}
		appLog.Debug("calendar delivered", "bytes", len(page))
		delivered()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h)
	mux.HandleFunc("GET /calendar", h)
	return mux
}

func serve(ctx context.Context, ln net.Listener, h http.Handler, ready func() error) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	appLog.Info("HTTP server listening", "url", URL(ln))

	if ready != nil {
		if err := ready(); err != nil {
			_ = srv.Close()
			return err
		}
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	appLog.Info("HTTP server stopped")
	return nil
}

// URL returns the calendar page URL served on ln.
func URL(ln net.Listener) string {
	return "http://" + ln.Addr().String() + "/calendar"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
