package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"shiftcal/internal/config"
	"shiftcal/internal/convert"
	"shiftcal/internal/ics"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/model"
	"shiftcal/internal/overlap"
	"shiftcal/internal/parser"
)

// maxRosterBytes bounds a posted roster.
const maxRosterBytes = 1 << 20

// Server converts posted roster text over HTTP. Every request parses its
// own body, so nothing is shared between requests.
type Server struct {
	cfg    *config.Config
	loc    *time.Location
	parser *parser.Parser
	router chi.Router
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, p *parser.Parser) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		cfg:    cfg,
		loc:    cfg.Location(),
		parser: p,
		router: chi.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// StartServer serves on cfg.Listen until ctx is canceled, then shuts down
// gracefully.
func StartServer(ctx context.Context, cfg *config.Config) error {
	s := NewServer(cfg, nil)
	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	appLog.Info("shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) registerRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(requestLogger)
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/api/shifts", s.handleShifts)
	s.router.Post("/api/calendar", s.handleCalendar)
}

// requestLogger writes one log line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		appLog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// shiftDTO is a JSON-friendly view of a parsed shift.
type shiftDTO struct {
	Date          string    `json:"date"`
	Start         string    `json:"start"`
	End           string    `json:"end"`
	Description   string    `json:"description"`
	Special       bool      `json:"special"`
	SpansMidnight bool      `json:"spans_midnight"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	Overlaps      []string  `json:"overlaps,omitempty"`
}

type shiftsResponse struct {
	Shifts   []shiftDTO `json:"shifts"`
	First    string     `json:"first,omitempty"`
	Last     string     `json:"last,omitempty"`
	FileName string     `json:"file_name,omitempty"`
	Timezone string     `json:"timezone"`
}

// handleShifts parses the posted roster and returns the shifts as JSON.
//
// POST /api/shifts  (body: roster text)
func (s *Server) handleShifts(w http.ResponseWriter, r *http.Request) {
	shifts, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	resp := shiftsResponse{Shifts: make([]shiftDTO, 0, len(shifts)), Timezone: s.loc.String()}
	for _, sh := range shifts {
		dto := shiftDTO{
			Date:          sh.Date.Format("2006-01-02"),
			Start:         sh.Start.String(),
			End:           sh.End.String(),
			Description:   sh.Description,
			Special:       sh.IsSpecial(),
			SpansMidnight: sh.SpansMidnight(),
			StartAt:       sh.StartAt(s.loc),
			EndAt:         sh.EndAt(s.loc),
		}
		for _, o := range overlap.Find(sh, shifts) {
			dto.Overlaps = append(dto.Overlaps, o.Description)
		}
		resp.Shifts = append(resp.Shifts, dto)
	}
	if len(shifts) > 0 {
		first, last := convert.Span(shifts)
		resp.First = first.Format("2006-01-02")
		resp.Last = last.Format("2006-01-02")
		resp.FileName = convert.FileName(first, last)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCalendar parses the posted roster and returns an iCalendar file.
//
// POST /api/calendar?reminder=Thomas&include=Julia&exclude=Max&special=1
//   - reminder, include, exclude: repeatable or comma separated; default
//     to the configured lists
//   - special: keep special shifts when include is set
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	all, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := convert.Filter{
		Include:        listParam(q["include"], s.cfg.Include),
		Exclude:        listParam(q["exclude"], s.cfg.Exclude),
		IncludeSpecial: boolParam(q.Get("special"), s.cfg.IncludeSpecial),
	}
	shifts, err := filter.Apply(all)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var buf bytes.Buffer
	err = ics.Generate(&buf, shifts, ics.GenerateOptions{
		Reminders: ics.NewReminderSet(listParam(q["reminder"], s.cfg.Reminders)...),
		All:       all,
		Location:  s.loc,
	})
	if err != nil {
		appLog.Error("calendar generation failed", err)
		writeError(w, http.StatusInternalServerError, "failed to generate calendar")
		return
	}

	first, last := convert.Span(shifts)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+convert.FileName(first, last))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) ([]*model.Shift, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRosterBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "roster too large")
		return nil, false
	}
	shifts := s.parser.ParseShifts(string(body))
	if len(shifts) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no shifts found in roster")
		return nil, false
	}
	return shifts, true
}

func listParam(values []string, def []string) []string {
	if len(values) == 0 {
		return def
	}
	var out []string
	for _, v := range values {
		out = append(out, config.SplitList(v)...)
	}
	return out
}

func boolParam(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
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
