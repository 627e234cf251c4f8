// ABOUTME: HTTP API for generating and downloading reports
// ABOUTME: chi router with JWT viewer identity, rate limiting and Prometheus metrics
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/export"
	"github.com/harperreed/salesreport/models"
	"github.com/harperreed/salesreport/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Server struct {
	service *report.Service
	secret  []byte
	limiter *limiter.Limiter
	metrics *Metrics
	logger  *logrus.Logger
}

// NewServer validates the JWT secret and rate ("60-M" style) and builds a server.
func NewServer(service *report.Service, secret, rate string, logger *logrus.Logger) (*Server, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is required to serve the API")
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate limit %q: %w", rate, err)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{
		service: service,
		secret:  []byte(secret),
		limiter: limiter.New(memory.NewStore(), parsed),
		metrics: NewMetrics(),
		logger:  logger,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(s.logRequests)

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	mux.Route("/api/v1", func(api chi.Router) {
		api.Use(stdlib.NewMiddleware(s.limiter).Handler)
		api.Use(requireViewer(s.secret))

		api.Get("/scope", s.handleScope)
		api.Get("/reports/{type}", s.handleReport)
		api.Get("/reports/{type}/export", s.handleExport)
	})

	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("starting web server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"request_id": middleware.GetReqID(r.Context()),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("http")
	})
}

func requestFrom(r *http.Request) report.Request {
	q := r.URL.Query()
	timeframe := q.Get("timeframe")
	if timeframe == "" {
		timeframe = string(analytics.TimeframeMonth)
	}
	return report.Request{
		ViewerID:  ViewerID(r.Context()),
		Type:      report.Kind(chi.URLParam(r, "type")),
		Timeframe: timeframe,
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
		SubjectID: q.Get("subject"),
	}
}

func (s *Server) generate(r *http.Request) (report.Report, error) {
	req := requestFrom(r)
	started := time.Now()
	rep, err := s.service.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, report.ErrAccessDenied) {
			s.metrics.denials.Inc()
		}
		return nil, err
	}
	kind := string(rep.Kind())
	s.metrics.reports.WithLabelValues(kind).Inc()
	s.metrics.duration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	return rep, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.generate(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.generate(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	res, err := export.Export(rep)
	if err != nil {
		s.logger.WithError(err).Error("export failed")
		s.metrics.failures.WithLabelValues(strconv.Itoa(http.StatusInternalServerError)).Inc()
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	s.metrics.exported.Add(float64(len(res.Data)))

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Export-ID", ulid.Make().String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

type scopeResponse struct {
	Viewer string        `json:"viewer"`
	Users  []models.User `json:"users"`
}

func (s *Server) handleScope(w http.ResponseWriter, r *http.Request) {
	viewer := ViewerID(r.Context())
	users, err := s.service.VisibleUsers(r.Context(), viewer)
	if err != nil {
		if errors.Is(err, report.ErrAccessDenied) {
			s.metrics.denials.Inc()
		}
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scopeResponse{Viewer: viewer, Users: users})
}

// fail maps pipeline errors onto HTTP statuses. Denials always carry the
// same fixed message.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var verr *report.ValidationError
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, report.ErrAccessDenied):
		status, msg = http.StatusForbidden, report.ErrAccessDenied.Error()
	case errors.As(err, &verr):
		status, msg = http.StatusBadRequest, verr.Error()
	case errors.Is(err, analytics.ErrInvalidRange), errors.Is(err, analytics.ErrUnknownTimeframe):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, report.ErrUserNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, context.Canceled):
		return
	default:
		s.logger.WithError(err).Error("report request failed")
	}
	s.metrics.failures.WithLabelValues(strconv.Itoa(status)).Inc()
	writeError(w, status, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	_ = enc.Encode(v)
}
