// Package server exposes the advisor over HTTP and MCP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/amishk599/skillpulse/internal/advisor"
	"github.com/amishk599/skillpulse/internal/gap"
	"github.com/amishk599/skillpulse/internal/model"
	"github.com/amishk599/skillpulse/internal/summary"
	"github.com/amishk599/skillpulse/internal/trend"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB
	defaultMonths      = 12
	defaultTargetLevel = 3
	shutdownTimeout    = 5 * time.Second

	// RequestIDHeader carries the per-request id on every response.
	RequestIDHeader = "X-Request-ID"
)

// Advisor is the operation surface served by the transports.
type Advisor interface {
	ComputeHealthScores(ctx context.Context, candidateID int64) (model.HealthScores, error)
	ComputeGapAnalysis(ctx context.Context, skills []string, role string) (gap.Result, error)
	GetTrend(ctx context.Context, skill string, months int) (model.TrendSeries, error)
	GenerateSummary(ctx context.Context, req summary.Request) (model.SummaryResult, error)
	MarketTrends(ctx context.Context, skills []string, months int) (trend.MarketTrends, error)
	CompareTrends(ctx context.Context, skills []string, months int) (trend.CompareResult, error)
	Movers(ctx context.Context, direction trend.MoverDirection, limit, period int) (trend.MoversResult, error)
	Report(ctx context.Context, candidateID int64, role string) (advisor.Report, error)
	RecommendRoles(ctx context.Context, candidateID int64, limit int) (advisor.Recommendations, error)
	CategoryTrends(ctx context.Context, months int) (trend.CategoryTrendsResult, error)
	EstimateLearning(ctx context.Context, skill string, current, target int) (gap.LearningEstimate, error)
	Prerequisites(ctx context.Context, skill string) (gap.SkillPrerequisites, error)
	Roles(ctx context.Context) ([]string, error)
}

var _ Advisor = (*advisor.Service)(nil)

type summaryBody struct {
	TargetRole *string `json:"target_role" validate:"omitempty,max=100"`
	Context    string  `json:"context" validate:"omitempty,oneof=career_growth job_search upskilling"`
	Regenerate bool    `json:"regenerate"`
}

type gapBody struct {
	Skills []string `json:"skills" validate:"required,min=1,max=100,dive,required,max=100"`
	Role   string   `json:"role" validate:"required,max=100"`
}

type handler struct {
	svc      Advisor
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler returns the HTTP API.
func NewHandler(svc Advisor, logger *slog.Logger) http.Handler {
	h := &handler{svc: svc, validate: validator.New(), logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/candidates/{id}/health", h.healthScores)
		r.Post("/candidates/{id}/summary", h.summary)
		r.Get("/candidates/{id}/report", h.report)
		r.Get("/candidates/{id}/recommendations", h.recommendations)
		r.Post("/gap-analysis", h.gapAnalysis)
		r.Get("/roles", h.roles)
		r.Get("/trends", h.marketTrends)
		r.Get("/trends/compare", h.compare)
		r.Get("/trends/movers", h.movers)
		r.Get("/trends/categories", h.categoryTrends)
		r.Get("/learning/estimate", h.learningEstimate)
		r.Get("/learning/prerequisites/*", h.prerequisites)
		// Catch-all so skill names containing a slash (ci/cd) still route.
		r.Get("/trends/*", h.skillTrend)
	})
	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *handler) healthScores(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}
	scores, err := h.svc.ComputeHealthScores(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, scores)
}

func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}
	var body summaryBody
	if !h.decode(w, r, &body, true) {
		return
	}
	sctx, err := model.ParseSummaryContext(body.Context)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var targetRole string
	if body.TargetRole != nil {
		if targetRole = strings.TrimSpace(*body.TargetRole); targetRole == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "target_role cannot be empty")
			return
		}
	}

	res, err := h.svc.GenerateSummary(r.Context(), summary.Request{
		CandidateID:     id,
		TargetRole:      targetRole,
		Context:         sctx,
		ForceRegenerate: body.Regenerate,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}
	rep, err := h.svc.Report(r.Context(), id, strings.TrimSpace(r.URL.Query().Get("role")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, rep)
}

func (h *handler) gapAnalysis(w http.ResponseWriter, r *http.Request) {
	var body gapBody
	if !h.decode(w, r, &body, false) {
		return
	}
	res, err := h.svc.ComputeGapAnalysis(r.Context(), body.Skills, body.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *handler) roles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.svc.Roles(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"roles": roles, "total": len(roles)})
}

func (h *handler) skillTrend(w http.ResponseWriter, r *http.Request) {
	months, ok := intParam(w, r, "months", defaultMonths)
	if !ok {
		return
	}
	// chi matches on the escaped path, so %2F arrives undecoded.
	skill, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid skill name in path: %v", err)
		return
	}
	series, err := h.svc.GetTrend(r.Context(), skill, months)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, series)
}

func (h *handler) marketTrends(w http.ResponseWriter, r *http.Request) {
	months, ok := intParam(w, r, "months", defaultMonths)
	if !ok {
		return
	}
	res, err := h.svc.MarketTrends(r.Context(), trend.SplitSkills(r.URL.Query().Get("skills")), months)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *handler) compare(w http.ResponseWriter, r *http.Request) {
	months, ok := intParam(w, r, "months", defaultMonths)
	if !ok {
		return
	}
	res, err := h.svc.CompareTrends(r.Context(), trend.SplitSkills(r.URL.Query().Get("skills")), months)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *handler) movers(w http.ResponseWriter, r *http.Request) {
	direction, err := trend.ParseMoverDirection(r.URL.Query().Get("direction"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, ok := intParam(w, r, "limit", trend.DefaultMoverLimit)
	if !ok {
		return
	}
	period, ok := intParam(w, r, "period", trend.DefaultMoverPeriod)
	if !ok {
		return
	}
	res, err := h.svc.Movers(r.Context(), direction, limit, period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *handler) recommendations(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}
	limit, ok := intParam(w, r, "limit", advisor.DefaultRecommendations)
	if !ok {
		return
	}
	res, err := h.svc.RecommendRoles(r.Context(), id, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *handler) categoryTrends(w http.ResponseWriter, r *http.Request) {
	months, ok := intParam(w, r, "months", defaultMonths)
	if !ok {
		return
	}
	res, err := h.svc.CategoryTrends(r.Context(), months)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *handler) learningEstimate(w http.ResponseWriter, r *http.Request) {
	current, ok := intParam(w, r, "current_level", 0)
	if !ok {
		return
	}
	target, ok := intParam(w, r, "target_level", defaultTargetLevel)
	if !ok {
		return
	}
	res, err := h.svc.EstimateLearning(r.Context(), r.URL.Query().Get("skill"), current, target)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *handler) prerequisites(w http.ResponseWriter, r *http.Request) {
	skill, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid skill name in path: %v", err)
		return
	}
	res, err := h.svc.Prerequisites(r.Context(), skill)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

// decode reads and validates a JSON body. An empty body is accepted when
// optional is set.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return false
		}
	}
	if err := h.validate.Struct(dst); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%s", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// fail maps service errors to status codes.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found_error", "%v", err)
	case errors.Is(err, model.ErrInvalidArgument):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, context.Canceled):
		httpError(w, http.StatusServiceUnavailable, "api_error", "request cancelled")
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "request_id", w.Header().Get(RequestIDHeader), "error", err)
		httpError(w, http.StatusInternalServerError, "api_error", "internal error")
	}
}

func candidateID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "candidate id must be a positive integer, got %q", raw)
		return 0, false
	}
	return id, true
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%s must be an integer, got %q", name, raw)
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, readTimeout time.Duration, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down http server")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
