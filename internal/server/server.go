package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/plan-weights/internal/plan"
	"github.com/iwvelando/plan-weights/internal/weights"
	"github.com/iwvelando/plan-weights/pkg/constants"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

type requestIDKey struct{}

// NewHandler constructs the HTTP handler that serves the plan weight API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Full validation report for a plan
	mux.HandleFunc("/api/plan/validate", h.handleValidate)

	// Running sibling totals for every branch point
	mux.HandleFunc("/api/plan/totals", h.handleTotals)

	// Proportional rescaling of a scope or a single branch point
	mux.HandleFunc("/api/plan/normalize", h.handleNormalize)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return withRequestID(mux)
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (h *handler) requestLogger(r *http.Request, op string) *zap.Logger {
	fields := []zap.Field{zap.String("op", op)}
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		fields = append(fields, zap.String("request_id", id))
	}
	return h.logger.With(fields...)
}

type validateResponse struct {
	Valid    bool                  `json:"valid"`
	Errors   map[string][]string   `json:"errors"`
	Issues   []weights.Issue       `json:"issues"`
	Totals   []weights.BranchTotal `json:"totals"`
	Duration string                `json:"duration"`
}

type totalsResponse struct {
	Totals []weights.BranchTotal `json:"totals"`
}

type normalizeRequest struct {
	Plan   *plan.Plan `json:"plan"`
	Scope  string     `json:"scope"`
	Branch string     `json:"branch"`
}

type normalizeResponse struct {
	Scope   string            `json:"scope,omitempty"`
	Branch  string            `json:"branch,omitempty"`
	Total   float64           `json:"total"`
	Updates map[string]string `json:"updates"`
	Plan    plan.Plan         `json:"plan"`
}

func (h *handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleValidate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	logger := h.requestLogger(r, op)
	p, ok := h.readPlan(w, r, logger)
	if !ok {
		return
	}

	result := weights.Validate(*p)
	elapsed := time.Since(start)

	logger.Info("plan validated",
		zap.Bool("valid", result.Valid()),
		zap.Int("issues", result.Len()),
		zap.Int("objectives", len(p.Objectives)),
		zap.Duration("duration", elapsed),
	)

	issues := result.Issues()
	if issues == nil {
		issues = []weights.Issue{}
	}
	h.writeJSON(w, http.StatusOK, validateResponse{
		Valid:    result.Valid(),
		Errors:   result.Errors(),
		Issues:   issues,
		Totals:   weights.Totals(*p),
		Duration: elapsed.String(),
	}, logger)
}

func (h *handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTotals"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	logger := h.requestLogger(r, op)
	p, ok := h.readPlan(w, r, logger)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, totalsResponse{Totals: weights.Totals(*p)}, logger)
}

func (h *handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleNormalize"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	logger := h.requestLogger(r, op)
	body, ok := h.readBody(w, r, logger)
	if !ok {
		return
	}

	var req normalizeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), logger)
		return
	}
	if req.Plan == nil {
		h.respondError(w, http.StatusBadRequest, "missing plan", logger)
		return
	}

	updated := req.Plan.Clone()
	resp := normalizeResponse{}

	var updates []weights.Update
	switch {
	case strings.TrimSpace(req.Branch) != "":
		branch, err := plan.ParsePath(req.Branch)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), logger)
			return
		}
		updates, err = weights.NormalizeBranch(updated, branch)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), logger)
			return
		}
		resp.Branch = branch.String()
		resp.Total, err = weights.BranchSum(updated, branch)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), logger)
			return
		}
	default:
		scope, err := weights.ParseScope(req.Scope)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), logger)
			return
		}
		updates, err = weights.NormalizeScope(updated, scope)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), logger)
			return
		}
		resp.Scope = scope.String()
		resp.Total, err = weights.ScopeTotal(updated, scope)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), logger)
			return
		}
	}

	if err := weights.Apply(&updated, updates); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), logger)
		return
	}

	resp.Updates = weights.UpdatesMap(updates)
	resp.Plan = updated

	logger.Info("plan normalized",
		zap.String("scope", resp.Scope),
		zap.String("branch", resp.Branch),
		zap.Float64("total", resp.Total),
		zap.Int("updates", len(updates)),
	)

	h.writeJSON(w, http.StatusOK, resp, logger)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	}, h.requestLogger(r, "server.handleVersion"))
}

// readBody reads the request body under the upload limit, responding with
// 413 when it is exceeded.
func (h *handler) readBody(w http.ResponseWriter, r *http.Request, logger *zap.Logger) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	defer func() {
		if closeErr := r.Body.Close(); closeErr != nil {
			logger.Warn("failed to close request body", zap.Error(closeErr))
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r.Body); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), logger)
			return nil, false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), logger)
		return nil, false
	}
	return buf.Bytes(), true
}

// readPlan decodes a JSON or YAML plan body, chosen by Content-Type.
func (h *handler) readPlan(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*plan.Plan, bool) {
	body, ok := h.readBody(w, r, logger)
	if !ok {
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		h.respondError(w, http.StatusBadRequest, "missing plan", logger)
		return nil, false
	}

	var p *plan.Plan
	var err error
	switch requestFormat(r) {
	case plan.FormatYAML:
		p, err = plan.LoadPlanFromReader(bytes.NewReader(body), plan.FormatYAML)
	default:
		p = &plan.Plan{}
		err = json.Unmarshal(body, p)
	}
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode plan: %v", err), logger)
		return nil, false
	}
	return p, true
}

func requestFormat(r *http.Request) string {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return plan.FormatJSON
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return plan.FormatYAML
	default:
		return plan.FormatJSON
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, logger *zap.Logger) {
	logger.Error("plan request failed",
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg}, logger)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to write JSON response", zap.Error(err))
	}
}
