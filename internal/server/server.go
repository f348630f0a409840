package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/analysis"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/config"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/chit"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	limits        Limits
	version       string
}

// NewHandler constructs the HTTP handler that serves the chit analysis API.
// A nil cfg serves with DefaultConfig.
func NewHandler(logger *zap.Logger, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	maxUploadSize := cfg.UploadSizeBytes()
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	limits := cfg.Limits
	if err := limits.normalize(); err != nil {
		logger.Warn("ignoring invalid server limits",
			zap.String("op", "server.NewHandler"),
			zap.Error(err),
		)
		limits = DefaultLimits()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, limits: limits, version: trimmedVersion}

	mux := http.NewServeMux()

	// Single-chit calculations (JSON in, JSON out)
	mux.HandleFunc("/api/analyze", h.handleAnalyze)
	mux.HandleFunc("/api/sweep", h.handleSweep)
	mux.HandleFunc("/api/compare", h.handleCompare)

	// Comparison download as CSV or XLSX
	mux.HandleFunc("/api/compare/export", h.handleCompareExport)

	// Whole configuration file upload
	mux.HandleFunc("/api/config", h.handleConfig)

	mux.HandleFunc("/api/version", h.handleVersion)

	return withRequestID(mux)
}

// withRequestID tags every request with the caller's X-Request-ID or a
// fresh UUID and echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

type configResponse struct {
	RequestID string                 `json:"request_id"`
	Reports   []reportPayload        `json:"reports"`
	CSV       string                 `json:"csv"`
	Text      string                 `json:"text"`
	Warnings  []string               `json:"warnings,omitempty"`
	Duration  string                 `json:"duration"`
	Config    map[string]interface{} `json:"config,omitempty"`
}

type reportPayload struct {
	Name             string               `json:"name"`
	FrequencyPerYear int                  `json:"frequency_per_year"`
	Analysis         *analysisPayload     `json:"analysis,omitempty"`
	Frequencies      []frequencyPayload   `json:"frequencies,omitempty"`
	Sweep            []bidScenarioPayload `json:"sweep,omitempty"`
	SweepSummary     *sweepSummaryPayload `json:"sweep_summary,omitempty"`
	Comparison       *comparisonPayload   `json:"comparison,omitempty"`
}

func (h *handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfig"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}

	conf, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	if err := conf.Validate(); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	if err := h.limits.checkConfiguration(conf); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	warnings := conf.ValidateConfiguration()

	reports, err := analysis.Run(h.logger.With(zap.String("request_id", requestID(r))), *conf)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}

	var csvBuf, textBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, reports); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to render csv: %v", err), op)
		return
	}
	output.PrettyFormat(&textBuf, reports)

	payloads := make([]reportPayload, 0, len(reports))
	for _, report := range reports {
		payloads = append(payloads, buildReport(report))
	}

	elapsed := time.Since(start)
	h.logger.Info("configuration analyzed",
		zap.String("op", op),
		zap.String("request_id", requestID(r)),
		zap.Int("chits", len(reports)),
		zap.Int("warnings", len(warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, configResponse{
		RequestID: requestID(r),
		Reports:   payloads,
		CSV:       csvBuf.String(),
		Text:      textBuf.String(),
		Warnings:  warnings,
		Duration:  elapsed.String(),
		Config:    configMap,
	})
}

func buildReport(report analysis.Report) reportPayload {
	payload := reportPayload{
		Name:             report.Name,
		FrequencyPerYear: report.FrequencyPerYear,
	}
	if report.Analysis != nil {
		a := buildAnalysis(*report.Analysis)
		payload.Analysis = &a
	}
	if len(report.Frequencies) > 0 {
		payload.Frequencies = buildFrequencies(report.Frequencies)
	}
	if len(report.Sweep) > 0 {
		payload.Sweep = buildBidScenarios(report.Sweep)
	}
	if report.SweepSummary != nil {
		s := buildSweepSummary(*report.SweepSummary)
		payload.SweepSummary = &s
	}
	if report.Comparison != nil {
		c := buildComparison(*report.Comparison)
		payload.Comparison = &c
	}
	return payload
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

// decodeJSON reads a size-limited JSON body into dst, rejecting unknown
// fields and trailing data.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds limit of %d bytes", h.maxUploadSize)
		}
		return http.StatusBadRequest, fmt.Errorf("failed to decode request: %w", err)
	}
	if dec.More() {
		return http.StatusBadRequest, errors.New("failed to decode request: unexpected data after JSON object")
	}
	return http.StatusOK, nil
}

// statusFor maps domain errors onto HTTP statuses: bad input is 400, a
// valid chit whose numbers do not work out is 422.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chit.ErrCalculation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, chit.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error     string            `json:"error"`
	Kind      string            `json:"kind,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func (h *handler) respondErr(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error(), RequestID: requestID(r)}

	var chitErr *chit.Error
	if errors.As(err, &chitErr) {
		resp.Kind = chitErr.Kind.String()
		resp.Details = chitErr.Details
	}

	h.logger.Error("chit request failed",
		zap.String("op", op),
		zap.String("request_id", resp.RequestID),
		zap.Int("status", status),
		zap.Error(err),
	)
	h.writeJSON(w, status, resp)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	id := requestID(r)
	h.logger.Error("chit request failed",
		zap.String("op", op),
		zap.String("request_id", id),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg, RequestID: id})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
