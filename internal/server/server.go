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

	"github.com/iwvelando/construction-forecast/internal/cache"
	"github.com/iwvelando/construction-forecast/internal/calculator"
	"github.com/iwvelando/construction-forecast/internal/config"
	"github.com/iwvelando/construction-forecast/internal/metrics"
	"github.com/iwvelando/construction-forecast/internal/store"
	"github.com/iwvelando/construction-forecast/pkg/constants"
	"github.com/iwvelando/construction-forecast/pkg/output"
	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"github.com/iwvelando/construction-forecast/pkg/reference"
	"github.com/iwvelando/construction-forecast/pkg/resolver"
	"github.com/iwvelando/construction-forecast/pkg/validation"
	"go.uber.org/zap"
)

// Calculation sources, used as metric labels.
const (
	sourceAPI     = "api"
	sourceUpload  = "upload"
	sourceProject = "project"
)

// Dependencies are the collaborators the handler serves requests with. Only
// Calculator is required; a nil Store disables the project endpoints and a
// nil Cache or Metrics disables memoization or instrumentation.
type Dependencies struct {
	Calculator *calculator.Calculator
	Store      *store.Store
	Cache      *cache.Cache
	Metrics    *metrics.Metrics
}

type handler struct {
	logger        *zap.Logger
	calc          *calculator.Calculator
	store         *store.Store
	cache         *cache.Cache
	metrics       *metrics.Metrics
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the calculation API.
func NewHandler(logger *zap.Logger, deps Dependencies, maxUploadSize int64, version string) http.Handler {
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

	calc := deps.Calculator
	if calc == nil {
		calc = calculator.New(nil, calculator.WithLogger(logger))
	}

	h := &handler{
		logger:        logger,
		calc:          calc,
		store:         deps.Store,
		cache:         deps.Cache,
		metrics:       deps.Metrics,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	mux := http.NewServeMux()
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.metrics.Instrument(pattern, fn))
	}

	// Calculation endpoints
	route("/api/calculate", h.handleCalculate)
	route("/api/calculate/upload", h.handleCalculateUpload)

	// Reference data
	route("/api/parameters", h.handleParameters)
	route("/api/locations", h.handleLocations)
	route("/api/version", h.handleVersion)

	// Saved projects
	route("/api/projects", h.handleProjects)
	route("/api/projects/{id}", h.handleProject)
	route("/api/projects/{id}/calculate", h.handleProjectCalculate)

	if h.metrics != nil {
		mux.Handle("/metrics", h.metrics.Handler())
	}

	return mux
}

type calculateRequest struct {
	Name      string               `json:"name,omitempty"`
	Project   config.ProjectConfig `json:"project"`
	Overrides map[string]*float64  `json:"overrides,omitempty"`
}

func (r calculateRequest) configuration() *config.Configuration {
	return &config.Configuration{Project: r.Project, Overrides: r.Overrides}
}

type calculateResponse struct {
	Results  calculator.Results `json:"results"`
	Warnings []string           `json:"warnings,omitempty"`
	CSV      string             `json:"csv"`
	Cached   bool               `json:"cached"`
	Duration string             `json:"duration"`
}

// requestError carries the status a failed step should answer with.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	req, err := h.decodeCalculateRequest(w, r)
	if err != nil {
		h.metrics.ObserveCalculation(sourceAPI, metrics.StatusInvalid, 0)
		h.respondRequestError(w, err, op)
		return
	}

	in, overrides, warnings, err := prepare(req.configuration())
	if err != nil {
		h.metrics.ObserveCalculation(sourceAPI, metrics.StatusInvalid, 0)
		h.respondRequestError(w, err, op)
		return
	}

	h.runCalculation(r.Context(), w, in, overrides, warnings, start, sourceAPI, op)
}

func (h *handler) handleCalculateUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculateUpload"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing project file", op)
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
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read project file: %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(&buf)
	if err != nil {
		h.metrics.ObserveCalculation(sourceUpload, metrics.StatusInvalid, 0)
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	in, overrides, warnings, err := prepare(cfg)
	if err != nil {
		h.metrics.ObserveCalculation(sourceUpload, metrics.StatusInvalid, 0)
		h.respondRequestError(w, err, op)
		return
	}

	h.runCalculation(r.Context(), w, in, overrides, warnings, start, sourceUpload, op)
}

// decodeCalculateRequest reads the body, checks it against the schema and
// decodes it.
func (h *handler) decodeCalculateRequest(w http.ResponseWriter, r *http.Request) (calculateRequest, error) {
	var req calculateRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return req, &requestError{
				status: http.StatusRequestEntityTooLarge,
				msg:    fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize),
			}
		}
		return req, badRequest("failed to read request: %v", err)
	}
	if err := validatePayload(body); err != nil {
		return req, badRequest("%v", err)
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, badRequest("failed to decode request: %v", err)
	}
	return req, nil
}

// prepare turns a configuration into validated inputs and overrides.
func prepare(cfg *config.Configuration) (project.Inputs, params.Overrides, []string, error) {
	in, err := cfg.Inputs()
	if err != nil {
		return project.Inputs{}, nil, nil, badRequest("%v", err)
	}
	overrides, err := cfg.ParsedOverrides()
	if err != nil {
		return project.Inputs{}, nil, nil, badRequest("%v", err)
	}
	report := validation.ValidateInputs(in)
	if !report.Valid() {
		return project.Inputs{}, nil, nil, &requestError{
			status: http.StatusUnprocessableEntity,
			msg:    report.Err().Error(),
		}
	}
	return in, overrides, report.Warnings, nil
}

func (h *handler) runCalculation(ctx context.Context, w http.ResponseWriter, in project.Inputs, overrides params.Overrides, warnings []string, start time.Time, source, op string) {
	results, cached := h.calculate(ctx, in, overrides, op)

	warnings = append(warnings, validation.ValidateLocation(h.calc.Tables(), in.Location)...)
	warnings = append(warnings, validation.ValidateParameterRanges(results.Snapshot())...)
	warnings = append(warnings, validation.ValidateUnitMix(results.Zoning)...)

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, results); err != nil {
		h.metrics.ObserveCalculation(source, metrics.StatusError, 0)
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render results: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	h.metrics.ObserveCalculation(source, metrics.StatusOK, elapsed)

	h.logger.Info("calculation completed",
		zap.String("op", op),
		zap.String("location", in.LocationKey()),
		zap.Bool("cached", cached),
		zap.Int("warnings", len(warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, calculateResponse{
		Results:  results,
		Warnings: warnings,
		CSV:      csvBuf.String(),
		Cached:   cached,
		Duration: elapsed.String(),
	})
}

// calculate serves results from the cache when possible. Cache failures are
// logged and never fail the request.
func (h *handler) calculate(ctx context.Context, in project.Inputs, overrides params.Overrides, op string) (calculator.Results, bool) {
	if !h.cache.Enabled() {
		return h.calc.Calculate(in, overrides), false
	}

	key, err := h.cache.Key(in, overrides, h.calc.Now())
	if err != nil {
		h.logger.Warn("failed to derive cache key", zap.String("op", op), zap.Error(err))
		return h.calc.Calculate(in, overrides), false
	}

	cached, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warn("cache lookup failed", zap.String("op", op), zap.Error(err))
	}
	h.metrics.ObserveCacheLookup(ok)
	if ok {
		return *cached, true
	}

	results := h.calc.Calculate(in, overrides)
	if err := h.cache.Set(ctx, key, results); err != nil {
		h.logger.Warn("failed to cache results", zap.String("op", op), zap.Error(err))
	}
	return results, false
}

type parametersResponse struct {
	ProjectType  project.Type         `json:"projectType"`
	QualityLevel project.QualityLevel `json:"qualityLevel"`
	Location     string               `json:"location"`
	Parameters   []params.Resolved    `json:"parameters"`
}

func (h *handler) handleParameters(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleParameters"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	projectType, err := project.ParseType(query.Get("type"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	quality, err := project.ParseQualityLevel(query.Get("quality"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	location := project.NormalizeLocation(query.Get("location"))

	snapshot := resolver.New(h.calc.Tables(), projectType).ResolveAll(quality, location, nil)
	h.writeJSON(w, http.StatusOK, parametersResponse{
		ProjectType:  projectType,
		QualityLevel: quality,
		Location:     location,
		Parameters:   snapshot.Parameters,
	})
}

type locationEntry struct {
	Key string `json:"key"`
	reference.Location
}

func (h *handler) handleLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	tables := h.calc.Tables()
	keys := tables.LocationKeys()
	entries := make([]locationEntry, 0, len(keys))
	for _, key := range keys {
		loc, _ := tables.Location(key)
		entries = append(entries, locationEntry{Key: key, Location: loc})
	}
	h.writeJSON(w, http.StatusOK, map[string][]locationEntry{"locations": entries})
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

func (h *handler) respondRequestError(w http.ResponseWriter, err error, op string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		h.respondErrorWithOp(w, reqErr.status, reqErr.msg, op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
