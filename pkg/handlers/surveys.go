package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tallyline/survey-engine/pkg/apperrors"
	"github.com/tallyline/survey-engine/pkg/config"
	"github.com/tallyline/survey-engine/pkg/ingest"
	"github.com/tallyline/survey-engine/pkg/services"
)

// maxUploadBytes caps survey uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// SurveysHandler handles survey upload and analysis HTTP requests.
type SurveysHandler struct {
	controller *services.Controller
	source     ingest.RowSource
	cfg        *config.Config
	logger     *zap.Logger
}

// NewSurveysHandler creates a new surveys handler.
func NewSurveysHandler(controller *services.Controller, source ingest.RowSource, cfg *config.Config, logger *zap.Logger) *SurveysHandler {
	return &SurveysHandler{
		controller: controller,
		source:     source,
		cfg:        cfg,
		logger:     logger,
	}
}

// RegisterRoutes registers the surveys handler's routes on the given mux.
func (h *SurveysHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/surveys", h.Upload)
	mux.HandleFunc("GET /api/datasets", h.ListDatasets)
	mux.HandleFunc("GET /api/datasets/{id}", h.GetDataset)
	mux.HandleFunc("POST /api/datasets/{id}/analyze", h.Analyze)
	mux.HandleFunc("POST /api/datasets/{id}/classify", h.Classify)
}

// Upload handles POST /api/surveys. It accepts a multipart upload with a
// "file" field holding an xlsx workbook, replaces all existing datasets,
// and returns the new dataset list.
func (h *SurveysHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_file", "multipart field \"file\" is required")
		return
	}
	defer func() { _ = file.Close() }()

	if err := ingest.CheckFilename(header.Filename); err != nil {
		_ = ErrorResponse(w, http.StatusUnsupportedMediaType, "unsupported_file", "only .xlsx workbooks are accepted")
		return
	}

	table, err := h.source.Read(file)
	if err != nil {
		h.logger.Warn("Workbook ingestion failed",
			zap.String("filename", header.Filename),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "parse_error", err.Error())
		return
	}

	summaries := h.controller.Ingest(table)
	h.logger.Info("Survey ingested",
		zap.String("filename", header.Filename),
		zap.Int("datasets", len(summaries)))

	if err := WriteJSON(w, http.StatusCreated, summaries); err != nil {
		h.logger.Error("Failed to encode upload response", zap.Error(err))
	}
}

// ListDatasets handles GET /api/datasets.
func (h *SurveysHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, h.controller.Datasets()); err != nil {
		h.logger.Error("Failed to encode dataset list", zap.Error(err))
	}
}

// GetDataset handles GET /api/datasets/{id}. The response includes rows,
// classifications, and any narrative results.
func (h *SurveysHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.datasetID(w, r)
	if !ok {
		return
	}

	dataset, err := h.controller.Dataset(id)
	if err != nil {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "dataset not found")
		return
	}

	if err := WriteJSON(w, http.StatusOK, dataset); err != nil {
		h.logger.Error("Failed to encode dataset", zap.Error(err))
	}
}

// Analyze handles POST /api/datasets/{id}/analyze. The run executes in the
// background; clients poll GET /api/datasets/{id} for progress and results.
func (h *SurveysHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id, ok := h.datasetID(w, r)
	if !ok {
		return
	}
	if _, err := h.controller.Dataset(id); err != nil {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "dataset not found")
		return
	}

	go func() {
		if err := h.controller.RunAnalysis(context.Background(), id); err != nil {
			h.logger.Warn("Analysis run failed", zap.String("dataset", id.String()), zap.Error(err))
		}
	}()

	WriteAccepted(w, h.logger, "analysis started")
}

// classifyRequest is the body of POST /api/datasets/{id}/classify.
type classifyRequest struct {
	Topics []string `json:"topics"`
}

// Classify handles POST /api/datasets/{id}/classify. The topic list must be
// non-empty; the run executes in the background.
func (h *SurveysHandler) Classify(w http.ResponseWriter, r *http.Request) {
	id, ok := h.datasetID(w, r)
	if !ok {
		return
	}
	if _, err := h.controller.Dataset(id); err != nil {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "dataset not found")
		return
	}

	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "request body must be JSON with a topics array")
		return
	}
	if len(req.Topics) == 0 {
		_ = ErrorResponse(w, http.StatusBadRequest, "no_topics", apperrors.ErrNoTopics.Error())
		return
	}

	go func() {
		if err := h.controller.RunClassification(context.Background(), id, req.Topics); err != nil &&
			!errors.Is(err, apperrors.ErrRunInProgress) {
			h.logger.Warn("Classification run failed", zap.String("dataset", id.String()), zap.Error(err))
		}
	}()

	WriteAccepted(w, h.logger, "classification started")
}

// datasetID parses the {id} path value, writing a 400 on failure.
func (h *SurveysHandler) datasetID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "dataset id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
