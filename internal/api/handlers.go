package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nordlys-media/veracity/internal/classify"
	"github.com/nordlys-media/veracity/internal/domain"
	"github.com/nordlys-media/veracity/internal/engine"
	"github.com/nordlys-media/veracity/internal/ingest"
	"github.com/nordlys-media/veracity/internal/logging"
)

// Handler handles HTTP requests for the analysis API.
type Handler struct {
	engine *engine.Engine
	logger logging.Logger
}

// NewHandler creates an API handler around the analysis engine.
func NewHandler(eng *engine.Engine, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{engine: eng, logger: logger}
}

// AnalyzeRequest is the POST /api/v1/analyze body. The enrichment flags
// default to enabled when omitted.
type AnalyzeRequest struct {
	Text           string `json:"text" binding:"required"`
	CrossReference *bool  `json:"cross_reference"`
	Explain        *bool  `json:"explain"`
	LanguageHint   string `json:"language_hint"`
}

// ErrorResponse carries a request failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Analyze handles POST /api/v1/analyze.
func (h *Handler) Analyze(c *gin.Context) {
	var body AnalyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.logger.Warn("Invalid analysis request",
			logging.String("request_id", RequestID(c)),
			logging.Error(err),
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	req := domain.NewAnalysisRequest(body.Text)
	if body.CrossReference != nil {
		req.CrossReference = *body.CrossReference
	}
	if body.Explain != nil {
		req.Explain = *body.Explain
	}
	req.LanguageHint = body.LanguageHint

	v, err := h.engine.Analyze(c.Request.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Analysis failed",
				logging.String("request_id", RequestID(c)),
				logging.Error(err),
			)
		} else {
			h.logger.Warn("Analysis rejected",
				logging.String("request_id", RequestID(c)),
				logging.Int("status", status),
				logging.Error(err),
			)
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, v)
}

// statusFor maps pipeline errors to HTTP status codes. Requests the
// pipeline never accepted are 400, texts the model cannot classify are
// 422, anything else is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrTextTooLong),
		errors.Is(err, ingest.ErrExtraction):
		return http.StatusBadRequest
	case errors.Is(err, classify.ErrUnclassifiable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
