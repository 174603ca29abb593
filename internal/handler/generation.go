// Package handler exposes the generation pipeline over HTTP.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reelcraft/script-generation-go/internal/llm"
	"github.com/reelcraft/script-generation-go/internal/metrics"
	"github.com/reelcraft/script-generation-go/internal/middleware"
	"github.com/reelcraft/script-generation-go/internal/models"
	"github.com/reelcraft/script-generation-go/internal/service"
	"github.com/reelcraft/script-generation-go/pkg/logger"
)

const defaultHistoryLimit = 10

// GenerationHandler handles script generation HTTP requests.
type GenerationHandler struct {
	svc *service.GenerationService
}

// NewGenerationHandler creates a new GenerationHandler instance.
func NewGenerationHandler(svc *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

// HandleGenerate runs the full generation pipeline for one request.
func (h *GenerationHandler) HandleGenerate(c *gin.Context) {
	var req models.GenerateRequestDTO

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Invalid request payload",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:    http.StatusBadRequest,
			Error:     "Bad Request",
			Message:   "Invalid request payload: " + err.Error(),
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	caller := middleware.CallerFrom(c)

	response, err := h.svc.Generate(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// HandleHistory returns the caller's recent generation records.
func (h *GenerationHandler) HandleHistory(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if caller == nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized", "Login required to view generation history", nil)
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			writeError(c, http.StatusBadRequest, "Bad Request", "limit must be an integer between 1 and 50", nil)
			return
		}
		limit = parsed
	}

	records, err := h.svc.History(c.Request.Context(), caller.ID, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if records == nil {
		records = []*models.GenerationRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// HandleUsage reports the caller's quota consumption for the current period.
func (h *GenerationHandler) HandleUsage(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if caller == nil {
		writeError(c, http.StatusUnauthorized, "Unauthorized", "Login required to view usage", nil)
		return
	}

	usage, resetDate, err := h.svc.Usage(c.Request.Context(), caller.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"used":      usage.Used,
		"limit":     usage.Limit,
		"remaining": usage.Remaining,
		"resetDate": resetDate,
	})
}

func (h *GenerationHandler) handleError(c *gin.Context, err error) {
	var (
		verr *service.ValidationError
		uerr *service.UnauthenticatedError
		qerr *service.QuotaExceededError
	)

	switch {
	case errors.As(err, &verr):
		logger.Log.Warn("Validation error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeValidation).Inc()
		writeError(c, http.StatusBadRequest, "Bad Request", verr.Message, nil)

	case errors.As(err, &uerr):
		writeError(c, http.StatusUnauthorized, "Unauthorized", uerr.Message, nil)

	case errors.As(err, &qerr):
		logger.Log.Info("Quota exceeded",
			zap.Int("used", qerr.GenerationsUsed),
			zap.Int("limit", qerr.Limit),
		)
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeQuota).Inc()
		writeError(c, http.StatusTooManyRequests, "Too Many Requests", err.Error(), &models.QuotaDetails{
			GenerationsUsed: qerr.GenerationsUsed,
			Limit:           qerr.Limit,
			ResetDate:       qerr.ResetDate,
		})

	case llm.IsBillingFailure(err):
		logger.Log.Error("Provider billing failure",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeBilling).Inc()
		writeError(c, http.StatusServiceUnavailable, "Service Unavailable",
			"The language model provider is unavailable. Contact the service operator.", nil)

	case errors.Is(err, llm.ErrInvalidOutput):
		logger.Log.Error("Malformed model output",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeModel).Inc()
		writeError(c, http.StatusInternalServerError, "Internal Server Error",
			"The language model returned an unusable response. Please retry.", nil)

	default:
		logger.Log.Error("Generation failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeInternal).Inc()
		writeError(c, http.StatusInternalServerError, "Internal Server Error",
			"Failed to process generation request", nil)
	}
}

func writeError(c *gin.Context, status int, title, message string, details *models.QuotaDetails) {
	c.JSON(status, models.ErrorResponse{
		Status:    status,
		Error:     title,
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
		Details:   details,
	})
}
