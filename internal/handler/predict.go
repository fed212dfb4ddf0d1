package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"agroyield/internal/advisory"
	"agroyield/internal/models"
	"agroyield/internal/predictor"
	"agroyield/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/sirupsen/logrus"
)

const (
	maxBatchSize     = 100
	batchConcurrency = 8
)

type PredictHandler interface {
	Predict(c *gin.Context)
	PredictBatch(c *gin.Context)
	SubmitFeedback(c *gin.Context)
	ListFeedback(c *gin.Context)
	Analytics(c *gin.Context)
	Metadata(c *gin.Context)
}

type predictHandler struct {
	broker          *predictor.Broker
	predictionRepo  repository.PredictionRepository
	modelServiceURL string
	log             *logrus.Logger
}

func NewPredictHandler(broker *predictor.Broker, predictionRepo repository.PredictionRepository, modelServiceURL string, log *logrus.Logger) PredictHandler {
	return &predictHandler{broker: broker, predictionRepo: predictionRepo, modelServiceURL: modelServiceURL, log: log}
}

type PredictResponse struct {
	PredictionID string                  `json:"predictionId"`
	Prediction   models.PredictionResult `json:"prediction"`
	Advisory     models.Advisory         `json:"advisory"`
}

type FeedbackRequest struct {
	PredictionID         string  `json:"predictionId" binding:"required"`
	ActualYieldTonsPerHa float64 `json:"actualYieldTonsPerHa" binding:"required"`
	Rating               *int    `json:"rating"`
	Comment              *string `json:"comment"`
}

func (h *predictHandler) Predict(c *gin.Context) {
	var req models.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.predict(c, req)
	if err != nil {
		var validationErr *predictor.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": validationErr.Error()})
			return
		}
		h.log.Errorf("Failed to predict yield: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to predict yield"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

type batchRequest struct {
	Requests []models.PredictionRequest `json:"requests" binding:"required"`
}

type batchItem struct {
	Index  int              `json:"index"`
	Status string           `json:"status"`
	Error  string           `json:"error,omitempty"`
	Result *PredictResponse `json:"result,omitempty"`
}

// PredictBatch runs up to 100 prediction requests with bounded concurrency.
// Items fail independently: one invalid request does not abort the batch.
func (h *predictHandler) PredictBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if len(req.Requests) == 0 || len(req.Requests) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch must contain between 1 and 100 requests"})
		return
	}

	items := make([]batchItem, len(req.Requests))
	sem := make(chan struct{}, batchConcurrency)
	var wg sync.WaitGroup
	for i, r := range req.Requests {
		wg.Add(1)
		go func(i int, r models.PredictionRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp, err := h.predict(c, r)
			if err != nil {
				items[i] = batchItem{Index: i, Status: "error", Error: err.Error()}
				return
			}
			items[i] = batchItem{Index: i, Status: "success", Result: resp}
		}(i, r)
	}
	wg.Wait()

	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (h *predictHandler) predict(c *gin.Context, req models.PredictionRequest) (*PredictResponse, error) {
	result, fallback, err := h.broker.Predict(c.Request.Context(), req)
	if err != nil {
		return nil, err
	}

	resp := &PredictResponse{
		PredictionID: uuid.NewString(),
		Prediction:   result,
		Advisory:     advisory.Compose(result, req.CropType, req.Language),
	}
	go h.storePrediction(resp.PredictionID, req, result, fallback)
	return resp, nil
}

func (h *predictHandler) storePrediction(id string, req models.PredictionRequest, result models.PredictionResult, fallback bool) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		h.log.Errorf("Failed to marshal prediction request %s: %v", id, err)
		return
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		h.log.Errorf("Failed to marshal prediction result %s: %v", id, err)
		return
	}

	record := &models.PredictionRecord{
		ID:        id,
		Request:   types.JSONText(reqJSON),
		Result:    types.JSONText(resultJSON),
		Fallback:  fallback,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.predictionRepo.StorePrediction(record); err != nil {
		h.log.Errorf("Failed to store prediction %s: %v", id, err)
	}
}

func (h *predictHandler) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if req.ActualYieldTonsPerHa <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actualYieldTonsPerHa must be positive"})
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	record, err := h.predictionRepo.GetPredictionByID(req.PredictionID)
	if err != nil {
		h.log.Errorf("Failed to look up prediction %s: %v", req.PredictionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit feedback"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "prediction not found"})
		return
	}

	feedback := &models.Feedback{
		PredictionID:         req.PredictionID,
		ActualYieldTonsPerHa: req.ActualYieldTonsPerHa,
		Rating:               req.Rating,
		Comment:              req.Comment,
	}
	if err := h.predictionRepo.CreateFeedback(feedback); err != nil {
		h.log.Errorf("Failed to store feedback for prediction %s: %v", req.PredictionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit feedback"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"feedback": feedback})
}

// Analytics reports aggregate counts over the stored prediction traces,
// including how often the synthesizer answered instead of the model.
func (h *predictHandler) Analytics(c *gin.Context) {
	stats, err := h.predictionRepo.GetPredictionStats()
	if err != nil {
		h.log.Errorf("Failed to aggregate prediction stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate predictions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": stats})
}

// Metadata describes the service capabilities for clients.
func (h *predictHandler) Metadata(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"supportedCrops":       predictor.SupportedCrops(),
		"supportedLanguages":   []string{models.LanguageEnglish, models.LanguageOdia},
		"modelServiceUrl":      h.modelServiceURL,
		"fallbackModelVersion": predictor.FallbackModelVersion,
	})
}

func (h *predictHandler) ListFeedback(c *gin.Context) {
	predictionID := c.Param("id")

	record, err := h.predictionRepo.GetPredictionByID(predictionID)
	if err != nil {
		h.log.Errorf("Failed to look up prediction %s: %v", predictionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feedback"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "prediction not found"})
		return
	}

	feedback, err := h.predictionRepo.ListFeedbackByPrediction(predictionID)
	if err != nil {
		h.log.Errorf("Failed to list feedback for prediction %s: %v", predictionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}
