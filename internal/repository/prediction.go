package repository

import (
	"database/sql"
	"errors"

	"agroyield/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type PredictionRepository interface {
	StorePrediction(record *models.PredictionRecord) error
	GetPredictionByID(id string) (*models.PredictionRecord, error)
	CreateFeedback(feedback *models.Feedback) error
	ListFeedbackByPrediction(predictionID string) ([]*models.Feedback, error)
	GetPredictionStats() (*models.PredictionStats, error)
}

type predictionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPredictionRepository(db *sqlx.DB, logger *zap.Logger) PredictionRepository {
	return &predictionRepository{db: db, logger: logger}
}

func (r *predictionRepository) StorePrediction(record *models.PredictionRecord) error {
	query := `INSERT INTO predictions (id, request, result, fallback)
	          VALUES ($1, $2, $3, $4) RETURNING created_at`
	return r.db.QueryRowx(query,
		record.ID, record.Request, record.Result, record.Fallback,
	).Scan(&record.CreatedAt)
}

func (r *predictionRepository) GetPredictionByID(id string) (*models.PredictionRecord, error) {
	var record models.PredictionRecord
	query := `SELECT id, request, result, fallback, created_at FROM predictions WHERE id = $1`
	err := r.db.Get(&record, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Prediction not found
		}
		return nil, err
	}
	return &record, nil
}

func (r *predictionRepository) CreateFeedback(feedback *models.Feedback) error {
	query := `INSERT INTO feedback (prediction_id, actual_yield_t_ha, rating, comment)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowx(query,
		feedback.PredictionID, feedback.ActualYieldTonsPerHa, feedback.Rating, feedback.Comment,
	).Scan(&feedback.ID, &feedback.CreatedAt)
}

// GetPredictionStats aggregates the stored traces for the analytics
// endpoint. Runs over the whole table; fine at advisory-service scale.
func (r *predictionRepository) GetPredictionStats() (*models.PredictionStats, error) {
	stats := &models.PredictionStats{}
	err := r.db.QueryRowx(`SELECT COUNT(*), COUNT(*) FILTER (WHERE fallback) FROM predictions`).
		Scan(&stats.TotalPredictions, &stats.FallbackCount)
	if err != nil {
		return nil, err
	}
	err = r.db.QueryRowx(`SELECT COUNT(*), AVG(rating) FROM feedback`).
		Scan(&stats.FeedbackCount, &stats.AverageRating)
	if err != nil {
		return nil, err
	}
	if stats.TotalPredictions > 0 {
		stats.FallbackShare = float64(stats.FallbackCount) / float64(stats.TotalPredictions)
	}
	return stats, nil
}

func (r *predictionRepository) ListFeedbackByPrediction(predictionID string) ([]*models.Feedback, error) {
	feedback := []*models.Feedback{}
	query := `SELECT id, prediction_id, actual_yield_t_ha, rating, comment, created_at
	          FROM feedback WHERE prediction_id = $1 ORDER BY created_at, id`
	if err := r.db.Select(&feedback, query, predictionID); err != nil {
		return nil, err
	}
	return feedback, nil
}
