package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FarmerInputs are optional agronomic parameters supplied with a
// prediction request.
type FarmerInputs struct {
	AreaHectares     *float64 `json:"areaHectares,omitempty"`
	SowingDate       *string  `json:"sowingDate,omitempty"`
	FertilizerN      *float64 `json:"fertilizerN,omitempty"`
	FertilizerP      *float64 `json:"fertilizerP,omitempty"`
	FertilizerK      *float64 `json:"fertilizerK,omitempty"`
	IrrigationEvents *int     `json:"irrigationEvents,omitempty"`
}

type PredictionRequest struct {
	Location     Location      `json:"location"`
	CropType     string        `json:"cropType"`
	Year         int           `json:"year"`
	FarmerInputs *FarmerInputs `json:"farmerInputs,omitempty"`
	Language     string        `json:"language,omitempty"`
}

// PredictionResult is returned for every prediction, fallback included.
// All fields are populated on every path.
type PredictionResult struct {
	YieldTonsPerHa      float64    `json:"yieldTonsPerHa"`
	ConfidenceScore     float64    `json:"confidenceScore"`
	YieldRange          [2]float64 `json:"yieldRange"`
	RiskFactors         []string   `json:"riskFactors"`
	ExpectedHarvestDate string     `json:"expectedHarvestDate"`
	ModelVersion        string     `json:"modelVersion"`
	GeneratedAt         time.Time  `json:"generatedAt"`
}

// Advisory holds per-category recommendations. Each slot is a non-empty
// localized string; unresolved slots carry the "no advisory" phrase.
type Advisory struct {
	Irrigation  string `json:"irrigation"`
	Fertilizer  string `json:"fertilizer"`
	PestControl string `json:"pestControl"`
	General     string `json:"general"`
}

// PredictionRecord is the stored trace of a served prediction.
type PredictionRecord struct {
	ID        string         `db:"id" json:"id"`
	Request   types.JSONText `db:"request" json:"request"`
	Result    types.JSONText `db:"result" json:"result"`
	Fallback  bool           `db:"fallback" json:"fallback"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

// PredictionStats aggregates the stored prediction traces: how many were
// served, how often the synthesizer answered, and how farmers rated them.
type PredictionStats struct {
	TotalPredictions int      `json:"totalPredictions"`
	FallbackCount    int      `json:"fallbackCount"`
	FallbackShare    float64  `json:"fallbackShare"`
	FeedbackCount    int      `json:"feedbackCount"`
	AverageRating    *float64 `json:"averageRating,omitempty"`
}

type Feedback struct {
	ID                   int64     `db:"id" json:"id"`
	PredictionID         string    `db:"prediction_id" json:"predictionId"`
	ActualYieldTonsPerHa float64   `db:"actual_yield_t_ha" json:"actualYieldTonsPerHa"`
	Rating               *int      `db:"rating" json:"rating,omitempty"`
	Comment              *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
}
