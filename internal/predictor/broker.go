package predictor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agroyield/internal/metrics"
	"agroyield/internal/models"

	"go.uber.org/zap"
)

// ValidationError reports a rejected prediction request field. Malformed
// input fails fast; the fallback only covers availability failures.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

const (
	minPredictionYear = 2000
	yearsAheadAllowed = 5
	failureTimeout    = "timeout"
	failureTransport  = "transport"
	failureMalformed  = "malformed_response"
)

// Broker resolves prediction requests. It delegates to the external model
// service under a hard deadline and answers from the local synthesizer on
// any availability failure, so a valid request always gets a complete
// result.
type Broker struct {
	client  *Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewBroker(client *Client, timeout time.Duration, logger *zap.Logger) *Broker {
	return &Broker{client: client, timeout: timeout, logger: logger}
}

// Predict validates the request, attempts upstream delegation, and falls
// back locally if the model service is slow, unreachable or malformed.
// The returned bool reports whether the result was synthesized.
func (b *Broker) Predict(ctx context.Context, request models.PredictionRequest) (models.PredictionResult, bool, error) {
	start := time.Now()
	defer func() {
		metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	}()

	request.CropType = strings.ToLower(strings.TrimSpace(request.CropType))
	if err := validateRequest(request); err != nil {
		metrics.PredictionRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return models.PredictionResult{}, false, err
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	response, err := b.client.Predict(callCtx, request)
	if err != nil {
		b.absorb(request, classifyFailure(callCtx, err), err)
		return b.fallback(request), true, nil
	}

	result, err := normalize(response, request)
	if err != nil {
		b.absorb(request, failureMalformed, err)
		return b.fallback(request), true, nil
	}

	metrics.PredictionRequests.WithLabelValues(metrics.OutcomeUpstream).Inc()
	result.GeneratedAt = time.Now().UTC()
	return result, false, nil
}

func (b *Broker) fallback(request models.PredictionRequest) models.PredictionResult {
	metrics.PredictionRequests.WithLabelValues(metrics.OutcomeFallback).Inc()
	result := Synthesize(request)
	result.GeneratedAt = time.Now().UTC()
	return result
}

// absorb records an availability failure without surfacing it: the caller
// still gets a complete result from the synthesizer.
func (b *Broker) absorb(request models.PredictionRequest, reason string, err error) {
	metrics.UpstreamFailures.WithLabelValues(reason).Inc()
	b.logger.Warn("Model service unavailable, answering from fallback",
		zap.String("reason", reason),
		zap.String("cropType", request.CropType),
		zap.Int("year", request.Year),
		zap.Error(err),
	)
}

func classifyFailure(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return failureTimeout
	}
	if errors.Is(err, ErrUpstreamStatus) || errors.Is(err, ErrUpstreamDecode) {
		return failureMalformed
	}
	return failureTransport
}

func validateRequest(request models.PredictionRequest) error {
	if request.Location.Lat < -90 || request.Location.Lat > 90 {
		return &ValidationError{Field: "location.lat", Reason: "must be between -90 and 90"}
	}
	if request.Location.Lon < -180 || request.Location.Lon > 180 {
		return &ValidationError{Field: "location.lon", Reason: "must be between -180 and 180"}
	}
	if request.CropType == "" {
		return &ValidationError{Field: "cropType", Reason: "must not be blank"}
	}
	maxYear := time.Now().Year() + yearsAheadAllowed
	if request.Year < minPredictionYear || request.Year > maxYear {
		return &ValidationError{Field: "year", Reason: fmt.Sprintf("must be between %d and %d", minPredictionYear, maxYear)}
	}
	if request.Language != "" && request.Language != models.LanguageEnglish && request.Language != models.LanguageOdia {
		return &ValidationError{Field: "language", Reason: "must be \"en\" or \"or\""}
	}
	return validateFarmerInputs(request.FarmerInputs)
}

func validateFarmerInputs(inputs *models.FarmerInputs) error {
	if inputs == nil {
		return nil
	}
	if inputs.AreaHectares != nil && *inputs.AreaHectares <= 0 {
		return &ValidationError{Field: "farmerInputs.areaHectares", Reason: "must be greater than zero"}
	}
	if inputs.SowingDate != nil {
		if _, err := time.Parse("2006-01-02", *inputs.SowingDate); err != nil {
			return &ValidationError{Field: "farmerInputs.sowingDate", Reason: "must be formatted YYYY-MM-DD"}
		}
	}
	for field, value := range map[string]*float64{
		"farmerInputs.fertilizerN": inputs.FertilizerN,
		"farmerInputs.fertilizerP": inputs.FertilizerP,
		"farmerInputs.fertilizerK": inputs.FertilizerK,
	} {
		if value != nil && *value < 0 {
			return &ValidationError{Field: field, Reason: "must not be negative"}
		}
	}
	if inputs.IrrigationEvents != nil && *inputs.IrrigationEvents < 0 {
		return &ValidationError{Field: "farmerInputs.irrigationEvents", Reason: "must not be negative"}
	}
	return nil
}

// normalize checks an upstream response against the result invariants and
// fills derivable optional fields. A response that violates the numeric
// invariants is treated as an availability failure, never surfaced raw.
func normalize(response *ModelResponse, request models.PredictionRequest) (models.PredictionResult, error) {
	if response.PredictedYieldTHa <= 0 {
		return models.PredictionResult{}, fmt.Errorf("upstream yield %.2f out of range", response.PredictedYieldTHa)
	}
	if response.ConfidenceScore < 0 || response.ConfidenceScore > 1 {
		return models.PredictionResult{}, fmt.Errorf("upstream confidence %.3f out of range", response.ConfidenceScore)
	}

	yield := response.PredictedYieldTHa
	var yieldRange [2]float64
	switch len(response.PredictedYieldRangeTHa) {
	case 0:
		// Interval from model uncertainty, as the model service itself
		// derives it when residuals are unavailable.
		stdError := yield * (1 - response.ConfidenceScore) * 0.5
		low := yield - 1.96*stdError
		if low < 0 {
			low = 0
		}
		yieldRange = [2]float64{low, yield + 1.96*stdError}
	case 2:
		yieldRange = [2]float64{response.PredictedYieldRangeTHa[0], response.PredictedYieldRangeTHa[1]}
		if yieldRange[0] > yield || yieldRange[1] < yield {
			return models.PredictionResult{}, fmt.Errorf("upstream range [%.2f, %.2f] does not bracket yield %.2f",
				yieldRange[0], yieldRange[1], yield)
		}
	default:
		return models.PredictionResult{}, fmt.Errorf("upstream range has %d bounds", len(response.PredictedYieldRangeTHa))
	}

	riskFactors := response.RiskFactors
	if riskFactors == nil {
		riskFactors = []string{}
	}

	harvest := response.ExpectedHarvestDate
	if harvest == "" {
		harvest = harvestDate(request, profileFor(request.CropType))
	} else if _, err := time.Parse("2006-01-02", harvest); err != nil {
		return models.PredictionResult{}, fmt.Errorf("upstream harvest date %q unparseable", harvest)
	}

	modelVersion := response.ModelVersion
	if modelVersion == "" {
		modelVersion = "unknown"
	}

	return models.PredictionResult{
		YieldTonsPerHa:      yield,
		ConfidenceScore:     response.ConfidenceScore,
		YieldRange:          yieldRange,
		RiskFactors:         riskFactors,
		ExpectedHarvestDate: harvest,
		ModelVersion:        modelVersion,
	}, nil
}
