// Package advisory derives per-category farming recommendations from a
// prediction result. Composition is a pure function: no I/O, deterministic,
// idempotent for identical inputs.
package advisory

import (
	"fmt"
	"strings"

	"agroyield/internal/i18n"
	"agroyield/internal/models"
)

const lowConfidence = 0.5

// npkPlan holds recommended fertilizer doses in kg/ha and the number of
// split applications.
type npkPlan struct {
	nitrogen   float64
	phosphorus float64
	potassium  float64
	splits     int
}

var fertilizerPlans = map[string]npkPlan{
	"rice":  {nitrogen: 120, phosphorus: 60, potassium: 40, splits: 3},
	"wheat": {nitrogen: 100, phosphorus: 50, potassium: 30, splits: 2},
	"maize": {nitrogen: 110, phosphorus: 55, potassium: 35, splits: 2},
}

var defaultPlan = fertilizerPlans["rice"]

// yieldThresholds separate below-average and above-average yields (t/ha).
type yieldThresholds struct {
	low  float64
	high float64
}

var cropThresholds = map[string]yieldThresholds{
	"rice":      {low: 2.0, high: 3.5},
	"wheat":     {low: 1.5, high: 2.5},
	"maize":     {low: 2.5, high: 4.5},
	"sugarcane": {low: 55, high: 75},
}

var defaultThresholds = cropThresholds["rice"]

var moistureRisks = []string{"moisture_stress", "drought_risk", "low_rainfall"}
var excessWaterRisks = []string{"waterlogging_risk", "excess_rainfall"}
var pestRisks = []string{"pest_pressure", "high_humidity", "excess_rainfall"}

// Compose fills all four advisory slots from the rule table. Slots that no
// rule resolves carry the explicit "no advisory available" phrase. The crop
// type is case-insensitive; rule tables are keyed lowercase.
func Compose(result models.PredictionResult, cropType, language string) models.Advisory {
	cropType = strings.ToLower(strings.TrimSpace(cropType))
	advisory := models.Advisory{
		Irrigation:  irrigationAdvice(result, language),
		Fertilizer:  fertilizerAdvice(result, cropType, language),
		PestControl: pestAdvice(result, language),
		General:     generalAdvice(result, cropType, language),
	}

	placeholder := i18n.T(language, "advisory.none")
	if advisory.Irrigation == "" {
		advisory.Irrigation = placeholder
	}
	if advisory.Fertilizer == "" {
		advisory.Fertilizer = placeholder
	}
	if advisory.PestControl == "" {
		advisory.PestControl = placeholder
	}
	if advisory.General == "" {
		advisory.General = placeholder
	}
	return advisory
}

func irrigationAdvice(result models.PredictionResult, language string) string {
	switch {
	case hasAny(result.RiskFactors, moistureRisks):
		return i18n.T(language, "advisory.irrigation.increase")
	case hasAny(result.RiskFactors, excessWaterRisks):
		return i18n.T(language, "advisory.irrigation.reduce")
	default:
		return i18n.T(language, "advisory.irrigation.maintain")
	}
}

func fertilizerAdvice(result models.PredictionResult, cropType, language string) string {
	plan, ok := fertilizerPlans[cropType]
	if !ok {
		plan = defaultPlan
	}

	key := "advisory.fertilizer.plan"
	if hasAny(result.RiskFactors, []string{"nutrient_deficit"}) {
		// Low nutrition pushes the nitrogen dose up, same as a low
		// organic-matter soil reading would.
		plan.nitrogen += 20
		key = "advisory.fertilizer.deficit"
	}
	return fmt.Sprintf(i18n.T(language, key), plan.nitrogen, plan.phosphorus, plan.potassium, plan.splits)
}

func pestAdvice(result models.PredictionResult, language string) string {
	if hasAny(result.RiskFactors, pestRisks) {
		return i18n.T(language, "advisory.pest.high")
	}
	return i18n.T(language, "advisory.pest.routine")
}

func generalAdvice(result models.PredictionResult, cropType, language string) string {
	thresholds, ok := cropThresholds[cropType]
	if !ok {
		thresholds = defaultThresholds
	}

	var key string
	switch {
	case result.YieldTonsPerHa < thresholds.low:
		key = "advisory.general.low"
	case result.YieldTonsPerHa < thresholds.high:
		key = "advisory.general.medium"
	default:
		key = "advisory.general.high"
	}

	advice := i18n.T(language, key)
	if result.ConfidenceScore < lowConfidence {
		advice += " " + i18n.T(language, "advisory.general.caution")
	}
	return advice
}

func hasAny(riskFactors, candidates []string) bool {
	for _, risk := range riskFactors {
		for _, candidate := range candidates {
			if risk == candidate {
				return true
			}
		}
	}
	return false
}
