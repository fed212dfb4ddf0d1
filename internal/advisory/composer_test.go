package advisory

import (
	"testing"

	"agroyield/internal/i18n"
	"agroyield/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(yield, confidence float64, risks ...string) models.PredictionResult {
	if risks == nil {
		risks = []string{}
	}
	return models.PredictionResult{
		YieldTonsPerHa:      yield,
		ConfidenceScore:     confidence,
		YieldRange:          [2]float64{yield * 0.8, yield * 1.2},
		RiskFactors:         risks,
		ExpectedHarvestDate: "2025-11-20",
		ModelVersion:        "xgb-2.1.0",
	}
}

func TestComposeFillsAllSlots(t *testing.T) {
	cases := []models.PredictionResult{
		result(3.0, 0.8),
		result(0.5, 0.1, "moisture_stress", "pest_pressure", "nutrient_deficit"),
		result(90, 0.95, "waterlogging_risk"),
	}
	for _, res := range cases {
		for _, language := range []string{"en", "or"} {
			advisory := Compose(res, "rice", language)
			assert.NotEmpty(t, advisory.Irrigation)
			assert.NotEmpty(t, advisory.Fertilizer)
			assert.NotEmpty(t, advisory.PestControl)
			assert.NotEmpty(t, advisory.General)
		}
	}
}

func TestComposeIdempotent(t *testing.T) {
	res := result(2.8, 0.72, "moisture_stress")
	first := Compose(res, "rice", "en")
	second := Compose(res, "rice", "en")
	assert.Equal(t, first, second)
}

func TestComposeIrrigationRouting(t *testing.T) {
	t.Run("moisture stress increases irrigation", func(t *testing.T) {
		advisory := Compose(result(3.0, 0.8, "moisture_stress"), "rice", "en")
		assert.Equal(t, i18n.T("en", "advisory.irrigation.increase"), advisory.Irrigation)
	})

	t.Run("excess water reduces irrigation", func(t *testing.T) {
		advisory := Compose(result(3.0, 0.8, "waterlogging_risk"), "rice", "en")
		assert.Equal(t, i18n.T("en", "advisory.irrigation.reduce"), advisory.Irrigation)
	})

	t.Run("no water risk keeps schedule", func(t *testing.T) {
		advisory := Compose(result(3.0, 0.8), "rice", "en")
		assert.Equal(t, i18n.T("en", "advisory.irrigation.maintain"), advisory.Irrigation)
	})
}

func TestComposeFertilizer(t *testing.T) {
	t.Run("standard plan", func(t *testing.T) {
		advisory := Compose(result(3.0, 0.8), "rice", "en")
		assert.Contains(t, advisory.Fertilizer, "120")
		assert.Contains(t, advisory.Fertilizer, "60")
		assert.Contains(t, advisory.Fertilizer, "40")
	})

	t.Run("nutrient deficit raises nitrogen", func(t *testing.T) {
		advisory := Compose(result(3.0, 0.8, "nutrient_deficit"), "rice", "en")
		assert.Contains(t, advisory.Fertilizer, "140")
		assert.Contains(t, advisory.Fertilizer, "soil test")
	})

	t.Run("unknown crop uses default plan", func(t *testing.T) {
		known := Compose(result(3.0, 0.8), "rice", "en")
		unknown := Compose(result(3.0, 0.8), "millet", "en")
		assert.Equal(t, known.Fertilizer, unknown.Fertilizer)
	})
}

func TestComposePestControl(t *testing.T) {
	high := Compose(result(3.0, 0.8, "pest_pressure"), "rice", "en")
	assert.Equal(t, i18n.T("en", "advisory.pest.high"), high.PestControl)

	routine := Compose(result(3.0, 0.8), "rice", "en")
	assert.Equal(t, i18n.T("en", "advisory.pest.routine"), routine.PestControl)
}

func TestComposeGeneralByYieldBand(t *testing.T) {
	low := Compose(result(1.5, 0.8), "rice", "en")
	assert.Equal(t, i18n.T("en", "advisory.general.low"), low.General)

	medium := Compose(result(3.0, 0.8), "rice", "en")
	assert.Equal(t, i18n.T("en", "advisory.general.medium"), medium.General)

	high := Compose(result(4.0, 0.8), "rice", "en")
	assert.Equal(t, i18n.T("en", "advisory.general.high"), high.General)

	// Sugarcane yields live on a different scale.
	cane := Compose(result(80, 0.8), "sugarcane", "en")
	assert.Equal(t, i18n.T("en", "advisory.general.high"), cane.General)
}

func TestComposeLowConfidenceCaution(t *testing.T) {
	shaky := Compose(result(3.0, 0.4), "rice", "en")
	assert.Contains(t, shaky.General, i18n.T("en", "advisory.general.caution"))

	confident := Compose(result(3.0, 0.8), "rice", "en")
	assert.NotContains(t, confident.General, i18n.T("en", "advisory.general.caution"))
}

func TestComposeOdiaLocalization(t *testing.T) {
	en := Compose(result(3.0, 0.8, "moisture_stress"), "rice", "en")
	or := Compose(result(3.0, 0.8, "moisture_stress"), "rice", "or")

	require.NotEqual(t, en.Irrigation, or.Irrigation)
	assert.Equal(t, i18n.T("or", "advisory.irrigation.increase"), or.Irrigation)
	assert.NotEmpty(t, or.Fertilizer)
	assert.NotEmpty(t, or.General)
}

func TestComposeCropTypeCaseInsensitive(t *testing.T) {
	res := result(3.0, 0.8)

	lower := Compose(res, "wheat", "en")
	mixed := Compose(res, " Wheat ", "en")
	require.Equal(t, lower, mixed)

	// 3.0 t/ha is above wheat's high threshold; the rice table would call
	// it medium. A miscased crop must not fall through to the defaults.
	assert.Equal(t, i18n.T("en", "advisory.general.high"), mixed.General)
	assert.Contains(t, mixed.Fertilizer, "100")
}

func TestComposeUnknownLanguageFallsBackToEnglish(t *testing.T) {
	en := Compose(result(3.0, 0.8), "rice", "en")
	fr := Compose(result(3.0, 0.8), "rice", "fr")
	assert.Equal(t, en, fr)
}
