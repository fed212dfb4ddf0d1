// Package i18n provides the static bilingual phrase dictionary: a pure
// key -> localized string lookup with identity fallback. English and Odia
// are supported; an unknown key is returned unchanged.
package i18n

import "agroyield/internal/models"

var phrases = map[string]map[string]string{
	models.LanguageEnglish: {
		"advisory.none": "No advisory available.",

		"advisory.irrigation.increase": "Moisture stress expected. Increase irrigation to 8-10 events of 50-60mm, focusing on tillering and flowering. Irrigate early morning or evening.",
		"advisory.irrigation.reduce":   "Excess water expected. Reduce irrigation frequency, monitor for waterlogging and ensure field drainage.",
		"advisory.irrigation.maintain": "Maintain the regular schedule of about 8 irrigation events of 40-50mm. Monitor soil moisture at 15cm depth.",

		"advisory.fertilizer.plan":    "Apply %.0f kg/ha nitrogen, %.0f kg/ha phosphorus and %.0f kg/ha potassium, split into %d doses.",
		"advisory.fertilizer.deficit": "Nutrient deficit likely. Apply %.0f kg/ha nitrogen, %.0f kg/ha phosphorus and %.0f kg/ha potassium, split into %d doses, after a soil test.",

		"advisory.pest.high":    "High pest and disease risk. Monitor fields closely, apply preventive spray if conditions persist and use pheromone traps. Follow integrated pest management.",
		"advisory.pest.routine": "Routine monitoring is sufficient. Maintain field hygiene and use integrated pest management practices.",

		"advisory.general.low":     "Predicted yield is below average for this crop. Significant improvement is possible through soil testing, balanced nutrition and timely operations.",
		"advisory.general.medium":  "Predicted yield is around average. Moderate improvement is possible through precision nutrient management and pest control.",
		"advisory.general.high":    "Predicted yield is above average. Maintain current practices and focus on cost optimization.",
		"advisory.general.caution": "Prediction confidence is limited; consult local agricultural extension services before major decisions.",
	},
	models.LanguageOdia: {
		"advisory.none": "କୌଣସି ପରାମର୍ଶ ଉପଲବ୍ଧ ନାହିଁ।",

		"advisory.irrigation.increase": "ଆର୍ଦ୍ରତା ଅଭାବ ଆଶଙ୍କା ଅଛି। ଜଳସେଚନ ବୃଦ୍ଧି କରନ୍ତୁ: ୫୦-୬୦ ମିଲିମିଟରର ୮-୧୦ ଥର, ସକାଳ କିମ୍ବା ସନ୍ଧ୍ୟାରେ।",
		"advisory.irrigation.reduce":   "ଅଧିକ ପାଣି ଆଶଙ୍କା ଅଛି। ଜଳସେଚନ କମ କରନ୍ତୁ ଏବଂ ଜମିରେ ପାଣି ଜମିବା ଉପରେ ନଜର ରଖନ୍ତୁ।",
		"advisory.irrigation.maintain": "ନିୟମିତ ଜଳସେଚନ ବଜାୟ ରଖନ୍ତୁ: ୪୦-୫୦ ମିଲିମିଟରର ପ୍ରାୟ ୮ ଥର। ୧୫ ସେଣ୍ଟିମିଟର ଗଭୀରତାରେ ମାଟିର ଆର୍ଦ୍ରତା ଉପରେ ନଜର ରଖନ୍ତୁ।",

		"advisory.fertilizer.plan":    "%.0f କିଗ୍ରା/ହେକ୍ଟର ଯବକ୍ଷାରଜାନ, %.0f କିଗ୍ରା/ହେକ୍ଟର ଫସଫରସ ଏବଂ %.0f କିଗ୍ରା/ହେକ୍ଟର ପୋଟାଶ ସାର %d ଭାଗରେ ପ୍ରୟୋଗ କରନ୍ତୁ।",
		"advisory.fertilizer.deficit": "ପୋଷକ ଅଭାବ ସମ୍ଭାବନା ଅଛି। ମାଟି ପରୀକ୍ଷା ପରେ %.0f କିଗ୍ରା/ହେକ୍ଟର ଯବକ୍ଷାରଜାନ, %.0f କିଗ୍ରା/ହେକ୍ଟର ଫସଫରସ ଏବଂ %.0f କିଗ୍ରା/ହେକ୍ଟର ପୋଟାଶ ସାର %d ଭାଗରେ ପ୍ରୟୋଗ କରନ୍ତୁ।",

		"advisory.pest.high":    "ପୋକ ଓ ରୋଗର ଅଧିକ ଆଶଙ୍କା। ଜମି ଉପରେ ନିୟମିତ ନଜର ରଖନ୍ତୁ ଏବଂ ଆବଶ୍ୟକ ହେଲେ ପ୍ରତିଷେଧକ ସ୍ପ୍ରେ ପ୍ରୟୋଗ କରନ୍ତୁ।",
		"advisory.pest.routine": "ନିୟମିତ ନଜର ଯଥେଷ୍ଟ। ଜମି ସଫା ରଖନ୍ତୁ ଏବଂ ସମନ୍ୱିତ ପୋକ ପରିଚାଳନା ଅନୁସରଣ କରନ୍ତୁ।",

		"advisory.general.low":     "ଆଶା କରାଯାଉଥିବା ଅମଳ ହାରାହାରିରୁ କମ। ମାଟି ପରୀକ୍ଷା, ସନ୍ତୁଳିତ ସାର ଏବଂ ସମୟୋଚିତ କାମ ଦ୍ୱାରା ଅମଳ ବୃଦ୍ଧି ସମ୍ଭବ।",
		"advisory.general.medium":  "ଆଶା କରାଯାଉଥିବା ଅମଳ ହାରାହାରି ସ୍ତରରେ ଅଛି। ସଠିକ୍ ସାର ପରିଚାଳନା ଦ୍ୱାରା ଅମଳ ବୃଦ୍ଧି ସମ୍ଭବ।",
		"advisory.general.high":    "ଆଶା କରାଯାଉଥିବା ଅମଳ ହାରାହାରିରୁ ଅଧିକ। ବର୍ତ୍ତମାନର ଅଭ୍ୟାସ ବଜାୟ ରଖନ୍ତୁ।",
		"advisory.general.caution": "ପୂର୍ବାନୁମାନର ବିଶ୍ୱାସ ସୀମିତ; ବଡ଼ ନିଷ୍ପତ୍ତି ପୂର୍ବରୁ ସ୍ଥାନୀୟ କୃଷି ବିଶେଷଜ୍ଞଙ୍କ ପରାମର୍ଶ ନିଅନ୍ତୁ।",
	},
}

// T resolves a phrase key for a language. Unknown languages fall back to
// English; an unknown key is returned as-is (identity fallback).
func T(language, key string) string {
	if dict, ok := phrases[language]; ok {
		if phrase, ok := dict[key]; ok {
			return phrase
		}
	}
	if language != models.LanguageEnglish {
		if phrase, ok := phrases[models.LanguageEnglish][key]; ok {
			return phrase
		}
	}
	return key
}
