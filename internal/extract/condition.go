package extract

import "strings"

// GeneralHealth is the fallback condition when no rule matches a query
const GeneralHealth = "general health"

// conditionRule maps trigger keywords to the condition they indicate
type conditionRule struct {
	condition string
	keywords  []string
}

// Rule order matters: the first rule with any matching keyword wins, so
// broad triggers like "skin" sit below the specific complaints.
var conditionRules = []conditionRule{
	{"headache", []string{"headache", "head pain", "migraine", "head hurts"}},
	{"fever", []string{"fever", "temperature", "feverish"}},
	{"cold", []string{"cold", "runny nose", "congestion", "stuffy"}},
	{"cough", []string{"cough", "coughing"}},
	{"nausea", []string{"nausea", "nauseous", "vomit", "queasy"}},
	{"sore throat", []string{"sore throat", "throat pain", "throat hurts"}},
	{"indigestion", []string{"indigestion", "bloating", "gas", "acidity", "heartburn"}},
	{"anxiety", []string{"anxiety", "anxious", "nervous", "panic"}},
	{"stress", []string{"stress", "stressed", "tension"}},
	{"insomnia", []string{"insomnia", "sleep", "sleepless"}},
	{"fatigue", []string{"fatigue", "tired", "exhausted", "energy"}},
	{"joint pain", []string{"joint pain", "arthritis", "joints"}},
	{"back pain", []string{"back pain", "backache"}},
	{"constipation", []string{"constipation", "constipated"}},
	{"diarrhea", []string{"diarrhea", "loose stool"}},
	{"motion sickness", []string{"motion sickness", "car sick", "carsick", "travel sickness", "sea sick", "seasick"}},
	{"menstrual cramps", []string{"menstrual", "period pain", "period cramps", "cramps", "dysmenorrhea"}},
	{"muscle pain", []string{"muscle pain", "muscle ache", "sore muscles"}},
	{"inflammation", []string{"inflammation", "swelling", "inflamed"}},
	{"skin issues", []string{"rash", "eczema", "skin", "acne", "pimples"}},
	{"burns", []string{"burn", "burnt", "scalded"}},
	{"sinus", []string{"sinus", "sinusitis"}},
	{"ear pain", []string{"ear pain", "earache"}},
	{"eye strain", []string{"eye strain", "tired eyes"}},
	{"diabetes", []string{"diabetes", "blood sugar"}},
	{"high blood pressure", []string{"blood pressure", "hypertension"}},
	{"immunity", []string{"immunity", "immune"}},
	{"hair loss", []string{"hair loss", "hair fall"}},
	{"weight loss", []string{"weight loss", "lose weight"}},
	{"depression", []string{"depression", "depressed"}},
	{"uti", []string{"uti", "urinary", "bladder"}},
	{"wound", []string{"wound", "cut", "bleeding", "injury", "punched", "hit", "bruise"}},
	{"bruise", []string{"bruise", "bruised", "swelling", "black eye"}},
}

// ConditionClassifier infers which condition a health query is about.
// Used as the fallback when the caller does not name one explicitly.
type ConditionClassifier struct{}

// NewConditionClassifier creates a new classifier
func NewConditionClassifier() *ConditionClassifier {
	return &ConditionClassifier{}
}

// Classify returns the condition implied by the query, or GeneralHealth
// when nothing matches. Keyword matching is case-insensitive substring.
func (c *ConditionClassifier) Classify(query string) string {
	lower := strings.ToLower(query)
	for _, rule := range conditionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.condition
			}
		}
	}
	return GeneralHealth
}
