package intent

import (
	"regexp"

	"medbud/internal/domain"
)

type rule struct {
	re     *regexp.Regexp
	intent domain.Intent
}

// Classifier maps a query to an intent by evaluating a fixed, ordered list of
// keyword patterns. The first matching pattern wins; the priority order is
// part of the contract. Not semantic matching: a query naming two triggers
// resolves to whichever is checked first.
type Classifier struct {
	rules []rule
}

// NewClassifier builds the classifier with the fixed pattern order.
func NewClassifier() *Classifier {
	return &Classifier{rules: []rule{
		{regexp.MustCompile(`(?i)\bside effects\b`), domain.IntentSideEffects},
		{regexp.MustCompile(`(?i)\bcomposition\b`), domain.IntentSaltComposition},
		{regexp.MustCompile(`(?i)\binteractions\b`), domain.IntentDrugInteractions},
		{regexp.MustCompile(`(?i)\bdescription\b`), domain.IntentMedicineDesc},
		{regexp.MustCompile(`(?i)\bdosage\b|\bdose\b`), domain.IntentDosage},
		{regexp.MustCompile(`(?i)\buses\b|\bused for\b`), domain.IntentUses},
		{regexp.MustCompile(`(?i)\bbrand\b|\bgeneric\b`), domain.IntentBrandGeneric},
		{regexp.MustCompile(`(?i)\balternatives\b|\bsubstitutes\b`), domain.IntentAlternatives},
	}}
}

// Classify returns the intent of the query, or IntentGeneral when no pattern
// matches. Total and deterministic for every input.
func (c *Classifier) Classify(query string) domain.Intent {
	for _, r := range c.rules {
		if r.re.MatchString(query) {
			return r.intent
		}
	}
	return domain.IntentGeneral
}
