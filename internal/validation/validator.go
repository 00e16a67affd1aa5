// Package validation cross-checks extracted fields against the article text
// and flags the ones the text does not appear to support.
package validation

import (
	"strings"

	"HeadlineScreener/internal/domain"
)

const (
	// DefaultThreshold separates supported from unsupported field scores.
	DefaultThreshold = 80.0

	flagPrefix = "CHECK RESULTS: "
)

// Validator scores extracted fields with PartialRatio.
type Validator struct {
	threshold    float64
	technologies []string
}

// NewValidator binds the technology vocabulary used to expand abbreviations.
// A non-positive threshold selects DefaultThreshold.
func NewValidator(threshold float64, technologies []string) *Validator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Validator{
		threshold:    threshold,
		technologies: append([]string(nil), technologies...),
	}
}

// Validate scores every non-empty field of e against text.
func (v *Validator) Validate(e domain.ExtractedArticle, text string) domain.ValidationResult {
	result := domain.ValidationResult{Scores: map[string]float64{}}
	source := strings.ToLower(text)

	for _, field := range e.Fields() {
		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}
		if field.Name == domain.FieldTechnology {
			value = strings.TrimSpace(domain.ExpandTechnology(value, v.technologies))
		}

		score := PartialRatio(strings.ToLower(value), source)
		result.Scores[field.Name] = score
		if score < v.threshold {
			result.Flagged = append(result.Flagged, field.Name)
		}
	}

	if len(result.Flagged) > 0 {
		result.Flag = flagPrefix + strings.Join(result.Flagged, ", ")
	}
	return result
}
