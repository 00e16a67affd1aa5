// Package extraction pulls structured project details out of article text in
// two oracle rounds. Round two only runs when round one found something.
package extraction

import (
	"context"
	"io"
	"log/slog"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/excerpts"
	"HeadlineScreener/internal/ports"
)

// state of one article's extraction.
type state int

const (
	stateCoreOnly state = iota
	stateCoreAndAdditional
)

// Extractor runs the core and additional extraction rounds.
type Extractor struct {
	oracle       ports.Oracle
	technologies []string
	statuses     []string
	picker       *excerpts.Picker
	logger       *slog.Logger
}

// NewExtractor binds the technology and status vocabularies of one taxonomy.
func NewExtractor(oracle ports.Oracle, technologies, statuses []string, picker *excerpts.Picker, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{
		oracle:       oracle,
		technologies: append([]string(nil), technologies...),
		statuses:     append([]string(nil), statuses...),
		picker:       picker,
		logger:       logger,
	}
}

// Extract returns the merged details for article using text as the source.
// Oracle or parse failures leave the affected round's fields empty.
func (e *Extractor) Extract(ctx context.Context, article domain.Article, text string) domain.ExtractedArticle {
	result := domain.ExtractedArticle{Article: article}
	body, _ := e.picker.Context(ctx, text, article.Title)

	result.Core = e.extractCore(ctx, article.ID, body)

	if next(stateCoreOnly, result.Core) != stateCoreAndAdditional {
		e.logger.Debug("core details empty, skipping additional round", "article", article.ID)
		return result
	}

	result.Additional = e.extractAdditional(ctx, article.ID, body)
	result.Escalated = true
	return result
}

// next advances the per-article state machine.
func next(current state, core domain.CoreDetails) state {
	if current == stateCoreOnly && !core.Empty() {
		return stateCoreAndAdditional
	}
	return current
}

func (e *Extractor) extractCore(ctx context.Context, articleID, body string) domain.CoreDetails {
	fields, err := e.query(ctx, buildCorePrompt(body, e.technologies))
	if err != nil {
		e.logger.Warn("core extraction failed, using empty record",
			"article", articleID, "stage", "core", "error", err)
		return domain.CoreDetails{}
	}

	return domain.CoreDetails{
		Scale:       fields[domain.FieldScale],
		ProjectName: fields[domain.FieldProjectName],
		Timeline:    fields[domain.FieldTimeline],
		Technology:  fields[domain.FieldTechnology],
	}
}

func (e *Extractor) extractAdditional(ctx context.Context, articleID, body string) domain.AdditionalDetails {
	fields, err := e.query(ctx, buildAdditionalPrompt(body, e.statuses))
	if err != nil {
		e.logger.Warn("additional extraction failed, using empty record",
			"article", articleID, "stage", "additional", "error", err)
		return domain.AdditionalDetails{}
	}

	return domain.AdditionalDetails{
		Company:           fields[domain.FieldCompany],
		ProjectsMentioned: fields[domain.FieldProjectsMentioned],
		Partners:          fields[domain.FieldPartners],
		Continent:         fields[domain.FieldContinent],
		Country:           fields[domain.FieldCountry],
		ProjectStatus:     fields[domain.FieldProjectStatus],
		Irrelevant:        truthy(fields[domain.FieldIrrelevant]),
	}
}

func (e *Extractor) query(ctx context.Context, prompt string) (map[string]string, error) {
	raw, err := e.oracle.Complete(ctx, prompt, domain.FormatJSON)
	if err != nil {
		return nil, err
	}
	return parseFields(raw)
}
