package usecase

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/excerpts"
	"HeadlineScreener/internal/extraction"
	"HeadlineScreener/internal/metrics"
	"HeadlineScreener/internal/ports"
	"HeadlineScreener/internal/relevance"
	"HeadlineScreener/internal/staging"
	"HeadlineScreener/internal/validation"
)

// ScreenerDeps wires one taxonomy's collaborators into a Screener.
type ScreenerDeps struct {
	Taxonomy    domain.Taxonomy
	Oracle      ports.Oracle
	Picker      *excerpts.Picker
	Fetcher     ports.TextFetcher
	Metrics     *metrics.Metrics
	Threshold   float64
	Concurrency int
	Logger      *slog.Logger

	// KnownTechnologies extends the vocabulary that expands abbreviated
	// technology values during validation, e.g. with other taxonomies' entries.
	KnownTechnologies []string
}

// Screener runs gate, extraction, bucketing and validation for one taxonomy.
type Screener struct {
	taxonomy    domain.Taxonomy
	gate        *relevance.Gate
	extractor   *extraction.Extractor
	bucketer    *staging.Bucketer
	validator   *validation.Validator
	fetcher     ports.TextFetcher
	concurrency int
	logger      *slog.Logger
}

// Outcome is the tiered result of screening one batch.
type Outcome struct {
	Stage1     []domain.ExtractedArticle
	Stage2     []domain.ValidatedArticle
	Irrelevant []domain.Article
	All        []domain.AuditRow
}

type articleOutcome struct {
	done      bool
	verdict   domain.RelevanceVerdict
	extracted domain.ExtractedArticle
}

// NewScreener builds the per-taxonomy core. Concurrency above one screens
// that many articles at once; each article's own oracle calls stay sequential.
func NewScreener(deps ScreenerDeps) *Screener {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	tax := deps.Taxonomy.Clone()

	return &Screener{
		taxonomy: tax,
		gate: relevance.NewGate(
			deps.Metrics.InstrumentOracle(deps.Oracle, metrics.StageRelevance),
			tax.Questions, deps.Picker, logger.With("component", "relevance"),
		),
		extractor: extraction.NewExtractor(
			deps.Metrics.InstrumentOracle(deps.Oracle, metrics.StageExtraction),
			tax.Technologies, tax.Statuses, deps.Picker, logger.With("component", "extraction"),
		),
		bucketer:    staging.NewBucketer(),
		validator:   validation.NewValidator(deps.Threshold, expansionVocabulary(tax.Technologies, deps.KnownTechnologies)),
		fetcher:     deps.Fetcher,
		concurrency: concurrency,
		logger:      logger,
	}
}

// expansionVocabulary lists own entries first so they win on a shared short form.
func expansionVocabulary(own, known []string) []string {
	out := append([]string(nil), own...)
	seen := make(map[string]struct{}, len(own))
	for _, t := range own {
		seen[t] = struct{}{}
	}
	for _, t := range known {
		if _, dup := seen[t]; !dup {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Taxonomy returns the name of the taxonomy this screener applies.
func (s *Screener) Taxonomy() string {
	return s.taxonomy.Name
}

// Screen processes articles in input order. Oracle failures degrade to default
// records and never fail the batch. Cancelling ctx stops screening further
// articles; the partial outcome is returned with ctx.Err().
func (s *Screener) Screen(ctx context.Context, articles []domain.Article) (Outcome, error) {
	outcomes := make([]articleOutcome, len(articles))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, article := range articles {
		if ctx.Err() != nil {
			break
		}
		i, article := i, article
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			outcomes[i] = s.screenOne(ctx, article)
			return nil
		})
	}
	_ = g.Wait()

	var (
		gateIrrelevant []domain.Article
		extracted      []domain.ExtractedArticle
	)
	for _, o := range outcomes {
		if !o.done {
			continue
		}
		if o.verdict.Disqualified {
			gateIrrelevant = append(gateIrrelevant, o.extracted.Article)
			continue
		}
		extracted = append(extracted, o.extracted)
	}

	partition := s.bucketer.Partition(gateIrrelevant, extracted)
	out := Outcome{
		Stage1:     partition.Stage1,
		Irrelevant: partition.Irrelevant,
		All:        s.bucketer.Audit(partition),
	}
	for _, e := range partition.Stage2 {
		out.Stage2 = append(out.Stage2, domain.ValidatedArticle{
			ExtractedArticle: e,
			Validation:       s.validator.Validate(e, e.Article.Body()),
		})
	}

	return out, ctx.Err()
}

func (s *Screener) screenOne(ctx context.Context, article domain.Article) articleOutcome {
	verdict := s.gate.Evaluate(ctx, article)
	if verdict.Disqualified {
		return articleOutcome{done: true, verdict: verdict, extracted: domain.ExtractedArticle{Article: article}}
	}

	article = s.withFullText(ctx, article)
	return articleOutcome{
		done:      true,
		verdict:   verdict,
		extracted: s.extractor.Extract(ctx, article, article.Body()),
	}
}

func (s *Screener) withFullText(ctx context.Context, article domain.Article) domain.Article {
	if s.fetcher == nil || article.FullText != "" {
		return article
	}
	text, err := s.fetcher.FetchText(ctx, article)
	if err != nil {
		s.logger.Warn("full text unavailable, using feed text", "article", article.ID, "url", article.URL, "error", err)
		return article
	}
	article.FullText = text
	return article
}
