package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/metrics"
	"HeadlineScreener/internal/ports"
	"HeadlineScreener/internal/taxonomy"
)

// Site names a configured feed site and the taxonomy it is screened against.
type Site struct {
	Name     string
	Taxonomy string
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Repository ports.ArticleRepository
	Sinks      []ports.ResultSink
	Notifier   ports.Notifier
	Screeners  []*Screener
	Sites      []Site
	Lookback   time.Duration
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	NewRunID   func() string
}

// Pipeline implements the per-site screening workflow.
type Pipeline struct {
	source     ports.ArticleSource
	repository ports.ArticleRepository
	sinks      []ports.ResultSink
	notifier   ports.Notifier
	screeners  map[string]*Screener
	sites      []Site
	lookback   time.Duration
	metrics    *metrics.Metrics
	logger     *slog.Logger
	newRunID   func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	newRunID := deps.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}

	screeners := make(map[string]*Screener, len(deps.Screeners))
	for _, s := range deps.Screeners {
		screeners[strings.ToLower(s.Taxonomy())] = s
	}

	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		sinks:      deps.Sinks,
		notifier:   deps.Notifier,
		screeners:  screeners,
		sites:      deps.Sites,
		lookback:   deps.Lookback,
		metrics:    deps.Metrics,
		logger:     logger,
		newRunID:   newRunID,
	}
}

// ProcessAll screens every configured site. A failing site does not stop the others.
func (p *Pipeline) ProcessAll(ctx context.Context, now time.Time) error {
	if len(p.sites) == 0 {
		p.logger.Warn("no sites configured")
		return nil
	}

	var errs []error
	for _, site := range p.sites {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := p.ProcessSite(ctx, site, now); err != nil {
			errs = append(errs, fmt.Errorf("site %s: %w", site.Name, err))
		}
	}
	return errors.Join(errs...)
}

// ProcessSite fetches the site's articles published within the lookback window
// before now, screens them and hands the results to every sink.
func (p *Pipeline) ProcessSite(ctx context.Context, site Site, now time.Time) (domain.Results, error) {
	results, err := p.processSite(ctx, site, now)
	p.metrics.ObserveRun(site.Name, err)
	return results, err
}

func (p *Pipeline) processSite(ctx context.Context, site Site, now time.Time) (domain.Results, error) {
	if p.source == nil {
		return domain.Results{}, fmt.Errorf("article source is not configured")
	}

	var since time.Time
	if p.lookback > 0 {
		since = now.Add(-p.lookback)
	}

	articles, err := p.source.FetchSince(ctx, site.Name, since)
	if err != nil {
		return domain.Results{}, fmt.Errorf("fetch articles: %w", err)
	}

	articles, err = p.prepare(ctx, articles)
	if err != nil {
		return domain.Results{}, err
	}

	results := domain.Results{
		RunID:     p.newRunID(),
		Site:      site.Name,
		Taxonomy:  site.Taxonomy,
		StartedAt: now,
	}
	log := p.logger.With("run_id", results.RunID, "site", site.Name)
	log.Info("screening started", "articles", len(articles), "taxonomy", site.Taxonomy)

	return p.ScreenArticles(ctx, results, articles)
}

// ScreenArticles screens an already prepared batch into results and publishes
// them. Sink and notifier failures are joined; every sink is attempted.
func (p *Pipeline) ScreenArticles(ctx context.Context, results domain.Results, articles []domain.Article) (domain.Results, error) {
	screener, ok := p.screeners[strings.ToLower(results.Taxonomy)]
	if !ok {
		return results, fmt.Errorf("%w: %s", taxonomy.ErrUnknownTaxonomy, results.Taxonomy)
	}

	outcome, err := screener.Screen(ctx, articles)
	results.Stage1 = outcome.Stage1
	results.Stage2 = outcome.Stage2
	results.Irrelevant = outcome.Irrelevant
	results.All = outcome.All
	if err != nil {
		return results, fmt.Errorf("screen articles: %w", err)
	}

	counts := results.Counts()
	p.logger.Info("screening finished",
		"run_id", results.RunID,
		"site", results.Site,
		"irrelevant", counts[domain.TierIrrelevant],
		"stage1", counts[domain.TierStage1],
		"stage2", counts[domain.TierStage2],
	)
	p.metrics.ObserveResults(results)

	return results, p.publish(ctx, results)
}

// prepare normalizes titles and URLs, drops in-batch duplicates and articles
// already screened in earlier runs, and numbers the survivors.
func (p *Pipeline) prepare(ctx context.Context, articles []domain.Article) ([]domain.Article, error) {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		a = a.Normalized()
		key := dedupeKey(a)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, a)
	}

	if p.repository != nil && len(unique) > 0 {
		urls := make([]string, 0, len(unique))
		for _, a := range unique {
			if a.URL != "" {
				urls = append(urls, a.URL)
			}
		}
		processed, err := p.repository.AlreadyProcessed(ctx, urls)
		if err != nil {
			return nil, fmt.Errorf("load processed: %w", err)
		}
		fresh := unique[:0]
		for _, a := range unique {
			if a.URL != "" && processed[a.URL] {
				continue
			}
			fresh = append(fresh, a)
		}
		if skipped := len(unique) - len(fresh); skipped > 0 {
			p.logger.Debug("skipped already screened articles", "count", skipped)
		}
		unique = fresh
	}

	for i := range unique {
		unique[i].Index = i
	}
	return unique, nil
}

func dedupeKey(a domain.Article) string {
	if a.URL != "" {
		return "url:" + a.URL
	}
	return "id:" + a.ID + "|" + a.Title
}

func (p *Pipeline) publish(ctx context.Context, results domain.Results) error {
	var errs []error

	for _, sink := range p.sinks {
		if err := sink.WriteResults(ctx, results); err != nil {
			p.logger.Error("result sink failed", "run_id", results.RunID, "error", err)
			errs = append(errs, fmt.Errorf("write results: %w", err))
		}
	}

	if p.repository != nil {
		if err := p.repository.WriteResults(ctx, results); err != nil {
			p.logger.Error("persist results failed", "run_id", results.RunID, "error", err)
			errs = append(errs, fmt.Errorf("persist results: %w", err))
		}
	}

	if p.notifier != nil && len(results.Stage2) > 0 {
		if err := p.notifier.PublishDigest(ctx, BuildDigest(results)); err != nil {
			p.logger.Error("digest notification failed", "run_id", results.RunID, "error", err)
			errs = append(errs, fmt.Errorf("publish digest: %w", err))
		}
	}

	return errors.Join(errs...)
}

// BuildDigest renders the Stage 2 articles of a run as plain text.
func BuildDigest(results domain.Results) string {
	if len(results.Stage2) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d detailed project article(s)\n", results.Site, len(results.Stage2))
	for _, v := range results.Stage2 {
		fmt.Fprintf(&b, "\n- %s\n", v.Article.Title)
		fmt.Fprintf(&b, "  Company: %s | Project: %s", v.Additional.Company, v.Core.ProjectName)
		if v.Additional.ProjectStatus != "" {
			fmt.Fprintf(&b, " | Status: %s", v.Additional.ProjectStatus)
		}
		b.WriteString("\n")
		if v.Article.URL != "" {
			fmt.Fprintf(&b, "  %s\n", v.Article.URL)
		}
		if v.Validation.Flag != "" {
			fmt.Fprintf(&b, "  %s\n", v.Validation.Flag)
		}
	}
	return b.String()
}
