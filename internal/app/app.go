package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"HeadlineScreener/internal/config"
	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/excerpts"
	"HeadlineScreener/internal/infrastructure/export"
	"HeadlineScreener/internal/infrastructure/llm"
	"HeadlineScreener/internal/infrastructure/ml"
	"HeadlineScreener/internal/infrastructure/parser"
	"HeadlineScreener/internal/infrastructure/scheduler"
	"HeadlineScreener/internal/infrastructure/storage"
	"HeadlineScreener/internal/infrastructure/telegram"
	"HeadlineScreener/internal/infrastructure/vector"
	"HeadlineScreener/internal/logging"
	"HeadlineScreener/internal/metrics"
	"HeadlineScreener/internal/ports"
	"HeadlineScreener/internal/scanner"
	"HeadlineScreener/internal/taxonomy"
	"HeadlineScreener/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	registry  *prometheus.Registry
	db        *sql.DB
}

// New builds the application graph from cfg. The database, when configured,
// is opened and its schema ensured here.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	overrides := make([]domain.Taxonomy, 0, len(cfg.Taxonomies))
	for _, t := range cfg.Taxonomies {
		overrides = append(overrides, t.Taxonomy())
	}
	taxonomies, err := taxonomy.NewRegistry(overrides...)
	if err != nil {
		return nil, fmt.Errorf("build taxonomies: %w", err)
	}

	scanners := scanner.NewRegistry()
	scanners.Register(parser.NewJSONFeedScanner(nil))
	scanners.Register(parser.NewNDJSONScanner(nil))

	sites := make([]usecase.Site, 0, len(cfg.Sites))
	for _, s := range cfg.Sites {
		if _, err := scanners.Resolve(s.Scanner); err != nil {
			return nil, fmt.Errorf("site %s: %w", s.Name, err)
		}
		sites = append(sites, usecase.Site{Name: s.Name, Taxonomy: s.Taxonomy})
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	oracle := llm.NewChatGPTClient(cfg.Oracle)
	picker := newPicker(cfg, baseLogger)

	var fetcher ports.TextFetcher
	if cfg.Pipeline.FetchFullText {
		fetcher = parser.NewFullTextFetcher(nil)
	}

	screeners, err := buildScreeners(taxonomies, sites, usecase.ScreenerDeps{
		Oracle:            oracle,
		Picker:            picker,
		Fetcher:           fetcher,
		Metrics:           m,
		Threshold:         cfg.Validation.Threshold,
		Concurrency:       cfg.Pipeline.Concurrency,
		Logger:            baseLogger.With("component", "screener"),
		KnownTechnologies: taxonomies.Technologies(),
	})
	if err != nil {
		return nil, err
	}

	sinks, err := buildSinks(cfg.Output)
	if err != nil {
		return nil, err
	}

	a := &Application{cfg: cfg, logger: baseLogger, registry: registry}

	var repository ports.ArticleRepository
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		a.db = db
		repository = repo
	}

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram); tg.Configured() {
		notifier = tg
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     parser.NewStrategySource(scanners, cfg.Sites, baseLogger.With("component", "source")),
		Repository: repository,
		Sinks:      sinks,
		Notifier:   notifier,
		Screeners:  screeners,
		Sites:      sites,
		Lookback:   cfg.Pipeline.Lookback,
		Metrics:    m,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	a.scheduler = usecase.NewScheduler(driver, a.pipeline, baseLogger.With("component", "scheduler"))

	return a, nil
}

func newPicker(cfg config.Config, logger *slog.Logger) *excerpts.Picker {
	var embedder ports.Embedder
	switch strings.ToLower(cfg.Embeddings.Provider) {
	case "openai":
		embedder = vector.NewOpenAIEmbedder(cfg.Embeddings.APIKey)
	case "ml":
		embedder = ml.NewClient(cfg.ML.InferenceURL, cfg.ML.APIKey)
	}

	var selector ports.ExcerptSelector
	if embedder != nil {
		selector = vector.NewChromemSelector(embedder, cfg.Pipeline.Concurrency)
	}

	return excerpts.NewPicker(excerpts.Config{
		Budget:     cfg.Excerpts.Budget,
		ChunkWords: cfg.Excerpts.ChunkWords,
		Count:      cfg.Excerpts.Count,
	}, embedder, selector, logger.With("component", "excerpts"))
}

// buildScreeners creates one screener per taxonomy referenced by a site.
func buildScreeners(taxonomies *taxonomy.Registry, sites []usecase.Site, deps usecase.ScreenerDeps) ([]*usecase.Screener, error) {
	seen := map[string]struct{}{}
	var screeners []*usecase.Screener
	for _, site := range sites {
		tax, err := taxonomies.Lookup(site.Taxonomy)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}
		if _, ok := seen[tax.Name]; ok {
			continue
		}
		seen[tax.Name] = struct{}{}

		d := deps
		d.Taxonomy = tax
		screeners = append(screeners, usecase.NewScreener(d))
	}
	return screeners, nil
}

func buildSinks(out config.OutputConfig) ([]ports.ResultSink, error) {
	sinks := make([]ports.ResultSink, 0, len(out.Formats))
	for _, format := range out.Formats {
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "csv":
			sinks = append(sinks, export.NewCSVSink(out.Dir))
		case "ndjson":
			sinks = append(sinks, export.NewNDJSONSink(out.Dir))
		default:
			return nil, fmt.Errorf("unknown output format %q", format)
		}
	}
	return sinks, nil
}

// Run screens every configured site once, or only the named site.
func (a *Application) Run(ctx context.Context, site string) error {
	now := time.Now().In(a.cfg.Scheduler.Location())
	if site == "" {
		return a.pipeline.ProcessAll(ctx, now)
	}

	for _, s := range a.cfg.Sites {
		if strings.EqualFold(s.Name, site) {
			_, err := a.pipeline.ProcessSite(ctx, usecase.Site{Name: s.Name, Taxonomy: s.Taxonomy}, now)
			return err
		}
	}
	return fmt.Errorf("unknown site %q", site)
}

// Serve runs the cron schedule and the metrics endpoint until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("metrics listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if err := a.scheduler.Start(ctx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Timezone)

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("metrics server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return errors.Join(runErr, a.scheduler.Stop(shutdownCtx), srv.Shutdown(shutdownCtx))
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
