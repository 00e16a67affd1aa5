package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"HeadlineScreener/internal/config"
	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/ports"
	"HeadlineScreener/internal/scanner"
)

// StrategySource resolves a site's scanner strategy and reads its feeds.
type StrategySource struct {
	registry *scanner.Registry
	sites    map[string]config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource indexes sites by case-insensitive name.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	byName := make(map[string]config.SiteConfig, len(sites))
	for _, site := range sites {
		byName[siteKey(site.Name)] = site
	}
	return &StrategySource{registry: reg, sites: byName, logger: log}
}

// FetchSince scans every feed of the named site. Articles published before
// since are dropped even when a scanner does not filter them itself.
func (s *StrategySource) FetchSince(ctx context.Context, siteName string, since time.Time) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	site, ok := s.sites[siteKey(siteName)]
	if !ok {
		return nil, fmt.Errorf("site %s is not configured", siteName)
	}

	strategy, err := s.registry.Resolve(site.Scanner)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", site.Name, err)
	}

	log := s.logger.With("site", site.Name, "scanner", strategy.Name())
	log.Debug("scanning site", "feeds", len(site.Feeds), "since", since)

	scanned, err := strategy.Scan(ctx, scanner.Request{
		Since:    since,
		SiteName: site.Name,
		Options:  site.Options,
		Feeds:    feedsOf(site),
	})
	if err != nil {
		return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
	}

	articles := scanned[:0]
	for _, a := range scanned {
		if tooOld(a.PublishedAt, since) {
			continue
		}
		if a.Source == "" {
			a.Source = site.Name
		}
		articles = append(articles, a)
	}

	log.Info("site scanned", "articles", len(articles), "dropped", len(scanned)-len(articles))
	return articles, nil
}

// feedsOf names unnamed feeds by position so source labels stay distinct.
func feedsOf(site config.SiteConfig) []scanner.Feed {
	feeds := make([]scanner.Feed, 0, len(site.Feeds))
	for i, f := range site.Feeds {
		name := f.Name
		if name == "" && len(site.Feeds) > 1 {
			name = fmt.Sprintf("feed-%d", i+1)
		}
		feeds = append(feeds, scanner.Feed{Name: name, URL: f.URL})
	}
	return feeds
}

func siteKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
