package parser

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/scanner"
)

const maxLineBytes = 4 << 20

// NDJSONScanner reads offline batches with one {"title","url","text"} object per line.
type NDJSONScanner struct {
	client *http.Client
}

var _ scanner.Scanner = (*NDJSONScanner)(nil)

type ndjsonRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Text      string `json:"text"`
	Published string `json:"published"`
}

// NewNDJSONScanner wires an HTTP client for remote batches.
func NewNDJSONScanner(client *http.Client) *NDJSONScanner {
	return &NDJSONScanner{client: defaultClient(client)}
}

// Name identifies the strategy inside the registry.
func (s *NDJSONScanner) Name() string {
	return "ndjson"
}

// Scan reads every feed line by line. Blank lines are skipped; a malformed
// line fails the scan with its line number.
func (s *NDJSONScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if len(req.Feeds) == 0 {
		return nil, fmt.Errorf("no feeds provided for site %s", req.SiteName)
	}

	var results []domain.Article
	for _, feed := range req.Feeds {
		articles, err := s.readFeed(ctx, feed, sourceName(req.SiteName, feed.Name), req)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", feed.Name, err)
		}
		results = append(results, articles...)
	}
	return results, nil
}

func (s *NDJSONScanner) readFeed(ctx context.Context, feed scanner.Feed, source string, req scanner.Request) ([]domain.Article, error) {
	body, err := openLocation(ctx, s.client, feed.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var out []domain.Article
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}

		var rec ndjsonRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		article := domain.Article{
			ID:          strings.TrimSpace(rec.ID),
			Title:       strings.TrimSpace(rec.Title),
			URL:         strings.TrimSpace(rec.URL),
			Text:        strings.TrimSpace(rec.Text),
			Source:      source,
			PublishedAt: parseTime(rec.Published),
		}
		if article.Title == "" && article.URL == "" {
			continue
		}
		if article.Text == "" {
			article.Text = article.Title
		}
		if article.ID == "" {
			article.ID = article.URL
		}
		if tooOld(article.PublishedAt, req.Since) {
			continue
		}
		out = append(out, article)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return out, nil
}
