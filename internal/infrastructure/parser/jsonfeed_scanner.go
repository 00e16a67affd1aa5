package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/scanner"
)

// JSONFeedScanner reads JSON Feed documents (https://jsonfeed.org/version/1.1).
type JSONFeedScanner struct {
	client *http.Client
}

type jsonFeed struct {
	Title string         `json:"title"`
	Items []jsonFeedItem `json:"items"`
}

type jsonFeedItem struct {
	ID            string   `json:"id"`
	URL           string   `json:"url"`
	ExternalURL   string   `json:"external_url"`
	Title         string   `json:"title"`
	ContentHTML   string   `json:"content_html"`
	ContentText   string   `json:"content_text"`
	Summary       string   `json:"summary"`
	DatePublished string   `json:"date_published"`
	Tags          []string `json:"tags"`
}

// NewJSONFeedScanner wires an HTTP client; nil selects a 20s-timeout client.
func NewJSONFeedScanner(client *http.Client) *JSONFeedScanner {
	return &JSONFeedScanner{client: defaultClient(client)}
}

// Name identifies the strategy inside the registry.
func (s *JSONFeedScanner) Name() string {
	return "jsonfeed"
}

// Scan reads every feed of the request and returns items published since req.Since.
func (s *JSONFeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if len(req.Feeds) == 0 {
		return nil, fmt.Errorf("no feeds provided for site %s", req.SiteName)
	}

	results := make([]domain.Article, 0)
	seen := map[string]struct{}{}

	for _, feed := range req.Feeds {
		doc, err := s.fetchFeed(ctx, feed.URL)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", feed.Name, err)
		}

		for _, item := range doc.Items {
			article, ok := parseItem(item, sourceName(req.SiteName, feed.Name))
			if !ok || tooOld(article.PublishedAt, req.Since) {
				continue
			}
			if _, dup := seen[article.ID]; dup {
				continue
			}
			seen[article.ID] = struct{}{}
			results = append(results, article)
		}
	}

	return results, nil
}

func (s *JSONFeedScanner) fetchFeed(ctx context.Context, location string) (jsonFeed, error) {
	body, err := openLocation(ctx, s.client, location)
	if err != nil {
		return jsonFeed{}, err
	}
	defer body.Close()

	var doc jsonFeed
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return jsonFeed{}, fmt.Errorf("decode feed: %w", err)
	}
	return doc, nil
}

// parseItem maps a feed item to an article whose Text is "title summary".
func parseItem(item jsonFeedItem, source string) (domain.Article, bool) {
	title := htmlToText(item.Title)
	link := strings.TrimSpace(item.URL)
	if link == "" {
		link = strings.TrimSpace(item.ExternalURL)
	}
	if title == "" && link == "" {
		return domain.Article{}, false
	}

	summary := htmlToText(item.Summary)
	if summary == "" {
		summary = collapse(item.ContentText)
	}
	if summary == "" {
		summary = htmlToText(item.ContentHTML)
	}

	id := strings.TrimSpace(item.ID)
	if id == "" {
		id = link
	}

	return domain.Article{
		ID:          id,
		Title:       title,
		URL:         link,
		Text:        strings.TrimSpace(title + " " + summary),
		Source:      source,
		PublishedAt: parseTime(item.DatePublished),
	}, true
}

var _ scanner.Scanner = (*JSONFeedScanner)(nil)
