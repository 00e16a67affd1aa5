package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/ports"
)

const maxPageBytes = 8 << 20

var errNoText = errors.New("page has no paragraph text")

// FullTextFetcher downloads an article page and keeps its paragraph text.
type FullTextFetcher struct {
	client *http.Client
}

var _ ports.TextFetcher = (*FullTextFetcher)(nil)

// NewFullTextFetcher wires an HTTP client; nil selects a 20s-timeout client.
func NewFullTextFetcher(client *http.Client) *FullTextFetcher {
	return &FullTextFetcher{client: defaultClient(client)}
}

// FetchText returns the paragraphs inside <article>, or every <p> when the
// page has no article element.
func (f *FullTextFetcher) FetchText(ctx context.Context, article domain.Article) (string, error) {
	if strings.TrimSpace(article.URL) == "" {
		return "", fmt.Errorf("article %s has no url", article.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, article.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article page returned %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read article page: %w", err)
	}

	return extractText(data, resp.Header.Get("Content-Type"))
}

func extractText(data []byte, contentType string) (string, error) {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("decode article page: %w", err)
		}
		decoded = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return "", fmt.Errorf("parse article page: %w", err)
	}
	doc.Find("script,noscript,style").Remove()

	paragraphs := collectParagraphs(doc.Find("article p"))
	if len(paragraphs) == 0 {
		paragraphs = collectParagraphs(doc.Find("p"))
	}
	if len(paragraphs) == 0 {
		return "", errNoText
	}
	return strings.Join(paragraphs, "\n"), nil
}

func collectParagraphs(sel *goquery.Selection) []string {
	var parts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := collapse(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return parts
}
