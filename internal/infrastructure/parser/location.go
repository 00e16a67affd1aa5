package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "HeadlineScreener/1.0"

var whitespaceRe = regexp.MustCompile(`\s+`)

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: 20 * time.Second}
	}
	return client
}

// openLocation opens an http(s) URL, a file:// URL or a plain file path.
func openLocation(ctx context.Context, client *http.Client, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", location, err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%s returned %s", location, resp.Status)
		}
		return resp.Body, nil
	}

	f, err := os.Open(strings.TrimPrefix(location, "file://"))
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	return f, nil
}

// htmlToText strips markup and collapses whitespace.
func htmlToText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}
	doc.Find("script,noscript,style").Remove()
	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, time.RFC1123Z, time.RFC1123, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// tooOld reports whether published falls before since. Unknown dates are kept.
func tooOld(published, since time.Time) bool {
	return !since.IsZero() && !published.IsZero() && published.Before(since)
}

func sourceName(site, feed string) string {
	if feed == "" {
		return site
	}
	return fmt.Sprintf("%s/%s", site, feed)
}
