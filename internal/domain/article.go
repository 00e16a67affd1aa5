package domain

import (
	"net/url"
	"strings"
	"time"
)

// titleSeparator splits a headline from the publisher suffix ("Headline - Publisher").
const titleSeparator = " - "

// Article is a core entity describing a headline fetched from a feed.
type Article struct {
	ID          string
	Index       int
	Title       string
	URL         string
	Text        string
	FullText    string
	Source      string
	PublishedAt time.Time
}

// Body returns the longest text known for the article.
func (a Article) Body() string {
	if strings.TrimSpace(a.FullText) != "" {
		return a.FullText
	}
	return a.Text
}

// Normalized returns a copy with the title truncated at the publisher
// separator and the URL canonicalized.
func (a Article) Normalized() Article {
	a.Title = NormalizeTitle(a.Title)
	a.URL = CanonicalURL(a.URL)
	return a
}

// NormalizeTitle drops everything after the first " - " separator.
func NormalizeTitle(title string) string {
	head, _, _ := strings.Cut(title, titleSeparator)
	return strings.TrimSpace(head)
}

var trackingParams = map[string]struct{}{
	"fbclid": {},
	"gclid":  {},
	"mc_cid": {},
	"mc_eid": {},
}

// CanonicalURL trims the URL, removes its fragment and strips tracking query
// parameters. Unparseable input is returned trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.Host = strings.ToLower(parsed.Host)

	query := parsed.Query()
	for key := range query {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") {
			query.Del(key)
			continue
		}
		if _, ok := trackingParams[lower]; ok {
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}
