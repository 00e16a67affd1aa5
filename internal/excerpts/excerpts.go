// Package excerpts decides how much of an article is sent to the oracle.
// Text within the context budget is sent whole; longer text is chunked and
// only the chunks closest to the query survive.
package excerpts

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"HeadlineScreener/internal/ports"
)

const (
	DefaultBudget     = 25000
	DefaultChunkWords = 200
	DefaultCount      = 20

	budgetMargin = 1000
	separator    = "\n...\n"
)

// Config bounds the context sent with each oracle query.
type Config struct {
	Budget     int
	ChunkWords int
	Count      int
}

func (c Config) withDefaults() Config {
	if c.Budget <= budgetMargin {
		c.Budget = DefaultBudget
	}
	if c.ChunkWords <= 0 {
		c.ChunkWords = DefaultChunkWords
	}
	if c.Count <= 0 {
		c.Count = DefaultCount
	}
	return c
}

// Picker applies the context budget. A nil Picker always returns the full text.
type Picker struct {
	cfg      Config
	embedder ports.Embedder
	selector ports.ExcerptSelector
	logger   *slog.Logger
}

// NewPicker wires the embedding and selection collaborators; either may be nil,
// in which case long text is truncated to the budget instead.
func NewPicker(cfg Config, embedder ports.Embedder, selector ports.ExcerptSelector, logger *slog.Logger) *Picker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Picker{
		cfg:      cfg.withDefaults(),
		embedder: embedder,
		selector: selector,
		logger:   logger,
	}
}

// Context returns the text to send for query and whether it is the full text.
func (p *Picker) Context(ctx context.Context, text, query string) (string, bool) {
	return p.Session(text).Context(ctx, query)
}

// Session binds the picker to one text. Its chunks are embedded at most once,
// on the first query that needs them, and reused for later queries.
func (p *Picker) Session(text string) *Session {
	return &Session{picker: p, text: text}
}

// Session answers several queries against the same text.
type Session struct {
	picker  *Picker
	text    string
	index   ports.ExcerptIndex
	indexed bool
	err     error
}

// Context returns the text to send for query and whether it is the full text.
func (s *Session) Context(ctx context.Context, query string) (string, bool) {
	p := s.picker
	if p == nil {
		return s.text, true
	}

	limit := p.cfg.Budget - budgetMargin
	if utf8.RuneCountInString(s.text) < limit {
		return s.text, true
	}

	if p.embedder == nil || p.selector == nil {
		return truncate(s.text, limit), false
	}

	if !s.indexed {
		s.indexed = true
		s.index, s.err = p.selector.Index(ctx, Chunk(s.text, p.cfg.ChunkWords))
		if s.err != nil {
			p.logger.Warn("indexing excerpts failed, truncating text", "error", s.err)
		}
	}
	if s.err != nil {
		return truncate(s.text, limit), false
	}

	target, err := p.embedder.Embed(ctx, query)
	if err != nil {
		p.logger.Warn("embed query failed, truncating text", "error", err)
		return truncate(s.text, limit), false
	}

	picked, err := s.index.Top(ctx, target, p.cfg.Count)
	if err != nil || len(picked) == 0 {
		p.logger.Warn("excerpt selection failed, truncating text", "error", err)
		return truncate(s.text, limit), false
	}

	return truncate(strings.Join(picked, separator), limit), false
}

// Chunk splits text into consecutive windows of at most words words.
func Chunk(text string, words int) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	if words <= 0 {
		words = DefaultChunkWords
	}

	chunks := make([]string, 0, len(fields)/words+1)
	for start := 0; start < len(fields); start += words {
		end := start + words
		if end > len(fields) {
			end = len(fields)
		}
		chunks = append(chunks, strings.Join(fields[start:end], " "))
	}
	return chunks
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
