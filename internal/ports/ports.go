package ports

import (
	"context"
	"errors"
	"time"

	"HeadlineScreener/internal/domain"
)

var (
	// ErrOracleUnavailable marks transport, status or rate-limit failures of the oracle.
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrMalformedResponse marks oracle output that cannot be interpreted.
	ErrMalformedResponse = errors.New("malformed oracle response")
)

// Oracle sends one prompt to a text-completion model and returns its raw answer.
type Oracle interface {
	Complete(ctx context.Context, prompt string, format domain.ResponseFormat) (string, error)
}

// Embedder turns text into a vector for excerpt selection.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ExcerptSelector returns the chunks most similar to target, best first.
// Index embeds chunks once so several targets can be ranked against them.
type ExcerptSelector interface {
	SelectTopExcerpts(ctx context.Context, chunks []string, target []float32, count int) ([]string, error)
	Index(ctx context.Context, chunks []string) (ExcerptIndex, error)
}

// ExcerptIndex ranks already embedded chunks.
type ExcerptIndex interface {
	Top(ctx context.Context, target []float32, count int) ([]string, error)
}

// ArticleSource pulls fresh articles for a configured site.
type ArticleSource interface {
	FetchSince(ctx context.Context, site string, since time.Time) ([]domain.Article, error)
}

// TextFetcher downloads the full body text of an article.
type TextFetcher interface {
	FetchText(ctx context.Context, article domain.Article) (string, error)
}

// ResultSink persists the four row sets of a run.
type ResultSink interface {
	WriteResults(ctx context.Context, results domain.Results) error
}

// ArticleRepository remembers screened articles for deduplication across runs.
type ArticleRepository interface {
	AlreadyProcessed(ctx context.Context, urls []string) (map[string]bool, error)
	ResultSink
}

// Notifier streams Stage 2 digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
