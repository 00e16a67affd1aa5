package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"HeadlineScreener/internal/domain"
)

// ErrUnknownScanner is returned by Resolve for unregistered strategy names.
var ErrUnknownScanner = errors.New("scanner is not registered")

// Feed describes a concrete feed location provided by config.
type Feed struct {
	Name string
	URL  string
}

// Request carries all parameters required to execute a scan.
// A zero Since disables the age filter.
type Request struct {
	Since    time.Time
	SiteName string
	Feeds    []Feed
	Options  map[string]string
}

// Scanner captures a single strategy implementation (JSON Feed, NDJSON, etc.).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Article, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation under its lower-cased name.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[strings.ToLower(scanner.Name())] = scanner
}

// Resolve returns a scanner by case-insensitive name. An empty name is
// reported as unknown so a site without a scanner fails at wiring time.
func (r *Registry) Resolve(name string) (Scanner, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownScanner)
	}
	if scanner, ok := r.scanners[key]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownScanner, name)
}

// Names lists registered strategies in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
