package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeadlineScreener/internal/domain"
)

type namedScanner string

func (n namedScanner) Name() string { return string(n) }

func (n namedScanner) Scan(context.Context, Request) ([]domain.Article, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedScanner("ndjson"))
	reg.Register(namedScanner("jsonfeed"))

	got, err := reg.Resolve("jsonfeed")
	require.NoError(t, err)
	assert.Equal(t, "jsonfeed", got.Name())
	assert.Equal(t, []string{"jsonfeed", "ndjson"}, reg.Names())

	got, err = reg.Resolve(" NDJSON ")
	require.NoError(t, err)
	assert.Equal(t, "ndjson", got.Name())

	_, err = reg.Resolve("rss")
	assert.ErrorIs(t, err, ErrUnknownScanner)

	_, err = reg.Resolve("")
	assert.ErrorIs(t, err, ErrUnknownScanner)
}

func TestRegisterOnZeroRegistry(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(namedScanner("ndjson"))
	_, err := reg.Resolve("ndjson")
	assert.NoError(t, err)
}
