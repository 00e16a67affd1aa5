package excerpts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeadlineScreener/internal/ports"
)

type stubEmbedder struct {
	err     error
	queries []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.queries = append(s.queries, text)
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0}, nil
}

type stubSelector struct {
	chunks   []string
	count    int
	pick     []string
	err      error
	indexErr error
	indexed  int
	queried  int
}

func (s *stubSelector) SelectTopExcerpts(ctx context.Context, chunks []string, target []float32, count int) ([]string, error) {
	index, err := s.Index(ctx, chunks)
	if err != nil {
		return nil, err
	}
	return index.Top(ctx, target, count)
}

func (s *stubSelector) Index(_ context.Context, chunks []string) (ports.ExcerptIndex, error) {
	s.indexed++
	s.chunks = chunks
	if s.indexErr != nil {
		return nil, s.indexErr
	}
	return s, nil
}

func (s *stubSelector) Top(_ context.Context, _ []float32, count int) ([]string, error) {
	s.queried++
	s.count = count
	return s.pick, s.err
}

func TestChunk(t *testing.T) {
	t.Parallel()

	chunks := Chunk("a b c d e f g", 3)
	assert.Equal(t, []string{"a b c", "d e f", "g"}, chunks)
	assert.Nil(t, Chunk("   ", 3))
}

func TestContextShortTextIsSentWhole(t *testing.T) {
	t.Parallel()

	emb := &stubEmbedder{}
	p := NewPicker(Config{Budget: 2000}, emb, &stubSelector{}, nil)

	text, full := p.Context(context.Background(), "short text", "question")
	assert.True(t, full)
	assert.Equal(t, "short text", text)
	assert.Empty(t, emb.queries)
}

func TestContextLongTextUsesSelector(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("steel plant hydrogen ", 200)
	emb := &stubEmbedder{}
	sel := &stubSelector{pick: []string{"best chunk", "second chunk"}}
	p := NewPicker(Config{Budget: 1500, ChunkWords: 10, Count: 2}, emb, sel, nil)

	text, full := p.Context(context.Background(), long, "Is this about sports?")
	assert.False(t, full)
	assert.Equal(t, "best chunk"+separator+"second chunk", text)
	assert.Equal(t, []string{"Is this about sports?"}, emb.queries)
	assert.Equal(t, 2, sel.count)
	require.Len(t, sel.chunks, 60)
}

func TestContextFallsBackToTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 3000)

	p := NewPicker(Config{Budget: 1500}, &stubEmbedder{err: errors.New("down")}, &stubSelector{}, nil)
	text, full := p.Context(context.Background(), long, "q")
	assert.False(t, full)
	assert.Len(t, text, 500)

	p = NewPicker(Config{Budget: 1500}, nil, nil, nil)
	text, _ = p.Context(context.Background(), long, "q")
	assert.Len(t, text, 500)

	var nilPicker *Picker
	text, full = nilPicker.Context(context.Background(), long, "q")
	assert.True(t, full)
	assert.Len(t, text, 3000)
}

func TestSessionIndexesChunksOnce(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("steel plant hydrogen ", 200)
	emb := &stubEmbedder{}
	sel := &stubSelector{pick: []string{"best chunk"}}
	session := NewPicker(Config{Budget: 1500, ChunkWords: 10, Count: 2}, emb, sel, nil).Session(long)

	for _, q := range []string{"Is this about sports?", "Is this about a merger?", "Is this about profit?"} {
		text, full := session.Context(context.Background(), q)
		assert.False(t, full)
		assert.Equal(t, "best chunk", text)
	}

	assert.Equal(t, 1, sel.indexed)
	assert.Equal(t, 3, sel.queried)
	assert.Len(t, emb.queries, 3)
}

func TestSessionIndexFailureTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 3000)
	emb := &stubEmbedder{}
	sel := &stubSelector{indexErr: errors.New("embedding service down")}
	session := NewPicker(Config{Budget: 1500}, emb, sel, nil).Session(long)

	for i := 0; i < 2; i++ {
		text, full := session.Context(context.Background(), "q")
		assert.False(t, full)
		assert.Len(t, text, 500)
	}
	assert.Equal(t, 1, sel.indexed)
	assert.Empty(t, emb.queries)
}
