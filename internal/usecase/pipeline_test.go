package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/metrics"
	"HeadlineScreener/internal/ports"
	"HeadlineScreener/internal/taxonomy"
	"HeadlineScreener/internal/validation"
)

const (
	hybritText = "SSAB and LKAB build the HYBRIT pilot plant in Lulea, Sweden, Europe. " +
		"Start is planned for 2026 using H-DRI (hydrogen direct reduced iron). Construction is under way."
	sportsText = "The local football team won the cup final."
	cementText = "A cement kiln somewhere had a quiet year."

	coreFull   = `{"scale":"pilot","project_name":"HYBRIT","timeline":"2026","technology":"H-DRI"}`
	coreEmpty  = `{"scale":"","project_name":"","timeline":"","technology":""}`
	additional = "```json\n" + `{"company":"SSAB","projects mentioned":"","partners":"LKAB","continent":"Europe",` +
		`"country":"Sweden","project_status":"Construction","irrelevant":false}` + "\n```"
)

var testTaxonomy = domain.Taxonomy{
	Name:         "steel",
	Questions:    []string{"Is this about sports?"},
	Technologies: []string{"H-DRI (hydrogen direct reduced iron)", "CCS (carbon capture storage)"},
	Statuses:     []string{"Announced", "Construction", "Operating"},
}

// routedOracle answers by prompt content so results do not depend on call order.
type routedOracle struct {
	mu      sync.Mutex
	prompts []string
}

func (o *routedOracle) Complete(_ context.Context, prompt string, _ domain.ResponseFormat) (string, error) {
	o.mu.Lock()
	o.prompts = append(o.prompts, prompt)
	o.mu.Unlock()

	switch {
	case strings.Contains(prompt, `respond with only "yes" or "no"`):
		if strings.Contains(prompt, "football") {
			return "Yes", nil
		}
		return "no", nil
	case strings.Contains(prompt, `"project_status"`):
		return additional, nil
	case strings.Contains(prompt, `"scale"`):
		if strings.Contains(prompt, "HYBRIT") {
			return coreFull, nil
		}
		return coreEmpty, nil
	}
	return "", errors.New("unexpected prompt")
}

func (o *routedOracle) count(substr string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, p := range o.prompts {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

type fakeSource struct {
	articles []domain.Article
	since    time.Time
	err      error
}

func (f *fakeSource) FetchSince(_ context.Context, _ string, since time.Time) ([]domain.Article, error) {
	f.since = since
	return append([]domain.Article(nil), f.articles...), f.err
}

type fakeRepository struct {
	processed map[string]bool
	asked     []string
	written   []domain.Results
}

func (r *fakeRepository) AlreadyProcessed(_ context.Context, urls []string) (map[string]bool, error) {
	r.asked = append(r.asked, urls...)
	out := map[string]bool{}
	for _, u := range urls {
		if r.processed[u] {
			out[u] = true
		}
	}
	return out, nil
}

func (r *fakeRepository) WriteResults(_ context.Context, results domain.Results) error {
	r.written = append(r.written, results)
	return nil
}

type recordingSink struct {
	got []domain.Results
	err error
}

func (s *recordingSink) WriteResults(_ context.Context, results domain.Results) error {
	s.got = append(s.got, results)
	return s.err
}

type recordingNotifier struct {
	digests []string
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return nil
}

type mapFetcher map[string]string

func (m mapFetcher) FetchText(_ context.Context, a domain.Article) (string, error) {
	if text, ok := m[a.URL]; ok {
		return text, nil
	}
	return "", errors.New("not found")
}

func feedArticles() []domain.Article {
	return []domain.Article{
		{ID: "1", Title: "HYBRIT pilot starts - Steel Times", URL: "https://news.example.org/hybrit?utm_source=feed", Text: hybritText},
		{ID: "2", Title: "Cup final", URL: "https://news.example.org/cup", Text: sportsText},
		{ID: "3", Title: "Kiln news", URL: "https://news.example.org/kiln#top", Text: cementText},
	}
}

func TestProcessSiteEndToEnd(t *testing.T) {
	t.Parallel()

	for _, concurrency := range []int{1, 3} {
		oracle := &routedOracle{}
		source := &fakeSource{articles: feedArticles()}
		sink := &recordingSink{}
		notifier := &recordingNotifier{}
		m := metrics.New(prometheus.NewRegistry())

		p := NewPipeline(PipelineDeps{
			Source:   source,
			Sinks:    []ports.ResultSink{sink},
			Notifier: notifier,
			Screeners: []*Screener{NewScreener(ScreenerDeps{
				Taxonomy:    testTaxonomy,
				Oracle:      oracle,
				Metrics:     m,
				Concurrency: concurrency,
			})},
			Lookback: 7 * 24 * time.Hour,
			Metrics:  m,
			NewRunID: func() string { return "run-1" },
		})

		now := time.Date(2025, time.November, 10, 6, 0, 0, 0, time.UTC)
		results, err := p.ProcessSite(context.Background(), Site{Name: "steel-news", Taxonomy: "Steel"}, now)
		require.NoError(t, err)

		assert.Equal(t, now.Add(-7*24*time.Hour), source.since)
		assert.Equal(t, "run-1", results.RunID)

		// article 2 is disqualified by the gate, 1 and 3 reach extraction
		require.Len(t, results.Irrelevant, 1)
		assert.Equal(t, "2", results.Irrelevant[0].ID)
		assert.Equal(t, 3, oracle.count(`respond with only "yes" or "no"`))
		assert.Equal(t, 2, oracle.count(`"scale"`))
		for _, prompt := range oracle.prompts {
			if strings.Contains(prompt, `"scale"`) || strings.Contains(prompt, `"project_status"`) {
				assert.NotContains(t, prompt, sportsText)
			}
		}

		// article 3 had empty core details, so only article 1 escalated
		assert.Equal(t, 1, oracle.count(`"project_status"`))

		require.Len(t, results.Stage2, 1)
		stage2 := results.Stage2[0]
		assert.Equal(t, "HYBRIT pilot starts", stage2.Article.Title)
		assert.Equal(t, "https://news.example.org/hybrit", stage2.Article.URL)
		assert.Equal(t, "SSAB", stage2.Additional.Company)
		assert.Equal(t, "HYBRIT", stage2.Core.ProjectName)
		assert.Empty(t, stage2.Validation.Flag, stage2.Validation.Scores)

		require.Len(t, results.Stage1, 1)
		assert.Equal(t, "https://news.example.org/kiln", results.Stage1[0].Article.URL)
		assert.False(t, results.Stage1[0].Escalated)

		require.Len(t, results.All, 3)
		assert.Equal(t, []string{"", domain.DiscardedBeforeStage1, domain.DiscardedBeforeStage2},
			[]string{results.All[0].Discarded, results.All[1].Discarded, results.All[2].Discarded})

		require.Len(t, sink.got, 1)
		assert.Equal(t, results.All, sink.got[0].All)
		require.Len(t, notifier.digests, 1)
		assert.Contains(t, notifier.digests[0], "HYBRIT pilot starts")

		assert.Equal(t, 3.0, testutil.ToFloat64(m.OracleCalls.WithLabelValues(metrics.StageRelevance)))
		assert.Equal(t, 3.0, testutil.ToFloat64(m.OracleCalls.WithLabelValues(metrics.StageExtraction)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Articles.WithLabelValues("steel-news", string(domain.TierStage2))))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("steel-news", "ok")))
	}
}

func newScreener(oracle ports.Oracle, fetcher ports.TextFetcher) *Screener {
	return NewScreener(ScreenerDeps{Taxonomy: testTaxonomy, Oracle: oracle, Fetcher: fetcher})
}

func TestProcessSiteSkipsDuplicatesAndProcessed(t *testing.T) {
	t.Parallel()

	articles := append(feedArticles(), domain.Article{
		ID: "1b", Title: "HYBRIT pilot starts - Other Paper", URL: "https://news.example.org/hybrit?utm_medium=rss", Text: hybritText,
	})
	repo := &fakeRepository{processed: map[string]bool{"https://news.example.org/kiln": true}}
	oracle := &routedOracle{}

	p := NewPipeline(PipelineDeps{
		Source:     &fakeSource{articles: articles},
		Repository: repo,
		Screeners:  []*Screener{newScreener(oracle, nil)},
	})

	results, err := p.ProcessSite(context.Background(), Site{Name: "steel-news", Taxonomy: "steel"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://news.example.org/hybrit",
		"https://news.example.org/cup",
		"https://news.example.org/kiln",
	}, repo.asked)

	require.Len(t, results.All, 2)
	assert.Equal(t, 0, results.All[0].Article.Index)
	assert.Equal(t, "https://news.example.org/cup", results.All[1].Article.URL)
	assert.Equal(t, 1, results.All[1].Article.Index)
	assert.Equal(t, 2, oracle.count(`respond with only "yes" or "no"`))

	require.Len(t, repo.written, 1)
	assert.Equal(t, results.RunID, repo.written[0].RunID)
	assert.NotEmpty(t, results.RunID)
}

func TestScreenerUsesFullText(t *testing.T) {
	t.Parallel()

	oracle := &routedOracle{}
	s := newScreener(oracle, mapFetcher{"https://a": "Full story: " + hybritText})

	out, err := s.Screen(context.Background(), []domain.Article{
		{ID: "a", Title: "Short", URL: "https://a", Text: "HYBRIT teaser"},
		{ID: "b", Title: "Kiln", URL: "https://b", Text: cementText},
	})
	require.NoError(t, err)

	require.Len(t, out.Stage2, 1)
	assert.Equal(t, "Full story: "+hybritText, out.Stage2[0].Article.FullText)
	assert.True(t, out.Stage2[0].Validation.Passed(), out.Stage2[0].Validation.Flag)

	// the fetch for b fails and extraction falls back to the feed text
	require.Len(t, out.Stage1, 1)
	assert.Empty(t, out.Stage1[0].Article.FullText)
	assert.Equal(t, 1, oracle.count("Article:\n\"\"\""+cementText))
}

func TestScreenerFlagsUnsupportedFields(t *testing.T) {
	t.Parallel()

	oracle := &routedOracle{}
	s := newScreener(oracle, nil)

	out, err := s.Screen(context.Background(), []domain.Article{
		{ID: "a", Title: "HYBRIT", Text: "HYBRIT pilot with SSAB and LKAB, 2026, H-DRI (hydrogen direct reduced iron), construction started."},
	})
	require.NoError(t, err)
	require.Len(t, out.Stage2, 1)

	v := out.Stage2[0].Validation
	assert.Equal(t, []string{domain.FieldContinent, domain.FieldCountry}, v.Flagged)
	assert.Equal(t, "CHECK RESULTS: continent, country", v.Flag)
}

func TestScreenerOracleFailureDegrades(t *testing.T) {
	t.Parallel()

	failing := oracleFunc(func(string) (string, error) {
		return "", ports.ErrOracleUnavailable
	})
	out, err := newScreener(failing, nil).Screen(context.Background(), feedArticles())
	require.NoError(t, err)

	assert.Empty(t, out.Irrelevant)
	assert.Empty(t, out.Stage2)
	assert.Len(t, out.Stage1, 3)
	assert.Len(t, out.All, 3)
}

func TestScreenerCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	oracle := &routedOracle{}
	out, err := newScreener(oracle, nil).Screen(ctx, feedArticles())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.All)
	assert.Empty(t, oracle.prompts)
}

type oracleFunc func(prompt string) (string, error)

func (f oracleFunc) Complete(_ context.Context, prompt string, _ domain.ResponseFormat) (string, error) {
	return f(prompt)
}

func TestScreenArticlesUnknownTaxonomy(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{Screeners: []*Screener{newScreener(&routedOracle{}, nil)}})
	_, err := p.ScreenArticles(context.Background(), domain.Results{Taxonomy: "cement"}, nil)
	require.ErrorIs(t, err, taxonomy.ErrUnknownTaxonomy)
}

func TestPublishJoinsSinkErrors(t *testing.T) {
	t.Parallel()

	sinkErr := errors.New("disk full")
	broken := &recordingSink{err: sinkErr}
	healthy := &recordingSink{}
	notifier := &recordingNotifier{}

	p := NewPipeline(PipelineDeps{
		Source:    &fakeSource{articles: feedArticles()},
		Sinks:     []ports.ResultSink{broken, healthy},
		Notifier:  notifier,
		Screeners: []*Screener{newScreener(&routedOracle{}, nil)},
	})

	results, err := p.ProcessSite(context.Background(), Site{Name: "s", Taxonomy: "steel"}, time.Now())
	require.ErrorIs(t, err, sinkErr)
	assert.Len(t, results.All, 3)
	assert.Len(t, broken.got, 1)
	assert.Len(t, healthy.got, 1)
	assert.Len(t, notifier.digests, 1)
}

func TestProcessAllContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	m := metrics.New(prometheus.NewRegistry())
	p := NewPipeline(PipelineDeps{
		Source:    &fakeSource{articles: feedArticles()},
		Sinks:     []ports.ResultSink{sink},
		Screeners: []*Screener{newScreener(&routedOracle{}, nil)},
		Sites: []Site{
			{Name: "cement-news", Taxonomy: "cement"},
			{Name: "steel-news", Taxonomy: "steel"},
		},
		Metrics: m,
	})

	err := p.ProcessAll(context.Background(), time.Now())
	require.ErrorIs(t, err, taxonomy.ErrUnknownTaxonomy)
	assert.Contains(t, err.Error(), "site cement-news")
	require.Len(t, sink.got, 1)
	assert.Equal(t, "steel-news", sink.got[0].Site)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("cement-news", "error")))
}

func TestProcessSiteFetchError(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{
		Source:    &fakeSource{err: errors.New("feed down")},
		Screeners: []*Screener{newScreener(&routedOracle{}, nil)},
	})
	_, err := p.ProcessSite(context.Background(), Site{Name: "s", Taxonomy: "steel"}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch articles")
}

func TestBuildDigest(t *testing.T) {
	t.Parallel()

	assert.Empty(t, BuildDigest(domain.Results{Site: "s"}))

	digest := BuildDigest(domain.Results{
		Site: "steel-news",
		Stage2: []domain.ValidatedArticle{{
			ExtractedArticle: domain.ExtractedArticle{
				Article:    domain.Article{Title: "HYBRIT", URL: "https://a"},
				Core:       domain.CoreDetails{ProjectName: "HYBRIT"},
				Additional: domain.AdditionalDetails{Company: "SSAB", ProjectStatus: "Construction"},
			},
			Validation: domain.ValidationResult{Flag: "CHECK RESULTS: country"},
		}},
	})
	assert.Equal(t, "steel-news: 1 detailed project article(s)\n"+
		"\n- HYBRIT\n"+
		"  Company: SSAB | Project: HYBRIT | Status: Construction\n"+
		"  https://a\n"+
		"  CHECK RESULTS: country\n", digest)
}

func TestExpansionVocabularyPrefersOwnEntries(t *testing.T) {
	t.Parallel()

	own := []string{"CCS (carbon capture storage)", "H-DRI (hydrogen direct reduced iron)"}
	known := []string{"CCS (carbon capture and sequestration)", "Meca clay", "H-DRI (hydrogen direct reduced iron)"}

	vocab := expansionVocabulary(own, known)
	assert.Equal(t, []string{
		"CCS (carbon capture storage)",
		"H-DRI (hydrogen direct reduced iron)",
		"CCS (carbon capture and sequestration)",
		"Meca clay",
	}, vocab)
	assert.Equal(t, "CCS (carbon capture storage)", domain.ExpandTechnology("ccs", vocab))
	assert.Equal(t, own, expansionVocabulary(own, nil))
}

func TestScreenerExpandsTechnologyFromKnownVocabulary(t *testing.T) {
	t.Parallel()

	const text = "The plant adds a carbon capture and utilization storage unit next year."
	e := domain.ExtractedArticle{Core: domain.CoreDetails{Technology: "CCUS"}}

	reg, err := taxonomy.NewRegistry()
	require.NoError(t, err)
	require.Contains(t, reg.Technologies(), "CCUS (carbon capture and utilization storage)")

	own := NewScreener(ScreenerDeps{Taxonomy: testTaxonomy})
	union := NewScreener(ScreenerDeps{Taxonomy: testTaxonomy, KnownTechnologies: reg.Technologies()})

	lower := strings.ToLower(text)
	expanded := validation.PartialRatio("ccus (carbon capture and utilization storage)", lower)
	short := validation.PartialRatio("ccus", lower)
	require.Greater(t, expanded, short)

	assert.Equal(t, short, own.validator.Validate(e, text).Scores[domain.FieldTechnology])
	assert.Equal(t, expanded, union.validator.Validate(e, text).Scores[domain.FieldTechnology])
}
