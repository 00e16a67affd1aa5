package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeadlineScreener/internal/domain"
	"HeadlineScreener/internal/ports"
)

type fakeDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *fakeDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *fakeDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsPipeline(t *testing.T) {
	t.Parallel()

	source := &fakeSource{articles: feedArticles()}
	sink := &recordingSink{}
	p := NewPipeline(PipelineDeps{
		Source:    source,
		Sinks:     []ports.ResultSink{sink},
		Screeners: []*Screener{newScreener(&routedOracle{}, nil)},
		Sites:     []Site{{Name: "steel-news", Taxonomy: "steel"}},
		Lookback:  24 * time.Hour,
	})

	driver := &fakeDriver{}
	s := NewScheduler(driver, p, nil)
	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)

	trigger := time.Date(2025, time.November, 10, 6, 0, 0, 0, time.UTC)
	driver.job(trigger)

	assert.Equal(t, trigger.Add(-24*time.Hour), source.since)
	require.Len(t, sink.got, 1)
	assert.Len(t, sink.got[0].All, 3)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerWithoutDriver(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, nil)
	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}

type panickingSource struct{}

func (panickingSource) FetchSince(context.Context, string, time.Time) ([]domain.Article, error) {
	panic("feed parser bug")
}

func TestSchedulerRecoversFromPanic(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{
		Source:    panickingSource{},
		Screeners: []*Screener{newScreener(&routedOracle{}, nil)},
		Sites:     []Site{{Name: "steel-news", Taxonomy: "steel"}},
	})
	driver := &fakeDriver{}
	s := NewScheduler(driver, p, nil)
	require.NoError(t, s.Start(context.Background()))

	assert.NotPanics(t, func() { driver.job(time.Now()) })

	err := s.activate(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed parser bug")
}
