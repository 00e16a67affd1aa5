package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"HeadlineScreener/internal/ports"
)

// Scheduler runs the pipeline over every site on each activation of driver.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler binds pipeline to driver.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the screening job. A failed or panicking activation is
// logged and the schedule keeps running.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}
	return s.driver.Start(ctx, func(trigger time.Time) {
		if err := s.activate(ctx, trigger); err != nil {
			s.logger.Error("scheduled run failed", "at", trigger, "error", err)
		}
	})
}

func (s *Scheduler) activate(ctx context.Context, trigger time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduled run panicked: %v", r)
		}
	}()

	started := time.Now()
	s.logger.Info("scheduled run triggered", "at", trigger)
	err = s.pipeline.ProcessAll(ctx, trigger)
	s.logger.Info("scheduled run finished", "at", trigger, "took", time.Since(started).Round(time.Millisecond))
	return err
}

// Stop tears down the driver, waiting for a running activation within ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
