package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Evictor drops entries idle for too long.
type Evictor interface {
	EvictExpired(ctx context.Context, now time.Time) (int, error)
}

// EvictionSweeper periodically evicts idle state from its targets.
type EvictionSweeper struct {
	targets  []Evictor
	schedule string
	logger   *zap.Logger
	now      func() time.Time
}

// NewEvictionSweeper creates a sweeper running on a cron schedule such as "@every 10m".
func NewEvictionSweeper(schedule string, logger *zap.Logger, targets ...Evictor) *EvictionSweeper {
	return &EvictionSweeper{
		targets:  targets,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs the sweep until ctx is cancelled.
func (s *EvictionSweeper) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	if _, err := c.AddFunc(s.schedule, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("add eviction job: %w", err)
	}

	c.Start()
	s.logger.Info("eviction sweeper started", zap.String("schedule", s.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("eviction sweeper stopped")

	return nil
}

// Sweep runs a single eviction pass over every target.
func (s *EvictionSweeper) Sweep(ctx context.Context) {
	now := s.now()
	for _, t := range s.targets {
		n, err := t.EvictExpired(ctx, now)
		if err != nil {
			s.logger.Error("eviction failed",
				zap.String("target", fmt.Sprintf("%T", t)),
				zap.Error(err),
			)
			continue
		}
		if n > 0 {
			s.logger.Info("evicted idle entries",
				zap.String("target", fmt.Sprintf("%T", t)),
				zap.Int("count", n),
			)
		}
	}
}
