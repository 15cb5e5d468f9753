package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const defaultLifecycleInterval = 24 * time.Hour

// LifecycleScheduler runs the lifecycle automation periodically. Deployments
// driven by an external cron use cmd/automation instead and never start
// this loop.
type LifecycleScheduler struct {
	lifecycle *LifecycleService
	logger    *zap.Logger
	interval  time.Duration
}

func NewLifecycleScheduler(
	lifecycle *LifecycleService,
	interval time.Duration,
	logger *zap.Logger,
) (*LifecycleScheduler, error) {
	if lifecycle == nil {
		return nil, fmt.Errorf("lifecycle service is required")
	}
	if interval <= 0 {
		interval = defaultLifecycleInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LifecycleScheduler{
		lifecycle: lifecycle,
		logger:    logger,
		interval:  interval,
	}, nil
}

func (s *LifecycleScheduler) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run immediately so batches already past their end date do not wait
	// for the first ticker edge.
	if _, err := s.lifecycle.RunOnce(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("lifecycle initial run failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.lifecycle.RunOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("lifecycle run failed", zap.Error(err))
			}
		}
	}
}
