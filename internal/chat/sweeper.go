package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/openroomhq/openroom/internal/metrics"
)

// Sweeper periodically evicts participants whose last heartbeat is older
// than the configured timeout. Its lifecycle is tied to the context passed
// to Run; cancelling the context stops the sweep loop.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

// NewSweeper creates an inactivity sweeper over the given registry.
func NewSweeper(registry *Registry, interval, timeout time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		registry: registry,
		interval: interval,
		timeout:  timeout,
		log:      logger,
	}
}

// Run executes the sweep loop until ctx is cancelled. Each tick is
// independent of concurrent client requests: a participant may be evicted
// between a client's heartbeat and its next post.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Info().
		Dur("interval", s.interval).
		Dur("timeout", s.timeout).
		Msg("starting inactivity sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("inactivity sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	evicted, err := s.registry.EvictStale(ctx, s.registry.now(), s.timeout)
	if err != nil {
		s.log.Error().Err(err).Msg("sweep failed")
		return
	}
	if len(evicted) > 0 {
		metrics.ParticipantsEvicted.Add(float64(len(evicted)))
		s.log.Info().Strs("names", evicted).Msg("evicted inactive participants")
	}
}
