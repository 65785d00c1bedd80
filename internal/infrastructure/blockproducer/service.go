package blockproducer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"
	"github.com/vaultmint/vaultd/internal/core/ports"
)

type Option func(*service)

func WithBlockTime(blockTime time.Duration) Option {
	return func(s *service) {
		s.blockTime = blockTime
	}
}

type service struct {
	heights   ports.HeightSource
	blockTime time.Duration
	scheduler *gocron.Scheduler
}

// NewService returns a producer that bumps the persisted height by one
// every block time, defaulting to 10 seconds.
func NewService(heights ports.HeightSource, opts ...Option) (ports.BlockProducer, error) {
	if heights == nil {
		return nil, fmt.Errorf("missing height source")
	}

	svc := &service{
		heights:   heights,
		blockTime: 10 * time.Second,
		scheduler: gocron.NewScheduler(time.UTC),
	}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.blockTime <= 0 {
		return nil, fmt.Errorf("block time must be positive")
	}

	if _, err := svc.scheduler.Every(svc.blockTime).Do(svc.produceBlock); err != nil {
		return nil, fmt.Errorf("failed to schedule block production: %s", err)
	}

	return svc, nil
}

func (s *service) Start() {
	s.scheduler.StartAsync()
	log.Debugf("block producer started with block time %s", s.blockTime)
}

func (s *service) Stop() {
	s.scheduler.Stop()
	log.Debug("block producer stopped")
}

func (s *service) produceBlock() {
	height, err := s.heights.Advance(context.Background(), 1)
	if err != nil {
		log.WithError(err).Error("failed to produce block")
		return
	}
	log.Debugf("produced block %d", height)
}
