package usecase

import (
	"context"
	"fmt"
	"time"

	"PUM/internal/domain/models"
	drepo "PUM/internal/domain/repository"
)

// PointProcessor routes incoming market points to the configured backend.
type PointProcessor struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
	batchSz int
	batchTO time.Duration
}

// NewPointProcessor creates a new PointProcessor instance.
func NewPointProcessor(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *PointProcessor {
	return &PointProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process routes a single point to the configured backend.
func (p *PointProcessor) Process(ctx context.Context, pt *models.MarketPoint) error {
	if pt == nil {
		return fmt.Errorf("market point is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, pt)
	case "clickhouse":
		err = p.store.Store(ctx, pt)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process market point: %w", err)
	}

	p.metrics.RecordMessageSent(p.backend, pt.TokenSymbol)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple points in a batch.
func (p *PointProcessor) ProcessBatch(ctx context.Context, points []*models.MarketPoint) error {
	if len(points) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, points)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, points)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, pt := range points {
		p.metrics.RecordMessageSent(p.backend, pt.TokenSymbol)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *PointProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
