package repository

import (
	"context"
	"time"

	"PUM/internal/domain/models"
)

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.MarketPoint, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, p *models.MarketPoint) error
	PublishBatch(ctx context.Context, points []*models.MarketPoint) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, p *models.MarketPoint) error
	StoreBatch(ctx context.Context, points []*models.MarketPoint) error
	Query(ctx context.Context, token string, from, to time.Time, limit int) ([]*models.MarketPoint, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordMessageSent(backend, token string)
	RecordError(kind string)
	RecordLastPrice(token string, price float64)
	RecordLatency(op string, seconds float64)
	RecordFallback(model string)
	RecordRiskScore(protocol string, score float64)
}
