package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"PUM/internal/domain/models"
	"PUM/internal/domain/repository"
	pkgkafka "PUM/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage over the market_data table.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, p *models.MarketPoint) error {
	q := fmt.Sprintf("INSERT INTO %s (token_address, token_symbol, price, market_cap, volume_24h, source, ts) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		p.TokenAddress,
		p.TokenSymbol,
		p.Price,
		p.MarketCap,
		p.Volume24h,
		p.Source,
		p.Timestamp,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, points []*models.MarketPoint) error {
	if len(points) == 0 {
		return nil
	}
	// Multi-row VALUES inserts, chunked to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, p := range points[start:end] {
			if p == nil || p.TokenSymbol == "" || p.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				p.TokenAddress,
				p.TokenSymbol,
				p.Price,
				p.MarketCap,
				p.Volume24h,
				p.Source,
				p.Timestamp,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (token_address, token_symbol, price, market_cap, volume_24h, source, ts) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, token string, from, to time.Time, limit int) ([]*models.MarketPoint, error) {
	q := fmt.Sprintf("SELECT token_address, token_symbol, price, market_cap, volume_24h, source, ts FROM %s WHERE token_symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, token, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []*models.MarketPoint
	for rows.Next() {
		var p models.MarketPoint
		if err := rows.Scan(&p.TokenAddress, &p.TokenSymbol, &p.Price, &p.MarketCap, &p.Volume24h, &p.Source, &p.Timestamp); err != nil {
			return nil, err
		}
		points = append(points, &p)
	}
	return points, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func pointPayload(p *models.MarketPoint) map[string]interface{} {
	return map[string]interface{}{
		"token_address": p.TokenAddress,
		"token_symbol":  p.TokenSymbol,
		"price":         p.Price,
		"market_cap":    p.MarketCap,
		"volume_24h":    p.Volume24h,
		"source":        p.Source,
		"ts":            p.Timestamp.UnixMilli(),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, pt *models.MarketPoint) error {
	return p.producer.Publish(ctx, p.topic, []byte(pt.TokenSymbol), pointPayload(pt))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, points []*models.MarketPoint) error {
	if len(points) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(points))
	for i, pt := range points {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(pt.TokenSymbol),
			Value: pointPayload(pt),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
