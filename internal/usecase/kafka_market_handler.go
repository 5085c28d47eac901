package usecase

import (
	"context"
	"encoding/json"
	"time"

	"PUM/internal/domain/models"
	domrepo "PUM/internal/domain/repository"
	pkgkafka "PUM/pkg/kafka"
)

// KafkaMarketHandler consumes crawler market-data messages and writes them to
// storage.
type KafkaMarketHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaMarketHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaMarketHandler {
	return &KafkaMarketHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaMarketHandler) Topic() string { return h.topic }

// incoming message schema: {token_address, token_symbol, price, market_cap, volume_24h, source, ts}
func (h *KafkaMarketHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		TokenAddress string  `json:"token_address"`
		TokenSymbol  string  `json:"token_symbol"`
		Price        float64 `json:"price"`
		MarketCap    float64 `json:"market_cap"`
		Volume24h    float64 `json:"volume_24h"`
		Source       string  `json:"source"`
		TS           int64   `json:"ts"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	ts := time.UnixMilli(m.TS)
	if m.TS < 1e11 { // seconds, not millis
		ts = time.Unix(m.TS, 0)
	}
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ts).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.MarketPoint{
		TokenAddress: m.TokenAddress,
		TokenSymbol:  m.TokenSymbol,
		Price:        m.Price,
		MarketCap:    m.MarketCap,
		Volume24h:    m.Volume24h,
		Source:       m.Source,
		Timestamp:    ts,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.TokenSymbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaMarketHandler)(nil)
