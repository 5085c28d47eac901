package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PUM/internal/domain/models"
	pkgch "PUM/pkg/clickhouse"
	applogger "PUM/pkg/logger"
)

// CHMarketReader implements MarketReader backed by ClickHouse.
type CHMarketReader struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHMarketReader(ch *pkgch.Client) *CHMarketReader {
	return &CHMarketReader{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHMarketReader) SetLogger(l *applogger.Logger) { s.l = l }

const marketCols = "token_address, token_symbol, price, market_cap, volume_24h, source, ts"

func (s *CHMarketReader) scanPoints(rows *sql.Rows) ([]models.MarketPoint, error) {
	defer rows.Close()
	out := make([]models.MarketPoint, 0, 256)
	for rows.Next() {
		var p models.MarketPoint
		if err := rows.Scan(&p.TokenAddress, &p.TokenSymbol, &p.Price, &p.MarketCap, &p.Volume24h, &p.Source, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("scan market point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetRange returns observations in ascending timestamp order.
func (s *CHMarketReader) GetRange(ctx context.Context, token string, from, to time.Time) ([]models.MarketPoint, error) {
	q := fmt.Sprintf(`SELECT %s FROM pum.market_data WHERE token_symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC`, marketCols)
	rows, err := s.db.QueryContext(ctx, q, token, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse market range query error",
				applogger.String("token", token),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get market range: %w", err)
	}
	return s.scanPoints(rows)
}

// GetLatestN returns the n most recent observations, newest first.
func (s *CHMarketReader) GetLatestN(ctx context.Context, token string, n int) ([]models.MarketPoint, error) {
	q := fmt.Sprintf(`SELECT %s FROM pum.market_data WHERE token_symbol = ? ORDER BY ts DESC LIMIT ?`, marketCols)
	rows, err := s.db.QueryContext(ctx, q, token, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse market latest query error",
				applogger.String("token", token),
				applogger.Int("n", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest market points: %w", err)
	}
	return s.scanPoints(rows)
}

// CHEventReader implements EventReader over the chain_events table.
type CHEventReader struct {
	db *sql.DB
}

func NewCHEventReader(ch *pkgch.Client) *CHEventReader {
	return &CHEventReader{db: ch.DB()}
}

// CountEvents counts events for a contract since the given time. An empty
// eventType counts all kinds.
func (s *CHEventReader) CountEvents(ctx context.Context, protocolAddress, eventType string, since time.Time) (int, error) {
	q := "SELECT count() FROM pum.chain_events WHERE protocol_address = ? AND ts >= ?"
	args := []interface{}{protocolAddress, since}
	if eventType != "" {
		q += " AND event_type = ?"
		args = append(args, eventType)
	}
	var n uint64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return int(n), nil
}

// StoreEvent appends one chain event. Used by the intake path.
func (s *CHEventReader) StoreEvent(ctx context.Context, e *models.ChainEvent) error {
	q := "INSERT INTO pum.chain_events (protocol_address, event_type, tx_hash, block_number, ts) VALUES (?, ?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, q, e.ProtocolAddress, e.EventType, e.TxHash, e.BlockNumber, e.Timestamp)
	return err
}
