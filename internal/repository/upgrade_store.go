package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PUM/internal/domain/models"
)

// CHUpgradeStore reads protocol upgrades from ClickHouse.
type CHUpgradeStore struct {
	db *sql.DB
}

func NewCHUpgradeStore(db *sql.DB) *CHUpgradeStore {
	return &CHUpgradeStore{db: db}
}

const upgradeCols = "id, protocol_id, protocol_address, token_symbol, upgrade_type, title, status, start_time, end_time, execution_time, created_at"

func scanUpgrade(scan func(...interface{}) error) (*models.Upgrade, error) {
	var u models.Upgrade
	var exec sql.NullTime
	if err := scan(&u.ID, &u.ProtocolID, &u.ProtocolAddress, &u.TokenSymbol, &u.UpgradeType, &u.Title, &u.Status, &u.StartTime, &u.EndTime, &exec, &u.CreatedAt); err != nil {
		return nil, err
	}
	if exec.Valid {
		t := exec.Time
		u.ExecutionTime = &t
	}
	return &u, nil
}

// GetUpgrade returns the upgrade or a typed not-found error. The table is a
// ReplacingMergeTree so FINAL collapses superseded status rows.
func (s *CHUpgradeStore) GetUpgrade(ctx context.Context, id string) (*models.Upgrade, error) {
	q := fmt.Sprintf("SELECT %s FROM pum.protocol_upgrades FINAL WHERE id = ? LIMIT 1", upgradeCols)
	u, err := scanUpgrade(s.db.QueryRowContext(ctx, q, id).Scan)
	if err == sql.ErrNoRows {
		return nil, models.NotFoundError("upgrade", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get upgrade: %w", err)
	}
	return u, nil
}

// ListByProtocol returns a protocol's proposals created since the given time,
// ascending by creation.
func (s *CHUpgradeStore) ListByProtocol(ctx context.Context, protocolID string, since time.Time) ([]models.Upgrade, error) {
	q := fmt.Sprintf("SELECT %s FROM pum.protocol_upgrades FINAL WHERE protocol_id = ? AND created_at >= ? ORDER BY created_at ASC", upgradeCols)
	rows, err := s.db.QueryContext(ctx, q, protocolID, since)
	if err != nil {
		return nil, fmt.Errorf("list upgrades: %w", err)
	}
	defer rows.Close()

	var out []models.Upgrade
	for rows.Next() {
		u, err := scanUpgrade(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan upgrade: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Insert records a new upgrade row (or a status supersession of an existing
// id, collapsed by the ReplacingMergeTree).
func (s *CHUpgradeStore) Insert(ctx context.Context, u *models.Upgrade) error {
	q := fmt.Sprintf("INSERT INTO pum.protocol_upgrades (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", upgradeCols)
	var exec interface{}
	if u.ExecutionTime != nil {
		exec = *u.ExecutionTime
	}
	_, err := s.db.ExecContext(ctx, q,
		u.ID, u.ProtocolID, u.ProtocolAddress, u.TokenSymbol, u.UpgradeType,
		u.Title, u.Status, u.StartTime, u.EndTime, exec, u.CreatedAt,
	)
	return err
}
