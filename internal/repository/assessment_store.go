package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"PUM/internal/domain/models"
)

// CHAssessmentStore appends and reads risk assessments. Records are never
// updated in place; history only grows.
type CHAssessmentStore struct {
	db *sql.DB
}

func NewCHAssessmentStore(db *sql.DB) *CHAssessmentStore {
	return &CHAssessmentStore{db: db}
}

func (s *CHAssessmentStore) Insert(ctx context.Context, a *models.RiskAssessment) error {
	factors, err := json.Marshal(a.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}
	recs, err := json.Marshal(a.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	q := `INSERT INTO pum.risk_assessments
		(upgrade_id, protocol_id, technical_score, governance_score, market_score, liquidity_score, overall_score, factors, recommendations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		a.UpgradeID, a.ProtocolID,
		a.TechnicalScore, a.GovernanceScore, a.MarketScore, a.LiquidityScore, a.OverallScore,
		string(factors), string(recs), a.CreatedAt,
	)
	return err
}

const assessmentCols = "id, upgrade_id, protocol_id, technical_score, governance_score, market_score, liquidity_score, overall_score, factors, recommendations, created_at"

func (s *CHAssessmentStore) scanAll(rows *sql.Rows) ([]models.RiskAssessment, error) {
	defer rows.Close()
	var out []models.RiskAssessment
	for rows.Next() {
		var a models.RiskAssessment
		var factors, recs string
		if err := rows.Scan(&a.ID, &a.UpgradeID, &a.ProtocolID,
			&a.TechnicalScore, &a.GovernanceScore, &a.MarketScore, &a.LiquidityScore, &a.OverallScore,
			&factors, &recs, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		if err := json.Unmarshal([]byte(factors), &a.Factors); err != nil {
			return nil, fmt.Errorf("decode factors: %w", err)
		}
		if err := json.Unmarshal([]byte(recs), &a.Recommendations); err != nil {
			return nil, fmt.Errorf("decode recommendations: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListByProtocol returns assessments since the given time, most recent first.
func (s *CHAssessmentStore) ListByProtocol(ctx context.Context, protocolID string, since time.Time) ([]models.RiskAssessment, error) {
	q := fmt.Sprintf("SELECT %s FROM pum.risk_assessments WHERE protocol_id = ? AND created_at >= ? ORDER BY created_at DESC", assessmentCols)
	rows, err := s.db.QueryContext(ctx, q, protocolID, since)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return s.scanAll(rows)
}

// ListRecent returns the most recent assessments across protocols for model
// training.
func (s *CHAssessmentStore) ListRecent(ctx context.Context, limit int) ([]models.RiskAssessment, error) {
	q := fmt.Sprintf("SELECT %s FROM pum.risk_assessments ORDER BY created_at DESC LIMIT ?", assessmentCols)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent assessments: %w", err)
	}
	return s.scanAll(rows)
}
