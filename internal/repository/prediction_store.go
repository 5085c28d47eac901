package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"PUM/internal/domain/models"
)

// CHPredictionStore appends and reads forecast history.
type CHPredictionStore struct {
	db *sql.DB
}

func NewCHPredictionStore(db *sql.DB) *CHPredictionStore {
	return &CHPredictionStore{db: db}
}

func (s *CHPredictionStore) InsertVolatility(ctx context.Context, p *models.VolatilityPrediction) error {
	forecast, err := json.Marshal(p.Forecast)
	if err != nil {
		return fmt.Errorf("marshal forecast: %w", err)
	}
	params, err := json.Marshal(p.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	q := `INSERT INTO pum.volatility_predictions
		(token_symbol, upgrade_id, model, horizon_days, forecast, predicted_value, ci_lower, ci_upper, params, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		p.TokenSymbol, p.UpgradeID, p.Model, int32(p.HorizonDays),
		string(forecast), p.PredictedValue, p.ConfidenceLower, p.ConfidenceUpper,
		string(params), p.CreatedAt,
	)
	return err
}

func (s *CHPredictionStore) InsertLiquidity(ctx context.Context, p *models.LiquidityPrediction) error {
	forecast, err := json.Marshal(p.Forecast)
	if err != nil {
		return fmt.Errorf("marshal forecast: %w", err)
	}
	q := `INSERT INTO pum.liquidity_predictions
		(protocol_id, upgrade_id, model, p, d, q, horizon_days, forecast, predicted_value, change_pct, ci_lower, ci_upper, aic, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		p.ProtocolID, p.UpgradeID, p.Model,
		int32(p.Order[0]), int32(p.Order[1]), int32(p.Order[2]),
		int32(p.HorizonDays), string(forecast), p.PredictedValue, p.ChangePct,
		p.ConfidenceLower, p.ConfidenceUpper, p.AIC, p.CreatedAt,
	)
	return err
}

// ListVolatilityByToken returns stored volatility predictions since the given
// time, ascending by creation.
func (s *CHPredictionStore) ListVolatilityByToken(ctx context.Context, token string, since time.Time) ([]models.VolatilityPrediction, error) {
	q := `SELECT id, token_symbol, upgrade_id, model, horizon_days, forecast, predicted_value, ci_lower, ci_upper, params, created_at
		FROM pum.volatility_predictions WHERE token_symbol = ? AND created_at >= ? ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, q, token, since)
	if err != nil {
		return nil, fmt.Errorf("list volatility predictions: %w", err)
	}
	defer rows.Close()

	var out []models.VolatilityPrediction
	for rows.Next() {
		var p models.VolatilityPrediction
		var horizon int32
		var forecast, params string
		if err := rows.Scan(&p.ID, &p.TokenSymbol, &p.UpgradeID, &p.Model, &horizon,
			&forecast, &p.PredictedValue, &p.ConfidenceLower, &p.ConfidenceUpper, &params, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan volatility prediction: %w", err)
		}
		p.HorizonDays = int(horizon)
		if err := json.Unmarshal([]byte(forecast), &p.Forecast); err != nil {
			return nil, fmt.Errorf("decode forecast: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &p.Params); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListLiquidityByProtocol returns stored liquidity predictions since the
// given time, ascending by creation.
func (s *CHPredictionStore) ListLiquidityByProtocol(ctx context.Context, protocolID string, since time.Time) ([]models.LiquidityPrediction, error) {
	q := `SELECT id, protocol_id, upgrade_id, model, p, d, q, horizon_days, forecast, predicted_value, change_pct, ci_lower, ci_upper, aic, created_at
		FROM pum.liquidity_predictions WHERE protocol_id = ? AND created_at >= ? ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, q, protocolID, since)
	if err != nil {
		return nil, fmt.Errorf("list liquidity predictions: %w", err)
	}
	defer rows.Close()

	var out []models.LiquidityPrediction
	for rows.Next() {
		var lp models.LiquidityPrediction
		var ord [3]int32
		var horizon int32
		var forecast string
		if err := rows.Scan(&lp.ID, &lp.ProtocolID, &lp.UpgradeID, &lp.Model,
			&ord[0], &ord[1], &ord[2], &horizon, &forecast, &lp.PredictedValue, &lp.ChangePct,
			&lp.ConfidenceLower, &lp.ConfidenceUpper, &lp.AIC, &lp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan liquidity prediction: %w", err)
		}
		lp.Order = [3]int{int(ord[0]), int(ord[1]), int(ord[2])}
		lp.HorizonDays = int(horizon)
		if err := json.Unmarshal([]byte(forecast), &lp.Forecast); err != nil {
			return nil, fmt.Errorf("decode forecast: %w", err)
		}
		out = append(out, lp)
	}
	return out, rows.Err()
}
