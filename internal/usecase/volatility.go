package usecase

import (
	"context"
	"time"

	"PUM/internal/domain/models"
	domrepo "PUM/internal/domain/repository"
	"PUM/internal/services/evaluate"
	"PUM/internal/services/forecast"
	"PUM/internal/services/timeseries"
)

// VolatilityUsecase orchestrates the volatility forecasting flow: fetch
// history, prepare the daily series, run the engine, persist the prediction.
type VolatilityUsecase struct {
	market   domrepo.MarketReader
	upgrades domrepo.UpgradeStore
	preds    domrepo.PredictionStore
	engine   *forecast.VolatilityEngine
	eval     *evaluate.Evaluator
	metrics  domrepo.Metrics
}

func NewVolatilityUsecase(
	market domrepo.MarketReader,
	upgrades domrepo.UpgradeStore,
	preds domrepo.PredictionStore,
	engine *forecast.VolatilityEngine,
	eval *evaluate.Evaluator,
	metrics domrepo.Metrics,
) *VolatilityUsecase {
	return &VolatilityUsecase{
		market:   market,
		upgrades: upgrades,
		preds:    preds,
		engine:   engine,
		eval:     eval,
		metrics:  metrics,
	}
}

// Predict forecasts volatility over the horizon for the token around the
// given upgrade. A computed prediction that fails to persist is an error, not
// a silent drop.
func (u *VolatilityUsecase) Predict(ctx context.Context, token, upgradeID string, horizon int, asymmetric bool) (*models.VolatilityPrediction, error) {
	if _, err := u.upgrades.GetUpgrade(ctx, upgradeID); err != nil {
		return nil, err
	}

	start := time.Now()
	now := time.Now().UTC()
	points, err := u.market.GetRange(ctx, token, now.AddDate(0, 0, -domrepo.WindowFitHistory), now)
	if err != nil {
		return nil, models.PersistenceError("read market history", err)
	}
	prices, err := timeseries.DailyPrices(points, timeseries.MinFitPoints)
	if err != nil {
		return nil, err
	}

	pred, err := u.engine.Predict(token, upgradeID, prices, horizon, asymmetric)
	if err != nil {
		return nil, err
	}
	if err := u.preds.InsertVolatility(ctx, pred); err != nil {
		return nil, models.PersistenceError("insert volatility prediction", err)
	}
	if u.metrics != nil {
		u.metrics.RecordLatency("volatility_predict", time.Since(start).Seconds())
	}
	return pred, nil
}

// Regime analyzes volatility behavior in the windows around the upgrade
// anchor.
func (u *VolatilityUsecase) Regime(ctx context.Context, token, upgradeID string) (*models.VolatilityRegime, error) {
	upgrade, err := u.upgrades.GetUpgrade(ctx, upgradeID)
	if err != nil {
		return nil, err
	}

	anchor := upgrade.AnchorTime()
	pre, err := u.market.GetRange(ctx, token, anchor.AddDate(0, 0, -domrepo.WindowRegime), anchor)
	if err != nil {
		return nil, models.PersistenceError("read pre-upgrade window", err)
	}
	post, err := u.market.GetRange(ctx, token, anchor, anchor.AddDate(0, 0, domrepo.WindowRegime))
	if err != nil {
		return nil, models.PersistenceError("read post-upgrade window", err)
	}
	return u.engine.Regime(token, upgrade, pre, post)
}

// History returns stored predictions for the token in the lookback window.
func (u *VolatilityUsecase) History(ctx context.Context, token string, days int) ([]models.VolatilityPrediction, error) {
	days = domrepo.ClampDays(days, domrepo.WindowEvaluation, 365)
	since := time.Now().UTC().AddDate(0, 0, -days)
	preds, err := u.preds.ListVolatilityByToken(ctx, token, since)
	if err != nil {
		return nil, models.PersistenceError("list volatility predictions", err)
	}
	return preds, nil
}

// Evaluate scores stored predictions against realized volatility.
func (u *VolatilityUsecase) Evaluate(ctx context.Context, token string, days int) (*models.ModelPerformance, error) {
	days = domrepo.ClampDays(days, domrepo.WindowEvaluation, 365)
	return u.eval.Volatility(ctx, token, days)
}
