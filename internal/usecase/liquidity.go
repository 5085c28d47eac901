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

// LiquidityUsecase orchestrates the liquidity forecasting flow.
type LiquidityUsecase struct {
	market   domrepo.MarketReader
	upgrades domrepo.UpgradeStore
	preds    domrepo.PredictionStore
	engine   *forecast.LiquidityEngine
	eval     *evaluate.Evaluator
	metrics  domrepo.Metrics
}

func NewLiquidityUsecase(
	market domrepo.MarketReader,
	upgrades domrepo.UpgradeStore,
	preds domrepo.PredictionStore,
	engine *forecast.LiquidityEngine,
	eval *evaluate.Evaluator,
	metrics domrepo.Metrics,
) *LiquidityUsecase {
	return &LiquidityUsecase{
		market:   market,
		upgrades: upgrades,
		preds:    preds,
		engine:   engine,
		eval:     eval,
		metrics:  metrics,
	}
}

// Predict forecasts the TVL proxy over the horizon for the protocol around
// the given upgrade and persists the prediction.
func (u *LiquidityUsecase) Predict(ctx context.Context, protocol, upgradeID string, horizon int) (*models.LiquidityPrediction, error) {
	if _, err := u.upgrades.GetUpgrade(ctx, upgradeID); err != nil {
		return nil, err
	}

	start := time.Now()
	pred, err := u.predict(ctx, protocol, upgradeID, horizon)
	if err != nil {
		return nil, err
	}
	if err := u.preds.InsertLiquidity(ctx, pred); err != nil {
		return nil, models.PersistenceError("insert liquidity prediction", err)
	}
	if u.metrics != nil {
		u.metrics.RecordLatency("liquidity_predict", time.Since(start).Seconds())
	}
	return pred, nil
}

// predict computes without persisting; Flow uses it for both legs.
func (u *LiquidityUsecase) predict(ctx context.Context, protocol, upgradeID string, horizon int) (*models.LiquidityPrediction, error) {
	now := time.Now().UTC()
	points, err := u.market.GetRange(ctx, protocol, now.AddDate(0, 0, -domrepo.WindowFitHistory), now)
	if err != nil {
		return nil, models.PersistenceError("read market history", err)
	}
	tvl, err := timeseries.DailyTVL(points, timeseries.MinFitPoints)
	if err != nil {
		return nil, err
	}
	return u.engine.Predict(protocol, upgradeID, tvl, horizon)
}

// Flow predicts liquidity migration between two protocols around a shared
// upgrade: two independent 7-day forecasts, compared.
func (u *LiquidityUsecase) Flow(ctx context.Context, source, target, upgradeID string) (*models.CrossProtocolFlow, error) {
	if _, err := u.upgrades.GetUpgrade(ctx, upgradeID); err != nil {
		return nil, err
	}

	const flowHorizon = 7
	src, err := u.predict(ctx, source, upgradeID, flowHorizon)
	if err != nil {
		return nil, err
	}
	dst, err := u.predict(ctx, target, upgradeID, flowHorizon)
	if err != nil {
		return nil, err
	}
	return u.engine.Flow(src, dst), nil
}

// Regime analyzes liquidity behavior in the windows around the upgrade
// anchor.
func (u *LiquidityUsecase) Regime(ctx context.Context, protocol, upgradeID string) (*models.LiquidityRegime, error) {
	upgrade, err := u.upgrades.GetUpgrade(ctx, upgradeID)
	if err != nil {
		return nil, err
	}

	anchor := upgrade.AnchorTime()
	pre, err := u.market.GetRange(ctx, protocol, anchor.AddDate(0, 0, -domrepo.WindowRegime), anchor)
	if err != nil {
		return nil, models.PersistenceError("read pre-upgrade window", err)
	}
	post, err := u.market.GetRange(ctx, protocol, anchor, anchor.AddDate(0, 0, domrepo.WindowRegime))
	if err != nil {
		return nil, models.PersistenceError("read post-upgrade window", err)
	}
	return u.engine.Regime(protocol, upgrade, pre, post)
}

// History returns stored predictions for the protocol in the lookback window.
func (u *LiquidityUsecase) History(ctx context.Context, protocol string, days int) ([]models.LiquidityPrediction, error) {
	days = domrepo.ClampDays(days, domrepo.WindowEvaluation, 365)
	since := time.Now().UTC().AddDate(0, 0, -days)
	preds, err := u.preds.ListLiquidityByProtocol(ctx, protocol, since)
	if err != nil {
		return nil, models.PersistenceError("list liquidity predictions", err)
	}
	return preds, nil
}

// Evaluate scores stored predictions against realized TVL changes.
func (u *LiquidityUsecase) Evaluate(ctx context.Context, protocol string, days int) (*models.ModelPerformance, error) {
	days = domrepo.ClampDays(days, domrepo.WindowEvaluation, 365)
	return u.eval.Liquidity(ctx, protocol, days)
}
