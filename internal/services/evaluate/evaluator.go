package evaluate

import (
	"context"
	"math"
	"time"

	"PUM/internal/domain/models"
	"PUM/internal/domain/repository"
	"PUM/internal/services/timeseries"
	"PUM/pkg/logger"
)

// Minimum history before accuracy metrics are meaningful.
const (
	minPredictions = 10
	minValidPairs  = 5
)

// Evaluator scores stored forecasts against realized observations.
type Evaluator struct {
	market repository.MarketReader
	preds  repository.PredictionStore
	log    *logger.Logger
}

func New(market repository.MarketReader, preds repository.PredictionStore, log *logger.Logger) *Evaluator {
	return &Evaluator{market: market, preds: preds, log: log}
}

// pair is one realized/predicted observation.
type pair struct {
	actual, predicted float64
}

func metrics(pairs []pair) (mse, rmse, mae, meanA, meanP float64) {
	n := float64(len(pairs))
	for _, p := range pairs {
		d := p.actual - p.predicted
		mse += d * d
		mae += math.Abs(d)
		meanA += p.actual
		meanP += p.predicted
	}
	mse /= n
	mae /= n
	meanA /= n
	meanP /= n
	rmse = math.Sqrt(mse)
	return
}

func insufficient(model string, predictions, valid, days int) *models.ModelPerformance {
	return &models.ModelPerformance{
		Model:       model,
		Sufficient:  false,
		Predictions: predictions,
		ValidPairs:  valid,
		WindowDays:  days,
	}
}

// Volatility pairs each stored volatility prediction with the realized daily
// volatility over [creation, creation+horizon]. Below the history minimums it
// returns an explicit insufficient result, never an error.
func (e *Evaluator) Volatility(ctx context.Context, token string, days int) (*models.ModelPerformance, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	preds, err := e.preds.ListVolatilityByToken(ctx, token, since)
	if err != nil {
		return nil, models.PersistenceError("list volatility predictions", err)
	}
	if len(preds) < minPredictions {
		return insufficient("volatility", len(preds), 0, days), nil
	}

	var pairs []pair
	for _, p := range preds {
		realized, ok := e.realizedVol(ctx, token, p.CreatedAt, p.HorizonDays)
		if !ok {
			continue
		}
		pairs = append(pairs, pair{actual: realized, predicted: p.PredictedValue})
	}
	if len(pairs) < minValidPairs {
		return insufficient("volatility", len(preds), len(pairs), days), nil
	}

	mse, rmse, mae, meanA, meanP := metrics(pairs)
	return &models.ModelPerformance{
		Model:         "volatility",
		Sufficient:    true,
		Predictions:   len(preds),
		ValidPairs:    len(pairs),
		MSE:           mse,
		RMSE:          rmse,
		MAE:           mae,
		MeanActual:    meanA,
		MeanPredicted: meanP,
		WindowDays:    days,
	}, nil
}

func (e *Evaluator) realizedVol(ctx context.Context, token string, from time.Time, horizonDays int) (float64, bool) {
	to := from.AddDate(0, 0, horizonDays)
	if to.After(time.Now().UTC()) {
		return 0, false // horizon not elapsed yet
	}
	points, err := e.market.GetRange(ctx, token, from, to)
	if err != nil || len(points) < 3 {
		return 0, false
	}
	daily, err := timeseries.DailyPrices(points, 3)
	if err != nil {
		return 0, false
	}
	return timeseries.Std(timeseries.LogReturns(daily)), true
}

// Liquidity pairs each stored liquidity prediction with the realized percent
// change of the TVL proxy over the prediction horizon.
func (e *Evaluator) Liquidity(ctx context.Context, protocol string, days int) (*models.ModelPerformance, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	preds, err := e.preds.ListLiquidityByProtocol(ctx, protocol, since)
	if err != nil {
		return nil, models.PersistenceError("list liquidity predictions", err)
	}
	if len(preds) < minPredictions {
		return insufficient("liquidity", len(preds), 0, days), nil
	}

	var pairs []pair
	for _, p := range preds {
		realized, ok := e.realizedChange(ctx, protocol, p.CreatedAt, p.HorizonDays)
		if !ok {
			continue
		}
		pairs = append(pairs, pair{actual: realized, predicted: p.ChangePct})
	}
	if len(pairs) < minValidPairs {
		return insufficient("liquidity", len(preds), len(pairs), days), nil
	}

	mse, rmse, mae, meanA, meanP := metrics(pairs)
	return &models.ModelPerformance{
		Model:         "liquidity",
		Sufficient:    true,
		Predictions:   len(preds),
		ValidPairs:    len(pairs),
		MSE:           mse,
		RMSE:          rmse,
		MAE:           mae,
		MeanActual:    meanA,
		MeanPredicted: meanP,
		WindowDays:    days,
	}, nil
}

func (e *Evaluator) realizedChange(ctx context.Context, protocol string, from time.Time, horizonDays int) (float64, bool) {
	to := from.AddDate(0, 0, horizonDays)
	if to.After(time.Now().UTC()) {
		return 0, false
	}
	points, err := e.market.GetRange(ctx, protocol, from, to)
	if err != nil || len(points) < 2 {
		return 0, false
	}
	daily, err := timeseries.DailyTVL(points, 2)
	if err != nil {
		return 0, false
	}
	first, last := daily[0], daily[len(daily)-1]
	if first == 0 {
		return 0, false
	}
	return (last - first) / first * 100, true
}
