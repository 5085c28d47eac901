package evaluate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PUM/internal/domain/models"
	"PUM/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	return l
}

type fakeMarket struct {
	points []models.MarketPoint
}

func (f *fakeMarket) GetRange(_ context.Context, _ string, from, to time.Time) ([]models.MarketPoint, error) {
	var out []models.MarketPoint
	for _, p := range f.points {
		if !p.Timestamp.Before(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeMarket) GetLatestN(_ context.Context, _ string, n int) ([]models.MarketPoint, error) {
	if n > len(f.points) {
		n = len(f.points)
	}
	return f.points[len(f.points)-n:], nil
}

type fakePreds struct {
	vol []models.VolatilityPrediction
	liq []models.LiquidityPrediction
}

func (f *fakePreds) InsertVolatility(_ context.Context, _ *models.VolatilityPrediction) error {
	return nil
}
func (f *fakePreds) InsertLiquidity(_ context.Context, _ *models.LiquidityPrediction) error {
	return nil
}
func (f *fakePreds) ListVolatilityByToken(_ context.Context, _ string, _ time.Time) ([]models.VolatilityPrediction, error) {
	return f.vol, nil
}
func (f *fakePreds) ListLiquidityByProtocol(_ context.Context, _ string, _ time.Time) ([]models.LiquidityPrediction, error) {
	return f.liq, nil
}

func TestVolatilityTooFewPredictions(t *testing.T) {
	preds := &fakePreds{vol: make([]models.VolatilityPrediction, 9)}
	e := New(&fakeMarket{}, preds, testLogger(t))

	perf, err := e.Volatility(context.Background(), "WETH", 90)
	require.NoError(t, err)
	require.False(t, perf.Sufficient)
	require.Equal(t, 9, perf.Predictions)
	require.Equal(t, 0, perf.ValidPairs)
	require.Equal(t, 90, perf.WindowDays)
}

func TestVolatilityUnelapsedHorizonsInsufficientPairs(t *testing.T) {
	now := time.Now().UTC()
	vol := make([]models.VolatilityPrediction, 0, 12)
	for i := 0; i < 12; i++ {
		// created just now with a 7 day horizon: nothing has elapsed
		vol = append(vol, models.VolatilityPrediction{
			HorizonDays: 7,
			CreatedAt:   now,
		})
	}
	e := New(&fakeMarket{}, &fakePreds{vol: vol}, testLogger(t))

	perf, err := e.Volatility(context.Background(), "WETH", 90)
	require.NoError(t, err)
	require.False(t, perf.Sufficient)
	require.Equal(t, 12, perf.Predictions)
	require.Equal(t, 0, perf.ValidPairs)
}

func TestLiquiditySufficientHistory(t *testing.T) {
	now := time.Now().UTC()
	created := now.AddDate(0, 0, -30)

	// daily TVL doubling over each horizon window via market cap
	var points []models.MarketPoint
	for i := 0; i < 30; i++ {
		points = append(points, models.MarketPoint{
			MarketCap: 1000 + 100*float64(i),
			Timestamp: created.AddDate(0, 0, i),
		})
	}

	liq := make([]models.LiquidityPrediction, 0, 10)
	for i := 0; i < 10; i++ {
		liq = append(liq, models.LiquidityPrediction{
			HorizonDays: 7,
			ChangePct:   50,
			CreatedAt:   created,
		})
	}
	e := New(&fakeMarket{points: points}, &fakePreds{liq: liq}, testLogger(t))

	perf, err := e.Liquidity(context.Background(), "uniswap", 90)
	require.NoError(t, err)
	require.True(t, perf.Sufficient)
	require.Equal(t, 10, perf.Predictions)
	require.Equal(t, 10, perf.ValidPairs)
	// realized change over 7 days: 1000 -> 1700
	require.InDelta(t, 70, perf.MeanActual, 1e-9)
	require.InDelta(t, 50, perf.MeanPredicted, 1e-9)
	require.InDelta(t, 20, perf.MAE, 1e-9)
	require.InDelta(t, 400, perf.MSE, 1e-9)
	require.InDelta(t, 20, perf.RMSE, 1e-9)
}

func TestLiquidityTooFewPredictions(t *testing.T) {
	e := New(&fakeMarket{}, &fakePreds{liq: make([]models.LiquidityPrediction, 3)}, testLogger(t))
	perf, err := e.Liquidity(context.Background(), "uniswap", 30)
	require.NoError(t, err)
	require.False(t, perf.Sufficient)
	require.Equal(t, 3, perf.Predictions)
}
