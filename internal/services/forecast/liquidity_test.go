package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PUM/internal/domain/models"
)

func TestLiquidityPredictInsufficientData(t *testing.T) {
	e := NewLiquidityEngine(testLogger(t), nil)
	_, err := e.Predict("uniswap", "u-1", []float64{1, 2, 3}, 7)
	require.True(t, errors.Is(err, models.ErrInsufficientData))
}

func TestLiquidityPredictConstantSeriesFallsBack(t *testing.T) {
	e := NewLiquidityEngine(testLogger(t), nil)
	tvl := make([]float64, 60)
	for i := range tvl {
		tvl[i] = 1000
	}
	pred, err := e.Predict("uniswap", "u-1", tvl, 7)
	require.NoError(t, err)
	require.Equal(t, models.ModelLinearTrend, pred.Model)
	require.Len(t, pred.Forecast, 7)
	require.InDelta(t, 1000, pred.PredictedValue, 1e-9)
	require.InDelta(t, 0, pred.ChangePct, 1e-9)
	require.InDelta(t, 1000, pred.ConfidenceLower, 1e-9)
	require.InDelta(t, 1000, pred.ConfidenceUpper, 1e-9)
}

func TestLiquidityPredictNoisySeries(t *testing.T) {
	e := NewLiquidityEngine(testLogger(t), nil)
	tvl := make([]float64, 90)
	for i := range tvl {
		tvl[i] = 1_000_000 + 50_000*math.Sin(float64(i*i)) + 2_000*float64(i)
	}
	pred, err := e.Predict("uniswap", "u-1", tvl, 7)
	require.NoError(t, err)

	require.Contains(t, []string{models.ModelARIMA, models.ModelLinearTrend}, pred.Model)
	require.Len(t, pred.Forecast, 7)
	require.Equal(t, pred.Forecast[6], pred.PredictedValue)
	require.Less(t, pred.ConfidenceLower, pred.ConfidenceUpper)
	if pred.Model == models.ModelARIMA {
		require.Equal(t, [3]int{1, 1, 1}, pred.Order)
		require.False(t, math.IsNaN(pred.AIC))
	}
	// forecasts live in level space, nowhere near the differenced scale
	last := tvl[len(tvl)-1]
	for _, v := range pred.Forecast {
		require.Greater(t, v, last/2)
		require.Less(t, v, last*2)
	}
}

func TestLiquidityPredictIntervalCentersOnForecast(t *testing.T) {
	e := NewLiquidityEngine(testLogger(t), nil)
	tvl := make([]float64, 30)
	for i := range tvl {
		tvl[i] = 100 + 10*float64(i)
	}
	// On a steep trend with a long horizon the point forecast moves far from
	// the last observation; the interval has to follow it.
	pred, err := e.Predict("uniswap", "u-1", tvl, 20)
	require.NoError(t, err)
	require.LessOrEqual(t, pred.ConfidenceLower, pred.PredictedValue)
	require.GreaterOrEqual(t, pred.ConfidenceUpper, pred.PredictedValue)
	spread := pred.ConfidenceUpper - pred.ConfidenceLower
	require.InDelta(t, pred.PredictedValue, pred.ConfidenceLower+spread/2, 1e-6)
}

func TestFlowDirection(t *testing.T) {
	e := NewLiquidityEngine(testLogger(t), nil)
	src := &models.LiquidityPrediction{ProtocolID: "aave", UpgradeID: "u-1", ChangePct: 5, HorizonDays: 7}
	dst := &models.LiquidityPrediction{ProtocolID: "uniswap", UpgradeID: "u-1", ChangePct: 12, HorizonDays: 7}

	flow := e.Flow(src, dst)
	require.Equal(t, "inflow", flow.Direction)
	require.InDelta(t, 7, flow.FlowPct, 1e-9)
	require.InDelta(t, 7, flow.Magnitude, 1e-9)
	require.Equal(t, "aave", flow.SourceProtocol)
	require.Equal(t, "uniswap", flow.TargetProtocol)

	back := e.Flow(dst, src)
	require.Equal(t, "outflow", back.Direction)
	require.InDelta(t, -7, back.FlowPct, 1e-9)
	require.InDelta(t, 7, back.Magnitude, 1e-9)
}

func TestLiquidityRegimeGrowth(t *testing.T) {
	e := NewLiquidityEngine(testLogger(t), nil)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	pre := make([]models.MarketPoint, 0, 10)
	post := make([]models.MarketPoint, 0, 10)
	for i := 0; i < 10; i++ {
		pre = append(pre, models.MarketPoint{MarketCap: 1000, Timestamp: base.AddDate(0, 0, i)})
		post = append(post, models.MarketPoint{MarketCap: 1500, Timestamp: base.AddDate(0, 0, 20+i)})
	}

	u := &models.Upgrade{ID: "u-1", CreatedAt: base.AddDate(0, 0, 15)}
	regime, err := e.Regime("uniswap", u, pre, post)
	require.NoError(t, err)
	require.InDelta(t, 50, regime.TVLChangePct, 1e-9)
	require.Equal(t, "stable_growth", regime.Regime)
}

func TestClassifyLiqRegime(t *testing.T) {
	cases := []struct {
		tvl, vol float64
		want     string
	}{
		{20, 5, "stable_growth"},
		{20, 40, "volatile_growth"},
		{-20, 5, "stable_decline"},
		{-20, 40, "volatile_decline"},
		{0, 40, "high_volatility_stable"},
		{0, 0, "stable"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, classifyLiqRegime(c.tvl, c.vol))
	}
}

func TestFitLinearTrend(t *testing.T) {
	series := make([]float64, 20)
	for i := range series {
		series[i] = 3 + 2*float64(i)
	}
	m, err := FitLinearTrend(series)
	require.NoError(t, err)
	require.InDelta(t, 2, m.Slope, 1e-9)

	got := m.Forecast(3)
	require.InDelta(t, series[19]+2, got[0], 1e-9)
	require.InDelta(t, series[19]+6, got[2], 1e-9)
}
