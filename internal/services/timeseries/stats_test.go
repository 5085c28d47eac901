package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogReturns(t *testing.T) {
	got := LogReturns([]float64{100, 110, 110})
	require.Len(t, got, 2)
	require.InDelta(t, math.Log(1.1), got[0], 1e-12)
	require.Equal(t, 0.0, got[1])
}

func TestLogReturnsNonPositive(t *testing.T) {
	got := LogReturns([]float64{100, 0, 50})
	require.Equal(t, []float64{0, 0}, got)

	require.Nil(t, LogReturns([]float64{100}))
}

func TestAnnualizedVol(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.01, -0.01}
	want := Std(returns) * math.Sqrt(365)
	require.InDelta(t, want, AnnualizedVol(returns), 1e-12)
	require.Greater(t, AnnualizedVol(returns), 0.0)
}

func TestDiffAndDemean(t *testing.T) {
	require.Equal(t, []float64{1, 2, -3}, Diff([]float64{0, 1, 3, 0}))
	require.Nil(t, Diff([]float64{5}))

	xs := Demean([]float64{1, 2, 3})
	require.InDelta(t, 0, Mean(xs), 1e-12)
	require.InDelta(t, -1, xs[0], 1e-12)
}
