package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// quasi-random but deterministic values in [-1, 1]
func noise(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(float64(i*i) + 0.7)
	}
	return out
}

func TestADFStationaryNoise(t *testing.T) {
	res := ADF(noise(200))
	require.True(t, res.Stationary)
	require.Less(t, res.PValue, 0.05)
}

func TestADFShortSeriesStationary(t *testing.T) {
	res := ADF([]float64{1, 2, 3})
	require.True(t, res.Stationary)
}

func TestADFExponentialGrowthNotStationary(t *testing.T) {
	series := make([]float64, 120)
	for i := range series {
		series[i] = 100*math.Pow(1.05, float64(i)) + math.Sin(float64(i*i))
	}
	res := ADF(series)
	require.False(t, res.Stationary)
}

func TestMakeStationaryAtMostTwoDifferences(t *testing.T) {
	series := make([]float64, 120)
	for i := range series {
		series[i] = 100*math.Pow(1.05, float64(i)) + math.Sin(float64(i*i))
	}
	st := MakeStationary(series)
	require.LessOrEqual(t, st.Differences, 2)
	require.GreaterOrEqual(t, st.Differences, 1)
	require.Equal(t, len(series)-st.Differences, len(st.Values))
}

func TestMakeStationaryNoiseUnchanged(t *testing.T) {
	series := noise(200)
	st := MakeStationary(series)
	require.Equal(t, 0, st.Differences)
	require.Equal(t, series, st.Values)
}

func TestIntegrateSingleDifference(t *testing.T) {
	s := StationarySeries{Differences: 1, tails: []float64{100}}
	got := s.Integrate([]float64{2, 3, -1})
	require.Equal(t, []float64{102, 105, 104}, got)
}

func TestIntegrateDoubleDifference(t *testing.T) {
	// last level 100, last first-difference 5
	s := StationarySeries{Differences: 2, tails: []float64{100, 5}}
	got := s.Integrate([]float64{0, 0, 0})
	require.Equal(t, []float64{105, 110, 115}, got)
}

func TestIntegrateNoDifferencesIsIdentity(t *testing.T) {
	s := StationarySeries{}
	got := s.Integrate([]float64{1, 2, 3})
	require.Equal(t, []float64{1, 2, 3}, got)
}
