package timeseries

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DaysPerYear is the annualization base for daily series.
const DaysPerYear = 365

// LogReturns computes r_t = ln(x_t / x_{t-1}). Non-positive neighbors yield a
// zero return. Returns nil below two points.
func LogReturns(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// Mean returns the arithmetic mean, zero for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// Std returns the sample standard deviation, zero below two points.
func Std(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// AnnualizedVol converts the std of daily log returns to an annual figure.
func AnnualizedVol(returns []float64) float64 {
	return Std(returns) * math.Sqrt(DaysPerYear)
}

// Diff returns the first difference of the series.
func Diff(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		out[i-1] = series[i] - series[i-1]
	}
	return out
}

// Demean subtracts the mean in place and returns the slice.
func Demean(xs []float64) []float64 {
	m := Mean(xs)
	for i := range xs {
		xs[i] -= m
	}
	return xs
}
