package timeseries

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ADFResult holds the augmented Dickey-Fuller test outcome.
type ADFResult struct {
	Stat       float64
	PValue     float64
	Lags       int
	Stationary bool // PValue < 0.05
}

// adfAlpha is the significance level for the unit-root rejection.
const adfAlpha = 0.05

// Asymptotic quantiles of the Dickey-Fuller tau distribution (constant case),
// interpolated linearly for the approximate p-value.
var adfQuantiles = []struct{ t, p float64 }{
	{-3.96, 0.001},
	{-3.43, 0.010},
	{-3.12, 0.025},
	{-2.86, 0.050},
	{-2.57, 0.100},
	{-1.57, 0.500},
	{-0.44, 0.900},
	{-0.07, 0.950},
	{0.23, 0.975},
	{0.60, 0.990},
}

func adfPValue(t float64) float64 {
	q := adfQuantiles
	if t <= q[0].t {
		return q[0].p
	}
	if t >= q[len(q)-1].t {
		return 0.999
	}
	for i := 1; i < len(q); i++ {
		if t <= q[i].t {
			frac := (t - q[i-1].t) / (q[i].t - q[i-1].t)
			return q[i-1].p + frac*(q[i].p-q[i-1].p)
		}
	}
	return 0.999
}

// ADF runs an augmented Dickey-Fuller regression with a constant term:
//
//	dy_t = c + rho*y_{t-1} + sum(phi_i * dy_{t-i}) + e_t
//
// The lag order follows the Schwert rule. Series too short or too degenerate
// to regress are reported stationary, since differencing them further cannot
// help.
func ADF(series []float64) ADFResult {
	n := len(series)
	if n < 10 {
		return ADFResult{Stationary: true}
	}
	dy := Diff(series)

	lags := int(math.Floor(12 * math.Pow(float64(n)/100, 0.25)))
	for lags > 0 && len(dy)-lags < 3*(lags+2) {
		lags--
	}

	rows := len(dy) - lags
	cols := 2 + lags
	if rows <= cols {
		return ADFResult{Stationary: true}
	}

	x := mat.NewDense(rows, cols, nil)
	y := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		t := i + lags // index into dy
		y.SetVec(i, dy[t])
		x.Set(i, 0, 1)
		x.Set(i, 1, series[t]) // y_{t-1} in level space
		for j := 1; j <= lags; j++ {
			x.Set(i, 1+j, dy[t-j])
		}
	}

	var qr mat.QR
	qr.Factorize(x)
	beta := mat.NewDense(cols, 1, nil)
	if err := qr.SolveTo(beta, false, y); err != nil {
		return ADFResult{Stationary: true, Lags: lags}
	}

	var fitted mat.Dense
	fitted.Mul(x, beta)
	rss := 0.0
	for i := 0; i < rows; i++ {
		r := y.AtVec(i) - fitted.At(i, 0)
		rss += r * r
	}
	sigma2 := rss / float64(rows-cols)

	var xtx, inv mat.Dense
	xtx.Mul(x.T(), x)
	if err := inv.Inverse(&xtx); err != nil {
		return ADFResult{Stationary: true, Lags: lags}
	}
	se := math.Sqrt(sigma2 * inv.At(1, 1))
	if se == 0 || math.IsNaN(se) {
		return ADFResult{Stationary: true, Lags: lags}
	}

	stat := beta.At(1, 0) / se
	p := adfPValue(stat)
	return ADFResult{Stat: stat, PValue: p, Lags: lags, Stationary: p < adfAlpha}
}

// StationarySeries is a series transformed to (approximate) stationarity,
// carrying enough state to map forecasts back to level space.
type StationarySeries struct {
	Values      []float64
	Differences int
	ADF         ADFResult
	tails       []float64 // last value at each level, outermost first
}

// MakeStationary applies at most two rounds of first differencing: none when
// the series already passes the ADF test, one when the differenced series
// passes, and a second accepted unconditionally.
func MakeStationary(series []float64) StationarySeries {
	res := ADF(series)
	if res.Stationary {
		return StationarySeries{Values: series, ADF: res}
	}

	tails := []float64{series[len(series)-1]}
	d1 := Diff(series)
	res = ADF(d1)
	if res.Stationary {
		return StationarySeries{Values: d1, Differences: 1, ADF: res, tails: tails}
	}

	tails = append(tails, d1[len(d1)-1])
	d2 := Diff(d1)
	return StationarySeries{Values: d2, Differences: 2, ADF: res, tails: tails}
}

// Integrate maps a forecast made in the differenced space back to level space
// by cumulating through each recorded tail, innermost difference first.
func (s StationarySeries) Integrate(forecast []float64) []float64 {
	out := append([]float64(nil), forecast...)
	for lvl := len(s.tails) - 1; lvl >= 0; lvl-- {
		running := s.tails[lvl]
		for i := range out {
			running += out[i]
			out[i] = running
		}
	}
	return out
}
