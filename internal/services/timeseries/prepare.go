package timeseries

import (
	"sort"
	"time"

	"PUM/internal/domain/models"
)

// MinFitPoints is the minimum daily series length required for model fitting.
const MinFitPoints = 30

// Daily resamples raw observations into one value per UTC day (mean of the
// day's observations) and forward-fills interior gaps. The output covers every
// day from the first to the last observation with no holes, so running it over
// an already-daily gap-free series returns the same values.
func Daily(points []models.MarketPoint, value func(*models.MarketPoint) float64, min int) ([]float64, error) {
	if len(points) == 0 {
		return nil, models.InsufficientDataError("market series", 0, min)
	}

	type bucket struct {
		sum float64
		n   int
	}
	byDay := make(map[time.Time]*bucket, len(points))
	var first, last time.Time
	for i := range points {
		day := points[i].Timestamp.UTC().Truncate(24 * time.Hour)
		b := byDay[day]
		if b == nil {
			b = &bucket{}
			byDay[day] = b
		}
		b.sum += value(&points[i])
		b.n++
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]float64, 0, int(last.Sub(first).Hours()/24)+1)
	prev := byDay[first].sum / float64(byDay[first].n)
	for d := first; !d.After(last); d = d.Add(24 * time.Hour) {
		if b, ok := byDay[d]; ok {
			prev = b.sum / float64(b.n)
		}
		out = append(out, prev)
	}

	if len(out) < min {
		return nil, models.InsufficientDataError("daily series", len(out), min)
	}
	return out, nil
}

// DailyPrices builds the daily price series used by the volatility path.
func DailyPrices(points []models.MarketPoint, min int) ([]float64, error) {
	return Daily(points, func(p *models.MarketPoint) float64 { return p.Price }, min)
}

// DailyTVL builds the daily liquidity-proxy series used by the liquidity path.
func DailyTVL(points []models.MarketPoint, min int) ([]float64, error) {
	return Daily(points, func(p *models.MarketPoint) float64 { return p.TVLProxy() }, min)
}
