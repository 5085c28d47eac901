package timeseries

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"PUM/internal/domain/models"
)

func day(d int) time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestDailyAveragesWithinDay(t *testing.T) {
	points := []models.MarketPoint{
		{Price: 10, Timestamp: day(0).Add(2 * time.Hour)},
		{Price: 20, Timestamp: day(0).Add(14 * time.Hour)},
		{Price: 30, Timestamp: day(1)},
	}
	got, err := DailyPrices(points, 2)
	require.NoError(t, err)
	require.Equal(t, []float64{15, 30}, got)
}

func TestDailyForwardFillsGaps(t *testing.T) {
	points := []models.MarketPoint{
		{Price: 10, Timestamp: day(0)},
		{Price: 40, Timestamp: day(3)},
	}
	got, err := DailyPrices(points, 2)
	require.NoError(t, err)
	require.Equal(t, []float64{10, 10, 10, 40}, got)
}

func TestDailyIdempotent(t *testing.T) {
	points := make([]models.MarketPoint, 0, 10)
	for i := 0; i < 10; i++ {
		points = append(points, models.MarketPoint{Price: float64(i + 1), Timestamp: day(i)})
	}
	once, err := DailyPrices(points, 2)
	require.NoError(t, err)

	again := make([]models.MarketPoint, 0, len(once))
	for i, v := range once {
		again = append(again, models.MarketPoint{Price: v, Timestamp: day(i)})
	}
	twice, err := DailyPrices(again, 2)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestDailyInsufficient(t *testing.T) {
	_, err := DailyPrices(nil, 2)
	require.True(t, errors.Is(err, models.ErrInsufficientData))

	_, err = DailyPrices([]models.MarketPoint{{Price: 1, Timestamp: day(0)}}, 2)
	require.True(t, errors.Is(err, models.ErrInsufficientData))
}

func TestDailyTVLProxyOrder(t *testing.T) {
	points := []models.MarketPoint{
		{MarketCap: 500, Volume24h: 10, Timestamp: day(0)},
		{Volume24h: 10, Timestamp: day(1)},
		{Timestamp: day(2)},
	}
	got, err := DailyTVL(points, 3)
	require.NoError(t, err)
	require.Equal(t, []float64{500, 10, 1_000_000}, got)
}
