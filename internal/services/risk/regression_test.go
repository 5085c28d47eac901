package risk

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"PUM/internal/domain/models"
)

func syntheticHistory(n int) []models.RiskAssessment {
	out := make([]models.RiskAssessment, 0, n)
	for i := 0; i < n; i++ {
		fi := float64(i)
		a := models.RiskAssessment{
			TechnicalScore:  50 + 30*math.Sin(fi),
			GovernanceScore: 50 + 30*math.Sin(2*fi+1),
			MarketScore:     50 + 30*math.Cos(fi*1.3),
			LiquidityScore:  50 + 30*math.Cos(3*fi+2),
		}
		a.OverallScore = 0.25 * (a.TechnicalScore + a.GovernanceScore + a.MarketScore + a.LiquidityScore)
		out = append(out, a)
	}
	return out
}

func TestTrainRecoversWeights(t *testing.T) {
	store := &fakeAssessments{history: syntheticHistory(80)}
	params, err := Train(context.Background(), store, 0)
	require.NoError(t, err)
	require.Equal(t, 80, params.Samples)
	require.InDelta(t, 0, params.Intercept, 1e-6)
	for i := 0; i < 4; i++ {
		require.InDelta(t, 0.25, params.Weights[i], 1e-6)
	}
}

func TestTrainInsufficientHistory(t *testing.T) {
	store := &fakeAssessments{history: syntheticHistory(20)}
	_, err := Train(context.Background(), store, 0)
	require.True(t, errors.Is(err, models.ErrInsufficientData))
}

func TestPredictWithModelClamped(t *testing.T) {
	p := &models.RiskModelParams{Intercept: 0, Weights: [4]float64{0.25, 0.25, 0.25, 0.25}}
	require.InDelta(t, 63.75, PredictWithModel(p, 50, 75, 60, 70), 1e-9)

	hot := &models.RiskModelParams{Intercept: 90, Weights: [4]float64{1, 1, 1, 1}}
	require.Equal(t, 100.0, PredictWithModel(hot, 80, 80, 80, 80))

	cold := &models.RiskModelParams{Intercept: -500, Weights: [4]float64{0.25, 0.25, 0.25, 0.25}}
	require.Equal(t, 0.0, PredictWithModel(cold, 10, 10, 10, 10))
}
