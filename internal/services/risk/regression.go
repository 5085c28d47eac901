package risk

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"PUM/internal/domain/models"
	"PUM/internal/domain/repository"
)

// minTrainingSamples is the assessment history required before the auxiliary
// model may be fitted.
const minTrainingSamples = 50

// Train fits a linear model mapping the four factor scores to the stored
// overall score over recent assessment history. The fitted parameters come
// back as an explicit value; the engine itself keeps no training state. The
// model is an auxiliary predictor only, persisted records always use the
// weighted average.
func Train(ctx context.Context, store repository.AssessmentStore, limit int) (*models.RiskModelParams, error) {
	if limit < minTrainingSamples {
		limit = minTrainingSamples * 4
	}
	history, err := store.ListRecent(ctx, limit)
	if err != nil {
		return nil, models.PersistenceError("list assessments", err)
	}
	if len(history) < minTrainingSamples {
		return nil, models.InsufficientDataError("assessment history", len(history), minTrainingSamples)
	}

	n := len(history)
	x := mat.NewDense(n, 5, nil)
	y := mat.NewVecDense(n, nil)
	for i, a := range history {
		x.Set(i, 0, 1)
		x.Set(i, 1, a.TechnicalScore)
		x.Set(i, 2, a.GovernanceScore)
		x.Set(i, 3, a.MarketScore)
		x.Set(i, 4, a.LiquidityScore)
		y.SetVec(i, a.OverallScore)
	}

	var qr mat.QR
	qr.Factorize(x)
	beta := mat.NewDense(5, 1, nil)
	if err := qr.SolveTo(beta, false, y); err != nil {
		return nil, models.InsufficientDataError("assessment history", n, minTrainingSamples)
	}

	return &models.RiskModelParams{
		Intercept: beta.At(0, 0),
		Weights: [4]float64{
			beta.At(1, 0), beta.At(2, 0), beta.At(3, 0), beta.At(4, 0),
		},
		Samples:   n,
		TrainedAt: time.Now().UTC(),
	}, nil
}

// PredictWithModel applies fitted parameters to a factor score set, clamped
// to [0, 100].
func PredictWithModel(p *models.RiskModelParams, technical, governance, market, liquidity float64) float64 {
	v := p.Intercept +
		p.Weights[0]*technical +
		p.Weights[1]*governance +
		p.Weights[2]*market +
		p.Weights[3]*liquidity
	return math.Max(0, math.Min(v, 100))
}
