package usecase

import (
	"context"
	"errors"
	"time"

	"PUM/internal/domain/models"
	domrepo "PUM/internal/domain/repository"
	"PUM/internal/services/risk"
	pkgcache "PUM/pkg/cache"
)

const (
	modelParamsKey = "risk:model:params"
	modelTrainLock = "risk:model:train"
	modelParamsTTL = 24 * time.Hour
)

// RiskUsecase orchestrates risk assessment and the auxiliary scoring model.
type RiskUsecase struct {
	engine      *risk.Engine
	assessments domrepo.AssessmentStore
	modelCache  pkgcache.Service
}

func NewRiskUsecase(engine *risk.Engine, assessments domrepo.AssessmentStore) *RiskUsecase {
	return &RiskUsecase{engine: engine, assessments: assessments}
}

// SetModelCache injects a cache for trained model parameters. Without it,
// TrainModel still works but parameters live only in the returned value.
func (u *RiskUsecase) SetModelCache(c pkgcache.Service) { u.modelCache = c }

// Assess computes and appends a new assessment for the upgrade.
func (u *RiskUsecase) Assess(ctx context.Context, upgradeID string) (*models.RiskAssessment, error) {
	return u.engine.Assess(ctx, upgradeID)
}

// History returns a protocol's assessment history, most recent first.
func (u *RiskUsecase) History(ctx context.Context, protocolID string, days int) ([]models.RiskAssessment, error) {
	days = domrepo.ClampDays(days, 30, 365)
	since := time.Now().UTC().AddDate(0, 0, -days)
	out, err := u.assessments.ListByProtocol(ctx, protocolID, since)
	if err != nil {
		return nil, models.PersistenceError("list assessments", err)
	}
	return out, nil
}

// TrainModel fits the auxiliary scoring model on stored history and returns
// the fitted parameters. Callers hold the parameters explicitly; nothing is
// cached engine-side. When a model cache is configured the fitted parameters
// are stored under a shared key and concurrent training runs are deduplicated
// with a lock.
func (u *RiskUsecase) TrainModel(ctx context.Context) (*models.RiskModelParams, error) {
	if u.modelCache == nil {
		return risk.Train(ctx, u.assessments, 0)
	}

	ok, err := u.modelCache.TryLock(ctx, modelTrainLock, time.Minute)
	if err == nil && !ok {
		// Another instance is training; serve the last stored parameters.
		if p, err := u.LoadModel(ctx); err == nil {
			return p, nil
		}
		return nil, models.InsufficientDataError("trained model", 0, 1)
	}
	defer func() { _ = u.modelCache.Unlock(ctx, modelTrainLock) }()

	params, err := risk.Train(ctx, u.assessments, 0)
	if err != nil {
		return nil, err
	}
	_ = u.modelCache.Set(ctx, modelParamsKey, params, modelParamsTTL)
	return params, nil
}

// LoadModel returns the last trained parameters from the model cache.
func (u *RiskUsecase) LoadModel(ctx context.Context) (*models.RiskModelParams, error) {
	if u.modelCache == nil {
		return nil, models.NotFoundError("model parameters", modelParamsKey)
	}
	var p models.RiskModelParams
	if err := u.modelCache.Get(ctx, modelParamsKey, &p); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, models.NotFoundError("model parameters", modelParamsKey)
		}
		return nil, err
	}
	return &p, nil
}

// PredictWithModel applies previously trained parameters to a score set.
func (u *RiskUsecase) PredictWithModel(params *models.RiskModelParams, technical, governance, market, liquidity float64) float64 {
	return risk.PredictWithModel(params, technical, governance, market, liquidity)
}
