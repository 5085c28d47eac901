package repository

import (
	"context"
	"time"

	"PUM/internal/domain/models"
)

// MarketReader provides read-only access to market observations for the
// forecasting and risk engines.
type MarketReader interface {
	GetRange(ctx context.Context, token string, from, to time.Time) ([]models.MarketPoint, error)
	GetLatestN(ctx context.Context, token string, n int) ([]models.MarketPoint, error)
}

// EventReader counts on-chain activity for a protocol contract.
type EventReader interface {
	CountEvents(ctx context.Context, protocolAddress, eventType string, since time.Time) (int, error)
}

// UpgradeStore reads protocol upgrade proposals.
type UpgradeStore interface {
	GetUpgrade(ctx context.Context, id string) (*models.Upgrade, error)
	ListByProtocol(ctx context.Context, protocolID string, since time.Time) ([]models.Upgrade, error)
}

// AssessmentStore appends and reads risk assessment records.
type AssessmentStore interface {
	Insert(ctx context.Context, a *models.RiskAssessment) error
	ListByProtocol(ctx context.Context, protocolID string, since time.Time) ([]models.RiskAssessment, error)
	ListRecent(ctx context.Context, limit int) ([]models.RiskAssessment, error)
}

// PredictionStore appends and reads forecast history for evaluation.
type PredictionStore interface {
	InsertVolatility(ctx context.Context, p *models.VolatilityPrediction) error
	InsertLiquidity(ctx context.Context, p *models.LiquidityPrediction) error
	ListVolatilityByToken(ctx context.Context, token string, since time.Time) ([]models.VolatilityPrediction, error)
	ListLiquidityByProtocol(ctx context.Context, protocolID string, since time.Time) ([]models.LiquidityPrediction, error)
}
