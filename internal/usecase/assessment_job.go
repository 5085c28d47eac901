package usecase

import (
	"context"
	"fmt"

	"PUM/pkg/logger"
	"PUM/pkg/queue"
)

// AssessmentPayload is the queued request to re-score an upgrade out of band,
// e.g. after its execution is observed on chain.
type AssessmentPayload struct {
	UpgradeID string `json:"upgrade_id"`
}

// AssessmentJob consumes queued upgrade IDs and runs the risk engine on each.
type AssessmentJob struct {
	risk *RiskUsecase
	log  *logger.Logger
}

func NewAssessmentJob(risk *RiskUsecase, log *logger.Logger) *AssessmentJob {
	return &AssessmentJob{risk: risk, log: log}
}

func (j *AssessmentJob) Name() string { return "risk_assessment" }

func (j *AssessmentJob) Type() string { return "upgrade.assess" }

func (j *AssessmentJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[AssessmentPayload](payload)
	if err != nil {
		return fmt.Errorf("parse assessment payload: %w", err)
	}
	a, err := j.risk.Assess(ctx, p.UpgradeID)
	if err != nil {
		j.log.Warn("queued assessment failed",
			logger.String("upgrade_id", p.UpgradeID),
			logger.Error(err),
		)
		return err
	}
	j.log.Info("queued assessment completed",
		logger.String("upgrade_id", p.UpgradeID),
		logger.Any("overall", a.OverallScore),
	)
	return nil
}

var _ queue.Job = (*AssessmentJob)(nil)
