package models

// Requests for analytics HTTP endpoints. Defined in domain for consistency and reuse.

type AssessRequest struct {
	UpgradeID string `query:"upgrade_id" json:"upgrade_id" validate:"required"`
}

type RiskHistoryRequest struct {
	ProtocolID string `query:"protocol_id" json:"protocol_id" validate:"required"`
	Days       int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
}

type VolPredictRequest struct {
	Token     string `query:"token" json:"token" validate:"required"`
	UpgradeID string `query:"upgrade_id" json:"upgrade_id" validate:"required"`
	Horizon   int    `query:"horizon" json:"horizon" default:"7" validate:"gte=1,lte=30"`
	EGARCH    bool   `query:"egarch" json:"egarch"`
}

type VolRegimeRequest struct {
	Token     string `query:"token" json:"token" validate:"required"`
	UpgradeID string `query:"upgrade_id" json:"upgrade_id" validate:"required"`
}

type LiqPredictRequest struct {
	Protocol  string `query:"protocol" json:"protocol" validate:"required"`
	UpgradeID string `query:"upgrade_id" json:"upgrade_id" validate:"required"`
	Horizon   int    `query:"horizon" json:"horizon" default:"7" validate:"gte=1,lte=30"`
}

type LiqFlowRequest struct {
	Source    string `query:"source" json:"source" validate:"required"`
	Target    string `query:"target" json:"target" validate:"required,nefield=Source"`
	UpgradeID string `query:"upgrade_id" json:"upgrade_id" validate:"required"`
}

type LiqRegimeRequest struct {
	Protocol  string `query:"protocol" json:"protocol" validate:"required"`
	UpgradeID string `query:"upgrade_id" json:"upgrade_id" validate:"required"`
}

type EvaluateRequest struct {
	Subject string `query:"subject" json:"subject" validate:"required"` // token or protocol id
	Days    int    `query:"days" json:"days" default:"90" validate:"gte=7,lte=365"`
}
