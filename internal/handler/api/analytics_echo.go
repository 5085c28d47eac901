package api

import (
	"encoding/json"
	"errors"
	"time"

	models "PUM/internal/domain/models"
	icache "PUM/internal/service/cache"
	svcmetrics "PUM/internal/service/metrics"
	"PUM/internal/service/ratelimit"
	"PUM/internal/usecase"
	pkgcache "PUM/pkg/cache"
	xhttp "PUM/pkg/http"
	xlogger "PUM/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalyticsHandler exposes the risk and forecasting endpoints over Echo.
type AnalyticsHandler struct {
	logger *xlogger.Logger
	risk   *usecase.RiskUsecase
	vol    *usecase.VolatilityUsecase
	liq    *usecase.LiquidityUsecase
	cache  icache.BytesCache
	rl     *ratelimit.Limiter
}

func NewAnalyticsHandler(logger *xlogger.Logger, risk *usecase.RiskUsecase, vol *usecase.VolatilityUsecase, liq *usecase.LiquidityUsecase) *AnalyticsHandler {
	svcmetrics.Register()
	return &AnalyticsHandler{logger: logger, risk: risk, vol: vol, liq: liq, rl: ratelimit.New()}
}

// SetCache injects a response cache for the read-mostly endpoints.
func (h *AnalyticsHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *AnalyticsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/risk/assess", h.Assess)
	g.GET("/risk/history", h.RiskHistory)
	g.GET("/volatility/predict", h.VolPredict)
	g.GET("/volatility/regime", h.VolRegime)
	g.GET("/volatility/history", h.VolHistory)
	g.GET("/volatility/evaluate", h.VolEvaluate)
	g.GET("/liquidity/predict", h.LiqPredict)
	g.GET("/liquidity/flow", h.LiqFlow)
	g.GET("/liquidity/regime", h.LiqRegime)
	g.GET("/liquidity/history", h.LiqHistory)
	g.GET("/liquidity/evaluate", h.LiqEvaluate)
}

// respond maps domain errors to HTTP status via AppError conventions.
func (h *AnalyticsHandler) respond(c echo.Context, endpoint string, res interface{}, err error) error {
	if err != nil {
		svcmetrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
		switch {
		case errors.Is(err, models.ErrNotFound):
			return xhttp.NotFoundResponse(c, xhttp.NotFoundError(err.Error()))
		case errors.Is(err, models.ErrInsufficientData):
			return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
		default:
			return xhttp.AppErrorResponse(c, err)
		}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalyticsHandler) observe(endpoint string, start time.Time) {
	svcmetrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (h *AnalyticsHandler) throttle(c echo.Context, endpoint string) bool {
	if h.rl.Allow(c.RealIP()+":"+endpoint, 5, 2) {
		return false
	}
	h.logger.Warn(endpoint+" rate limited", xlogger.String("remote", c.RealIP()))
	return true
}

// cached serves a cache hit or records the computed response.
func (h *AnalyticsHandler) cached(c echo.Context, key string, ttl time.Duration, compute func() (interface{}, error)) (interface{}, bool, error) {
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(key); err == nil && ok {
			return nil, true, c.JSONBlob(200, b)
		}
	}
	res, err := compute()
	if err != nil {
		return nil, false, err
	}
	if h.cache != nil {
		if b, merr := json.Marshal(res); merr == nil {
			if err := h.cache.SetBytes(key, b, ttl); err != nil {
				h.logger.Warn("cache set failed", xlogger.String("key", key), xlogger.Error(err))
			}
		}
	}
	return res, false, nil
}

func (h *AnalyticsHandler) Assess(c echo.Context) error {
	defer h.observe("risk_assess", time.Now())
	req := &models.AssessRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.risk.Assess(c.Request().Context(), req.UpgradeID)
	return h.respond(c, "risk_assess", res, err)
}

func (h *AnalyticsHandler) RiskHistory(c echo.Context) error {
	defer h.observe("risk_history", time.Now())
	req := &models.RiskHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.risk.History(c.Request().Context(), req.ProtocolID, req.Days)
	return h.respond(c, "risk_history", res, err)
}

func (h *AnalyticsHandler) VolPredict(c echo.Context) error {
	defer h.observe("vol_predict", time.Now())
	req := &models.VolPredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.throttle(c, "vol_predict") {
		return echo.NewHTTPError(429, "rate limited")
	}
	res, err := h.vol.Predict(c.Request().Context(), req.Token, req.UpgradeID, req.Horizon, req.EGARCH)
	return h.respond(c, "vol_predict", res, err)
}

func (h *AnalyticsHandler) VolRegime(c echo.Context) error {
	defer h.observe("vol_regime", time.Now())
	req := &models.VolRegimeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	key := pkgcache.GenerateKeyWithParams("vol_regime", req.Token, req.UpgradeID)
	res, hit, err := h.cached(c, key, 5*time.Minute, func() (interface{}, error) {
		return h.vol.Regime(c.Request().Context(), req.Token, req.UpgradeID)
	})
	if hit {
		return err
	}
	return h.respond(c, "vol_regime", res, err)
}

func (h *AnalyticsHandler) VolHistory(c echo.Context) error {
	defer h.observe("vol_history", time.Now())
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.vol.History(c.Request().Context(), req.Subject, req.Days)
	return h.respond(c, "vol_history", res, err)
}

func (h *AnalyticsHandler) VolEvaluate(c echo.Context) error {
	defer h.observe("vol_evaluate", time.Now())
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.vol.Evaluate(c.Request().Context(), req.Subject, req.Days)
	return h.respond(c, "vol_evaluate", res, err)
}

func (h *AnalyticsHandler) LiqPredict(c echo.Context) error {
	defer h.observe("liq_predict", time.Now())
	req := &models.LiqPredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.throttle(c, "liq_predict") {
		return echo.NewHTTPError(429, "rate limited")
	}
	res, err := h.liq.Predict(c.Request().Context(), req.Protocol, req.UpgradeID, req.Horizon)
	return h.respond(c, "liq_predict", res, err)
}

func (h *AnalyticsHandler) LiqFlow(c echo.Context) error {
	defer h.observe("liq_flow", time.Now())
	req := &models.LiqFlowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.liq.Flow(c.Request().Context(), req.Source, req.Target, req.UpgradeID)
	return h.respond(c, "liq_flow", res, err)
}

func (h *AnalyticsHandler) LiqRegime(c echo.Context) error {
	defer h.observe("liq_regime", time.Now())
	req := &models.LiqRegimeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	key := pkgcache.GenerateKeyWithParams("liq_regime", req.Protocol, req.UpgradeID)
	res, hit, err := h.cached(c, key, 5*time.Minute, func() (interface{}, error) {
		return h.liq.Regime(c.Request().Context(), req.Protocol, req.UpgradeID)
	})
	if hit {
		return err
	}
	return h.respond(c, "liq_regime", res, err)
}

func (h *AnalyticsHandler) LiqHistory(c echo.Context) error {
	defer h.observe("liq_history", time.Now())
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.liq.History(c.Request().Context(), req.Subject, req.Days)
	return h.respond(c, "liq_history", res, err)
}

func (h *AnalyticsHandler) LiqEvaluate(c echo.Context) error {
	defer h.observe("liq_evaluate", time.Now())
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.liq.Evaluate(c.Request().Context(), req.Subject, req.Days)
	return h.respond(c, "liq_evaluate", res, err)
}
