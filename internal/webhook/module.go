// Package webhook provides the LINE callback endpoint.
// This file defines the module that encapsulates webhook setup and route registration.
package webhook

import (
	apphttp "cafe_bot_backend/internal/http"
	"cafe_bot_backend/platform/config"
	"cafe_bot_backend/platform/httpkit"
	"cafe_bot_backend/platform/logger"

	"golang.org/x/time/rate"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	limiter *httpkit.IPRateLimiter
}

// NewModule creates the webhook module. dedup may be nil.
func NewModule(parser EventParser, dispatcher EventDispatcher, dedup Deduplicator, cfg config.WebhookConfig, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(parser, dispatcher, dedup, log),
		limiter: httpkit.NewIPRateLimiter(rate.Limit(cfg.GetWebhookRateLimit()), cfg.GetWebhookRateBurst(), log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the callback at the engine root, where the LINE
// console points.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.POST("/callback", m.limiter.RateLimit(), SignatureRequired(), m.handler.HandleCallback)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
