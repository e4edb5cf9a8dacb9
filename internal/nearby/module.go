// Package nearby exposes the cafe search as a read-only JSON endpoint, so the
// cards a location message would produce can be previewed without LINE.
package nearby

import (
	"cafe_bot_backend/internal/carousel"
	apphttp "cafe_bot_backend/internal/http"
	"cafe_bot_backend/platform/validator"
)

// Module is the nearby preview module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates the nearby module.
func NewModule(searcher Searcher, formatter *carousel.Formatter, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(searcher, formatter, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "nearby"
}

// RegisterRoutes mounts the preview route under /api/v1.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/nearby", m.handler.HandleNearby)
}

var _ apphttp.Module = (*Module)(nil)
