// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"cafe_bot_backend/platform/config"
	"cafe_bot_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (listen address and CORS origins).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is pinged by /api/health when set (e.g. the Redis dedup store).
	Health HealthChecker
	// Modules contains all HTTP-facing modules.
	Modules []Module
}
