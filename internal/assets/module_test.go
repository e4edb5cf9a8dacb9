package assets

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "cafe_bot_backend/internal/http"

	"github.com/gin-gonic/gin"
)

func TestServesThumbnail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewModule().RegisterRoutes(&apphttp.RouterContext{Engine: engine, V1: engine.Group("/api/v1")})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/thumbnail_template.jpg", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte{0xFF, 0xD8}) {
		t.Fatal("expected a JPEG body")
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Fatal("expected a cache header")
	}
}

func TestUnknownAssetIsNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewModule().RegisterRoutes(&apphttp.RouterContext{Engine: engine, V1: engine.Group("/api/v1")})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/missing.png", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
