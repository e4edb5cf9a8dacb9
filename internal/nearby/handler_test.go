package nearby

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cafe_bot_backend/internal/carousel"
	apphttp "cafe_bot_backend/internal/http"
	"cafe_bot_backend/internal/restsearch"
	"cafe_bot_backend/platform/apperr"
	"cafe_bot_backend/platform/httpkit"
	"cafe_bot_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type stubSearcher struct {
	venues []restsearch.Venue
	err    error
	got    restsearch.Coordinates
}

func (s *stubSearcher) Search(_ context.Context, coords restsearch.Coordinates) ([]restsearch.Venue, error) {
	s.got = coords
	return s.venues, s.err
}

func newTestEngine(searcher Searcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	module := NewModule(searcher, carousel.NewFormatter("https://bot.example.com"), validator.New())
	module.RegisterRoutes(&apphttp.RouterContext{Engine: engine, V1: engine.Group("/api/v1")})
	return engine
}

func get(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNearbyReturnsCards(t *testing.T) {
	searcher := &stubSearcher{venues: []restsearch.Venue{
		{Name: "喫茶A", URL: "https://r.gnavi.co.jp/a/"},
		{Name: "喫茶B", URL: "https://r.gnavi.co.jp/b/"},
	}}
	engine := newTestEngine(searcher)

	rec := get(engine, "/api/v1/nearby?lat=35.0&lng=139.0")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if searcher.got != (restsearch.Coordinates{Latitude: 35, Longitude: 139}) {
		t.Fatalf("unexpected coordinates %+v", searcher.got)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Cards) != 2 || resp.Cards[1].Title != "喫茶B" || resp.Cards[0].ActionLabel != carousel.ActionLabel {
		t.Fatalf("unexpected cards %+v", resp.Cards)
	}
}

func TestNearbyRejectsBadQuery(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"missing latitude", "lng=139"},
		{"missing longitude", "lat=35"},
		{"not a number", "lat=north&lng=139"},
		{"latitude out of range", "lat=95&lng=139"},
		{"longitude out of range", "lat=35&lng=181"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			searcher := &stubSearcher{}
			rec := get(newTestEngine(searcher), "/api/v1/nearby?"+tc.query)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if searcher.got != (restsearch.Coordinates{}) {
				t.Fatalf("expected no search, got %+v", searcher.got)
			}
		})
	}
}

func TestNearbyMapsSearchErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"no hits", apperr.NotFound(restsearch.NoHitMessage), http.StatusNotFound, restsearch.NoHitMessage},
		{"upstream error", apperr.Upstream("invalid key"), http.StatusBadGateway, "invalid key"},
		{"transport fault", errors.New("connection refused"), http.StatusBadGateway, restsearch.DefaultErrorMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(newTestEngine(&stubSearcher{err: tc.err}), "/api/v1/nearby?lat=35&lng=139")

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body httpkit.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, body.Error)
			}
		})
	}
}
