package restsearch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"cafe_bot_backend/platform/apperr"
	"cafe_bot_backend/platform/logger"
)

type testSearchConfig struct {
	url string
}

func (c testSearchConfig) GetRestSearchURL() string            { return c.url }
func (c testSearchConfig) GetRestSearchAPIKey() string         { return "test-key" }
func (c testSearchConfig) GetRestSearchTimeout() time.Duration { return 0 }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(testSearchConfig{url: server.URL + "/RestSearchAPI/v3/"}, server.Client(), logger.NewWithWriter("development", io.Discard))
}

func respondJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestSearchSendsFixedQuery(t *testing.T) {
	var rawQuery, path string
	var lat, lng float64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		rawQuery = r.URL.RawQuery
		lat, _ = strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
		lng, _ = strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
		respondJSON(`{"total_hit_count": 1, "rest": [{"name": "Cafe"}]}`)(w, r)
	})

	if _, err := client.Search(context.Background(), Coordinates{Latitude: 35.681, Longitude: 139.767}); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if path != "/RestSearchAPI/v3/" {
		t.Fatalf("unexpected path %q", path)
	}
	if !strings.Contains(rawQuery, "category_s=RSFST18008,RSFST18009,RSFST18010,RSFST18011,RSFST18012") {
		t.Fatalf("expected unescaped category list, got %q", rawQuery)
	}
	if !strings.Contains(rawQuery, "keyid=test-key") {
		t.Fatalf("expected api key in query, got %q", rawQuery)
	}
	if lat != 35.681 || lng != 139.767 {
		t.Fatalf("unexpected coordinates %v,%v", lat, lng)
	}
}

func TestSearchDecodesVenues(t *testing.T) {
	client := newTestClient(t, respondJSON(`{
		"total_hit_count": 2,
		"rest": [
			{
				"name": "喫茶ルノアール",
				"access": {"walk": 3},
				"holiday": "年中無休",
				"opentime": "7:00-23:00",
				"image_url": {"shop_image1": "https://img.example.com/1.jpg"},
				"url": "https://r.gnavi.co.jp/a/"
			},
			{
				"name": "Cafe B",
				"access": {"walk": ""},
				"holiday": {},
				"image_url": {"shop_image1": ""},
				"url": "https://r.gnavi.co.jp/b/"
			}
		]
	}`))

	venues, err := client.Search(context.Background(), Coordinates{Latitude: 35, Longitude: 139})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(venues) != 2 {
		t.Fatalf("expected 2 venues, got %d", len(venues))
	}

	first := venues[0]
	if first.Name != "喫茶ルノアール" || first.Walk != "3" || first.Holiday != "年中無休" ||
		first.OpenTime != "7:00-23:00" || first.ImageURL != "https://img.example.com/1.jpg" ||
		first.URL != "https://r.gnavi.co.jp/a/" {
		t.Fatalf("unexpected first venue %+v", first)
	}

	second := venues[1]
	if second.Holiday != "" || second.OpenTime != "" || second.ImageURL != "" || second.Walk != "" {
		t.Fatalf("expected empty optional fields, got %+v", second)
	}
}

func TestSearchReturnsUpstreamMessage(t *testing.T) {
	client := newTestClient(t, respondJSON(`{"error": [{"code": 429}], "message": "アクセス数が上限に達しました"}`))

	venues, err := client.Search(context.Background(), Coordinates{})
	if venues != nil {
		t.Fatalf("expected no venues, got %v", venues)
	}
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if err.Error() != "アクセス数が上限に達しました" {
		t.Fatalf("expected upstream message verbatim, got %q", err.Error())
	}
}

func TestSearchFallsBackToDefaultMessage(t *testing.T) {
	client := newTestClient(t, respondJSON(`{"error": {"code": 500}}`))

	_, err := client.Search(context.Background(), Coordinates{})
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if err.Error() != DefaultErrorMessage {
		t.Fatalf("expected default message, got %q", err.Error())
	}
}

func TestSearchTreatsZeroHitsAsError(t *testing.T) {
	client := newTestClient(t, respondJSON(`{"total_hit_count": 0, "rest": []}`))

	venues, err := client.Search(context.Background(), Coordinates{})
	if len(venues) != 0 {
		t.Fatalf("expected no venues, got %d", len(venues))
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if err.Error() != NoHitMessage {
		t.Fatalf("expected no-hit message, got %q", err.Error())
	}
}

func TestSearchTreatsMissingVenueListAsEmpty(t *testing.T) {
	client := newTestClient(t, respondJSON(`{}`))

	_, err := client.Search(context.Background(), Coordinates{})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestSearchMalformedBodyIsUnhandledFault(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := client.Search(context.Background(), Coordinates{})
	if err == nil {
		t.Fatal("expected error for malformed body")
	}
	if apperr.GetKind(err) != apperr.KindUnknown {
		t.Fatalf("expected untyped error, got kind %d", apperr.GetKind(err))
	}
}

func TestSearchHonoursContextCancellation(t *testing.T) {
	client := newTestClient(t, respondJSON(`{"total_hit_count": 1, "rest": [{"name": "Cafe"}]}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Search(ctx, Coordinates{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestQueryEncodeFormatsCoordinates(t *testing.T) {
	encoded := Query{APIKey: "k", Latitude: 35.0, Longitude: 139.5, CategoryCodes: []string{"A", "B"}}.Encode()
	want := "category_s=A,B&keyid=k&latitude=35&longitude=139.5"
	if encoded != want {
		t.Fatalf("expected %q, got %q", want, encoded)
	}
}
