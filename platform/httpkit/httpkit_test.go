package httpkit

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cafe_bot_backend/platform/apperr"
	"cafe_bot_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestOutboundClientProxiesRemoteHostsOnly(t *testing.T) {
	client, err := NewOutboundClient("http://proxy.example.com:3128", 0)
	if err != nil {
		t.Fatalf("NewOutboundClient returned error: %v", err)
	}
	transport := client.Transport.(*http.Transport)

	for _, target := range []string{"http://api.gnavi.co.jp/RestSearchAPI/v3/", "https://api.line.me/v2/bot/message/reply"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		proxy, err := transport.Proxy(req)
		if err != nil {
			t.Fatalf("proxy func returned error: %v", err)
		}
		if proxy == nil || proxy.Host != "proxy.example.com:3128" {
			t.Fatalf("expected %s to be proxied, got %v", target, proxy)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "http://127.0.0.1:8080/", nil)
	proxy, err := transport.Proxy(req)
	if err != nil {
		t.Fatalf("proxy func returned error: %v", err)
	}
	if proxy != nil {
		t.Fatalf("expected loopback to bypass proxy, got %v", proxy)
	}
}

func TestOutboundClientWithoutProxy(t *testing.T) {
	client, err := NewOutboundClient("", 0)
	if err != nil {
		t.Fatalf("NewOutboundClient returned error: %v", err)
	}
	if client.Transport.(*http.Transport).Proxy != nil {
		t.Fatal("expected no proxy func")
	}
	if client.Timeout != 0 {
		t.Fatalf("expected default timeout, got %s", client.Timeout)
	}
}

func TestHandleErrorMapsKinds(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		contains string
	}{
		{"typed", apperr.NotFound("no cafes"), http.StatusNotFound, "no cafes"},
		{"wrapped", errors.Join(apperr.Upstream("gnavi down")), http.StatusBadGateway, "gnavi down"},
		{"untyped", errors.New("decode: unexpected EOF"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			if !HandleError(c, tc.err) {
				t.Fatal("expected error to be handled")
			}
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.contains) {
				t.Fatalf("expected body to contain %q, got %s", tc.contains, rec.Body.String())
			}
		})
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if HandleError(c, nil) {
		t.Fatal("nil error must not be handled")
	}
}

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.0001), 1, logger.NewWithWriter("production", io.Discard))

	engine := gin.New()
	engine.Use(limiter.RateLimit())
	engine.POST("/callback", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/callback", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/callback", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		if got := c.Request.Context().Value(logger.RequestIDKey); got != "req-42" {
			t.Errorf("expected request id in context, got %v", got)
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) != "req-42" {
		t.Fatalf("expected request id header, got %q", rec.Header().Get(RequestIDHeader))
	}
}
