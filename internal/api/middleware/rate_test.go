package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func rateLimitedRouter(cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(cfg))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func doRequest(router *gin.Engine, ip string) int {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = ip + ":51234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	router := rateLimitedRouter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2})

	for i := 0; i < 2; i++ {
		if code := doRequest(router, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("Request %d within burst returned %d", i+1, code)
		}
	}
	if code := doRequest(router, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 past burst, got %d", code)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	router := rateLimitedRouter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1})

	if code := doRequest(router, "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("First client blocked: %d", code)
	}
	if code := doRequest(router, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("Second client must have its own limiter, got %d", code)
	}
}

func TestDefaultRateLimitConfigAllowsTraffic(t *testing.T) {
	router := rateLimitedRouter(DefaultRateLimitConfig())

	for i := 0; i < 10; i++ {
		if code := doRequest(router, "127.0.0.1"); code != http.StatusOK {
			t.Fatalf("Request %d under default limits returned %d", i+1, code)
		}
	}
}
