package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"classroom/config"

	"github.com/gin-gonic/gin"
)

// Requirement: the per-IP limit comes from MAX_REQUESTS_PER_MIN, and one
// client hitting its limit does not affect another.
func TestRateLimitMiddleware_UsesConfiguredLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config.AppConfig.MaxRequestsPerMin = 6 // burst of one

	router := gin.New()
	router.Use(RateLimitMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", ip)
		router.ServeHTTP(w, req)
		return w.Code
	}

	if got := do("203.0.113.10"); got != http.StatusOK {
		t.Fatalf("first request status = %d, want %d", got, http.StatusOK)
	}
	if got := do("203.0.113.10"); got != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want %d", got, http.StatusTooManyRequests)
	}
	if got := do("203.0.113.11"); got != http.StatusOK {
		t.Fatalf("other client status = %d, want %d", got, http.StatusOK)
	}
}

func TestClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"first hop of forwarded chain", "203.0.113.7, 10.0.0.1", "", "192.0.2.1:4321", "203.0.113.7"},
		{"real-ip header", "", "198.51.100.3", "192.0.2.1:4321", "198.51.100.3"},
		{"remote address with port", "", "", "192.0.2.1:4321", "192.0.2.1"},
		{"remote address without port", "", "", "192.0.2.1", "192.0.2.1"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = test.remote
			if test.xff != "" {
				c.Request.Header.Set("X-Forwarded-For", test.xff)
			}
			if test.xri != "" {
				c.Request.Header.Set("X-Real-IP", test.xri)
			}
			if got := clientIP(c); got != test.want {
				t.Errorf("clientIP() = %q, want %q", got, test.want)
			}
		})
	}
}
