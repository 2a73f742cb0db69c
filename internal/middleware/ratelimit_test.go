package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(rl.Middleware())
	router.POST("/api/auth/login", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "success"})
	})
	return router
}

func hit(router http.Handler, addr string) int {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = addr
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_AllowsNormalRequests(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	defer rl.Stop()
	require.Equal(t, http.StatusOK, hit(limitedRouter(rl), "192.168.1.1:12345"))
}

func TestRateLimit_BlocksExcessiveRequests(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Stop()
	router := limitedRouter(rl)

	var last int
	for i := 0; i < 5; i++ {
		last = hit(router, "10.0.0.1:12345")
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}

func TestRateLimit_IndependentPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	router := limitedRouter(rl)

	require.Equal(t, http.StatusOK, hit(router, "10.0.0.1:12345"))
	require.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1:12345"))
	require.Equal(t, http.StatusOK, hit(router, "10.0.0.2:12345"))
}

func TestRateLimit_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()

	rl.limiterFor("10.0.0.9")
	rl.evictIdle(time.Now().Add(10 * time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	require.Empty(t, rl.clients)
}
