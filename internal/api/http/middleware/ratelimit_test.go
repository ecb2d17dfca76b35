package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/intermeet/backend/internal/api/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limiterRouter(t *testing.T, maxRequests int, window time.Duration) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	router := gin.New()
	router.POST("/join", middleware.RateLimit(client, maxRequests, window, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router, srv
}

func hit(router *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/join", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimit_DeniesBeyondWindow(t *testing.T) {
	router, _ := limiterRouter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1"))

	// Other identities keep their own allowance.
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2"))
}

func TestRateLimit_RetriesDoNotExtendWindow(t *testing.T) {
	router, srv := limiterRouter(t, 1, time.Minute)

	require.Equal(t, http.StatusOK, hit(router, "10.0.0.1"))

	srv.FastForward(30 * time.Second)
	require.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1"))

	// The denied retry above must not have reset the expiry back to a full
	// minute; half the window is already spent.
	key := "ratelimit:/join:10.0.0.1"
	assert.LessOrEqual(t, srv.TTL(key), 30*time.Second)

	srv.FastForward(31 * time.Second)
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1"),
		"a fresh window opens once the first one lapses")
}
