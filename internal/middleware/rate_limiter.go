package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/models"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/metrics"
)

// RateLimiter is a fixed-window limiter keyed by client IP
type RateLimiter struct {
	clients map[string]*ClientRateLimit
	mu      sync.RWMutex
	logger  *logrus.Logger
	metrics *metrics.Metrics
	limit   int           // Max requests
	window  time.Duration // Time window
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// ClientRateLimit tracks rate limit info for a client
type ClientRateLimit struct {
	count     int
	lastReset time.Time
	mu        sync.Mutex
}

// NewRateLimiter allows limit requests per window per client IP. Call Stop to
// end the cleanup goroutine.
func NewRateLimiter(limit int, window time.Duration, m *metrics.Metrics, logger *logrus.Logger) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*ClientRateLimit),
		logger:  logger,
		metrics: m,
		limit:   limit,
		window:  window,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Middleware returns a gin middleware handler
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !rl.allowRequest(clientIP) {
			rl.logger.WithFields(logrus.Fields{
				"client_ip":  clientIP,
				"request_id": GetRequestID(c),
				"path":       c.Request.URL.Path,
			}).Warn("Rate limit exceeded")
			rl.metrics.RecordRateLimited(c.FullPath())

			c.Header("Retry-After", formatSeconds(rl.window))
			abortWithError(c, models.NewRateLimitError("Too many requests. Please try again later.").
				WithMetadata("retry_after", rl.window.Seconds()))
			return
		}

		c.Next()
	}
}

// allowRequest checks if a request should be allowed
func (rl *RateLimiter) allowRequest(clientIP string) bool {
	now := rl.now()

	rl.mu.Lock()
	client, exists := rl.clients[clientIP]
	if !exists {
		client = &ClientRateLimit{lastReset: now}
		rl.clients[clientIP] = client
	}
	rl.mu.Unlock()

	client.mu.Lock()
	defer client.mu.Unlock()

	if now.Sub(client.lastReset) > rl.window {
		client.count = 0
		client.lastReset = now
	}

	if client.count >= rl.limit {
		return false
	}

	client.count++
	return true
}

// cleanup periodically removes idle clients
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, client := range rl.clients {
		client.mu.Lock()
		if now.Sub(client.lastReset) > rl.window*2 {
			delete(rl.clients, ip)
		}
		client.mu.Unlock()
	}
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return map[string]interface{}{
		"total_clients": len(rl.clients),
		"limit":         rl.limit,
		"window":        rl.window.String(),
	}
}

func formatSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
