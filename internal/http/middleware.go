package http

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	unmatchedRoute  = "unmatched"

	corsMaxAge     = 12 * time.Hour
	referrerPolicy = "no-referrer"
)

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Set(requestIDHeader, requestID)
		c.Next()
	}
}

// AccessLogMiddleware writes one record per request. Failed requests are
// logged at error level with the recorded error message.
func AccessLogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		requestID, _ := c.Get(requestIDHeader)
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
			"client_ip", c.ClientIP(),
		}

		if err := c.Errors.Last(); err != nil {
			logger.Error("http request", append(attrs, "error", err.Error())...)
			return
		}
		logger.Info("http request", attrs...)
	}
}

func MetricsMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.Duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecoveryMiddleware turns panics into a 500 with the standard error body.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		abortWithError(c, panicError{value: recovered})
	})
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// CORSMiddleware admits credentialed browser calls from origins. Preflight
// requests are answered here; other origins get 403. extraHeaders are added
// to the allowed request headers, e.g. the rate-limit key header.
func CORSMiddleware(origins []string, extraHeaders ...string) gin.HandlerFunc {
	allowHeaders := []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	for _, h := range extraHeaders {
		if h != "" {
			allowHeaders = append(allowHeaders, h)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    []string{requestIDHeader, headerRateLimit, headerRateRemaining, headerRetryAfter},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	})
}

// SecurityHeadersMiddleware sets the hardening headers on every response.
// No Content-Security-Policy is sent so the Swagger UI keeps working.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return secure.New(secure.Config{
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		IENoOpen:             true,
		ReferrerPolicy:       referrerPolicy,
		STSSeconds:           15552000,
		STSIncludeSubdomains: true,
	})
}
