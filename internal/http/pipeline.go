package http

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-api/internal/apperr"
	"storefront-api/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	maxBodyBytes = 1 << 20

	headerRateLimit     = "X-RateLimit-Limit"
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRetryAfter    = "Retry-After"

	rateLimitedMessage = "Too Many Requests"
)

// Binder validates a raw body and returns the typed value handed to a route.
type Binder interface {
	Bind(body []byte) (any, error)
}

// HandlerFunc runs a route's operation. body is nil for routes without a Binder.
type HandlerFunc func(c *gin.Context, body any) (any, error)

// Route is one entry of the route table.
type Route struct {
	Method   string
	Path     string
	Throttle bool
	Body     Binder
	Status   int
	Handle   HandlerFunc
}

// KeyFunc derives the rate-limit client key of a request.
type KeyFunc func(c *gin.Context) string

// HeaderKeyFunc uses header when present and falls back to the client IP.
func HeaderKeyFunc(header string) KeyFunc {
	return func(c *gin.Context) string {
		if header != "" {
			if v := strings.TrimSpace(c.GetHeader(header)); v != "" {
				return v
			}
		}
		return c.ClientIP()
	}
}

// Pipeline runs throttle, validate, handle and respond for each route.
// The first failing stage aborts the request.
type Pipeline struct {
	limiter  ratelimit.Limiter
	keyFn    KeyFunc
	logger   *slog.Logger
	metrics  *Metrics
	now      func() time.Time
	degraded rate.Sometimes
}

type PipelineOption func(*Pipeline)

func WithKeyFunc(fn KeyFunc) PipelineOption {
	return func(p *Pipeline) { p.keyFn = fn }
}

func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(limiter ratelimit.Limiter, logger *slog.Logger, metrics *Metrics, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		limiter:  limiter,
		keyFn:    HeaderKeyFunc(""),
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
		degraded: rate.Sometimes{First: 1, Interval: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register adds every route of table to r.
func (p *Pipeline) Register(r gin.IRoutes, table []Route) {
	for _, rt := range table {
		handlers := make([]gin.HandlerFunc, 0, 2)
		if rt.Throttle {
			handlers = append(handlers, p.throttle())
		}
		handlers = append(handlers, p.execute(rt))
		r.Handle(rt.Method, rt.Path, handlers...)
	}
}

func (p *Pipeline) throttle() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := p.now()
		key := p.keyFn(c)

		dec, err := p.limiter.Admit(c.Request.Context(), key, now)
		if err != nil {
			p.degraded.Do(func() {
				p.logger.Warn("rate limiter unavailable, admitting request", "error", err)
			})
			return
		}

		c.Header(headerRateLimit, strconv.Itoa(dec.Limit))
		c.Header(headerRateRemaining, strconv.Itoa(dec.Remaining))
		if !dec.Allowed {
			c.Header(headerRetryAfter, strconv.Itoa(retryAfterSeconds(dec.RetryAfter(now))))
			p.metrics.RateLimitRejections.Inc()
			abortWithError(c, apperr.New(apperr.RateLimited, rateLimitedMessage))
		}
	}
}

func (p *Pipeline) execute(rt Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body any
		if rt.Body != nil {
			raw, err := readBody(c)
			if err != nil {
				abortWithError(c, err)
				return
			}
			if body, err = rt.Body.Bind(raw); err != nil {
				abortWithError(c, err)
				return
			}
		}

		out, err := rt.Handle(c, body)
		if err != nil {
			abortWithError(c, err)
			return
		}

		if rt.Status == http.StatusNoContent {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(rt.Status, out)
	}
}

func readBody(c *gin.Context) ([]byte, error) {
	if ct := c.ContentType(); ct != "" && ct != gin.MIMEJSON {
		return nil, apperr.New(apperr.InvalidArgument, "Content-Type must be application/json")
	}

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Wrap(apperr.InvalidArgument, err, "request body too large")
		}
		return nil, apperr.Wrap(apperr.InvalidArgument, err, "failed to read request body")
	}
	return raw, nil
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
