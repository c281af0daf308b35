package http

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"storefront-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

const (
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"
)

type HealthChecker interface {
	Health() error
}

type healthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version" example:"1.0.0"`
	Uptime  int64  `json:"uptime" example:"120"`
}

type RouterOptions struct {
	Prefix    string
	Version   string
	StartedAt time.Time
	// DocsEnabled mounts /swagger and /openapi.json.
	DocsEnabled bool
}

// RegisterRoutes mounts the API route table under opts.Prefix plus the
// unthrottled operational endpoints.
func RegisterRoutes(router *gin.Engine, handler *Handler, pipeline *Pipeline, checker HealthChecker, opts RouterOptions) {
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, apperr.New(apperr.NotFound, fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path)))
	})
	router.NoMethod(func(c *gin.Context) {
		abortWithError(c, apperr.New(apperr.MethodNotAllowed, fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path)))
	})

	pipeline.Register(router.Group(opts.Prefix), handler.Routes())

	router.GET("/health", healthHandler(checker, opts))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.DocsEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		router.GET("/openapi.json", openAPIHandler)
	}
}

// healthHandler godoc
// @Summary      Service health
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Failure      503  {object}  healthResponse
// @Router       /health [get]
func healthHandler(checker HealthChecker, opts RouterOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := healthResponse{
			Status:  healthStatusOK,
			Version: opts.Version,
			Uptime:  int64(math.Round(time.Since(opts.StartedAt).Seconds())),
		}
		if err := checker.Health(); err != nil {
			_ = c.Error(err)
			resp.Status = healthStatusUnhealthy
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func openAPIHandler(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		abortWithError(c, fmt.Errorf("read openapi document: %w", err))
		return
	}
	c.Data(http.StatusOK, gin.MIMEJSON, []byte(doc))
}
