package vetting

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AnalyzeFunc is the pipeline the handlers drive
type AnalyzeFunc func(ctx context.Context, raw string) (*Report, error)

// PreviewRequest is the body of POST /api/preview
type PreviewRequest struct {
	URL string `json:"url"`
}

// HandlerOptions configure the HTTP surface
type HandlerOptions struct {
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

// NewRouter builds the gin engine serving the analysis API
func NewRouter(analyze AnalyzeFunc, opts HandlerOptions, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	if len(opts.AllowedOrigins) > 0 {
		cfg := corsConfig(opts.AllowedOrigins)
		if err := cfg.Validate(); err != nil {
			logger.Error("invalid cors origins, cross-origin requests disabled", zap.Error(err))
		} else {
			router.Use(cors.New(cfg))
		}
	}

	router.GET("/health", HealthHandler)

	api := router.Group("/api")
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		api.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RateLimit), burst)))
	}
	api.POST("/preview", PreviewHandler(analyze, logger))

	return router
}

// HealthHandler reports liveness
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// PreviewHandler analyzes the submitted URL
func PreviewHandler(analyze AnalyzeFunc, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PreviewRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "URL is required"})
			return
		}

		report, err := analyze(c.Request.Context(), req.URL)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, report)
		case errors.Is(err, ErrInvalidURL):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		case errors.Is(err, ErrNavigation):
			c.JSON(http.StatusBadGateway, gin.H{"detail": "Failed to load the URL"})
		default:
			logger.Error("analysis failed", zap.String("url", req.URL), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Agent error: " + err.Error()})
		}
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// corsConfig allows the configured front-end origins; "*" allows any origin
// without credentials
func corsConfig(allowed []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range allowed {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = allowed
	return cfg
}

// rateLimit sheds load; each preview launches a browser
func rateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Too many requests"})
			return
		}
		c.Next()
	}
}
