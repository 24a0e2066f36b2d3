package api

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/pullsheet/internal/api/handlers"
	"github.com/codyseavey/pullsheet/internal/metrics"
	"github.com/codyseavey/pullsheet/internal/services"
)

func SetupRouter(organizer *services.Organizer) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	router.Use(recordHTTPMetrics())

	// Initialize handlers
	organizeHandler := handlers.NewOrganizeHandler(organizer)

	// API routes
	api := router.Group("/api")
	{
		slips := api.Group("/slips")
		{
			slips.POST("/organize", organizeHandler.OrganizeSlip)
			slips.POST("/pullsheet", organizeHandler.RenderPullSheet)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// recordHTTPMetrics feeds the request counters and latency histogram. The
// route template is used as the path label so per-order URLs do not explode
// the cardinality.
func recordHTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}
