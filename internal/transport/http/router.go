package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"hero-quiz-service/internal/app"
	"hero-quiz-service/internal/metrics"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Heroes  *app.HeroService
	Quizzes *app.QuizService
	Scoring *app.ScoringService
	Points  *app.PointsService
	Hub     *app.SummaryHub
}

// Options configures cross-cutting router behavior.
type Options struct {
	// AllowedOrigins lists CORS origins; "*" allows any, and any
	// http://localhost:PORT origin is always allowed.
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
	Metrics        *metrics.Metrics
	Log            logrus.FieldLogger
}

// NewRouter builds the gin engine serving the /api/v1 routes, the points
// WebSocket, /healthz and /metrics.
func NewRouter(s Services, opts Options) *gin.Engine {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(accessLog(opts.Log))
	r.Use(observe(opts.Metrics))
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  originMatcher(opts.AllowedOrigins),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", HeaderUserID, HeaderUserEmail, HeaderUserName},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(identity())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	h := &Handler{services: s}
	ws := NewWSHandler(s.Points, s.Hub, opts.Log)

	api := r.Group("/api/v1")
	{
		api.GET("/heroes", h.ListHeroes)
		api.GET("/heroes/:slug", h.GetHero)

		api.POST("/quizzes/:slug", h.GenerateQuiz)
		api.POST("/ai-quizzes/:slug", h.GenerateAIQuiz)
		api.POST("/ai/summarize", h.Summarize)

		api.POST("/attempts", h.RecordAttempt)
		api.GET("/points/summary", h.PointsSummary)
		api.GET("/points/awards", h.Awards)

		api.GET("/ws/points", gin.WrapF(ws.ServeWS))
	}
	return r
}

func originMatcher(allowed []string) func(string) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(origin string) bool {
		if _, wildcard := set["*"]; wildcard {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		// allow any http://localhost:PORT during development
		return strings.HasPrefix(origin, "http://localhost:")
	}
}
