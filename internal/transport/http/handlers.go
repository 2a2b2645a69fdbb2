package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"hero-quiz-service/internal/app"
	"hero-quiz-service/internal/domain"
)

// Handler serves the JSON API.
type Handler struct {
	services Services
}

type attemptRequest struct {
	Slug    string `json:"slug" binding:"required"`
	Total   *int   `json:"total" binding:"required,min=0"`
	Correct *int   `json:"correct" binding:"required,min=0"`
}

type summarizeRequest struct {
	Text         string `json:"text" binding:"required"`
	MaxSentences int    `json:"maxSentences" binding:"min=0,max=10"`
}

func (h *Handler) ListHeroes(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	era := domain.Era(c.Query("era"))
	if era != "" && !era.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown era"})
		return
	}

	heroes, err := h.services.Heroes.List(c.Request.Context(), app.HeroFilter{Query: c.Query("q"), Era: era, Limit: limit})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, heroes)
}

func (h *Handler) GetHero(c *gin.Context) {
	hero, err := h.services.Heroes.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, hero)
}

func (h *Handler) GenerateQuiz(c *gin.Context) {
	num, ok := queryInt(c, "num")
	if !ok {
		return
	}
	payload, err := h.services.Quizzes.Generate(c.Request.Context(), c.Param("slug"), num)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) GenerateAIQuiz(c *gin.Context) {
	num, ok := queryInt(c, "num")
	if !ok {
		return
	}
	payload, err := h.services.Quizzes.GenerateAI(c.Request.Context(), c.Param("slug"), num)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) Summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary, err := h.services.Quizzes.Summarize(c.Request.Context(), req.Text, req.MaxSentences)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) RecordAttempt(c *gin.Context) {
	var req attemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.services.Scoring.RecordAttempt(c.Request.Context(), req.Slug, *req.Total, *req.Correct)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) PointsSummary(c *gin.Context) {
	summary, err := h.services.Points.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) Awards(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	awards, err := h.services.Points.Awards(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, awards)
}

// fail maps domain errors onto HTTP statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, domain.ErrHeroNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "hero not found"})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.Is(err, domain.ErrUpstreamGeneration):
		c.JSON(http.StatusBadGateway, gin.H{"error": "text generation failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// queryInt reads an optional integer query parameter; a missing value is 0.
// It writes a 400 response and returns false when the value is malformed.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}
