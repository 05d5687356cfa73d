// Package api exposes the engine operations over HTTP. It is glue: requests
// are decoded, handed to the engine components, and errors mapped to status
// codes.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/examtrainer/internal/cache"
	"github.com/example/examtrainer/internal/database"
	"github.com/example/examtrainer/internal/mastery"
	"github.com/example/examtrainer/internal/selection"
	"github.com/example/examtrainer/internal/submission"
)

// Server wires the HTTP routes to the engine components.
type Server struct {
	engine      *gin.Engine
	users       *database.UserRepository
	questions   *database.QuestionRepository
	selector    *selection.Selector
	coordinator *submission.Coordinator
	aggregator  *mastery.Aggregator
	counts      *cache.CatalogCounts
	dayLoc      *time.Location
	log         *zap.SugaredLogger
}

// New creates the HTTP server and registers all routes.
func New(users *database.UserRepository, questions *database.QuestionRepository, selector *selection.Selector, coordinator *submission.Coordinator, aggregator *mastery.Aggregator, counts *cache.CatalogCounts, dayLoc *time.Location, log *zap.SugaredLogger) *Server {
	if dayLoc == nil {
		dayLoc = time.UTC
	}
	s := &Server{
		engine:      gin.New(),
		users:       users,
		questions:   questions,
		selector:    selector,
		coordinator: coordinator,
		aggregator:  aggregator,
		counts:      counts,
		dayLoc:      dayLoc,
		log:         log,
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)

	questions := s.engine.Group("/questions")
	questions.GET("", s.getQuestions)
	questions.GET("/countries", s.listCountries)
	questions.GET("/languages", s.listLanguages)

	s.engine.GET("/topics", s.listTopics)

	users := s.engine.Group("/users")
	users.POST("", s.upsertUser)
	users.GET("/by-telegram-id/:telegram_id", s.getUserByTelegramID)
	users.PATCH("/:user_id", s.updateUserSettings)
	users.POST("/:user_id/exam-settings", s.setExamSettings)
	users.GET("/:user_id/exam-settings", s.getExamSettings)
	users.GET("/:user_id/stats", s.getUserStats)
	users.GET("/:user_id/daily-progress", s.getDailyProgress)

	progress := s.engine.Group("/user_progress")
	progress.POST("/submit_answer", s.submitAnswer)
	progress.POST("/submit_batch", s.submitBatch)
}

// Handler returns the http handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// respondError maps engine errors onto HTTP statuses. Anything outside the
// sentinel taxonomy is a transient storage failure the caller may retry.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case database.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case database.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		s.log.Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "temporary storage failure, retry the request"})
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
