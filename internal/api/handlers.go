package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/example/examtrainer/internal/selection"
	"github.com/example/examtrainer/pkg/models"
)

const defaultBatchSize = 30

func (s *Server) getQuestions(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user_id"})
		return
	}

	batchSize := defaultBatchSize
	if v := c.Query("batch_size"); v != "" {
		batchSize, err = strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid batch_size"})
			return
		}
	}

	questions, err := s.selector.Select(c.Request.Context(), selection.Request{
		UserID:    userID,
		Mode:      selection.Mode(c.Query("mode")),
		Country:   c.Query("country"),
		Language:  c.Query("language"),
		Topics:    c.QueryArray("topic"),
		BatchSize: batchSize,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (s *Server) listCountries(c *gin.Context) {
	countries, err := s.questions.Countries(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, countries)
}

func (s *Server) listLanguages(c *gin.Context) {
	languages, err := s.questions.Languages(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, languages)
}

func (s *Server) listTopics(c *gin.Context) {
	country, language := c.Query("country"), c.Query("language")
	if country == "" || language == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "country and language are required"})
		return
	}
	topics, err := s.questions.Topics(c.Request.Context(), country, language)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (s *Server) upsertUser(c *gin.Context) {
	var payload models.UserCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	user, err := s.users.Upsert(c.Request.Context(), payload)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) getUserByTelegramID(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid telegram_id"})
		return
	}
	user, err := s.users.GetByTelegramID(c.Request.Context(), telegramID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateUserSettings(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user_id"})
		return
	}
	var update models.UserSettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	user, err := s.users.UpdateSettings(c.Request.Context(), userID, update)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type examSettingsRequest struct {
	ExamDate  string `json:"exam_date" binding:"required"`
	DailyGoal int    `json:"daily_goal" binding:"required,gte=1,lte=100"`
}

type examSettingsResponse struct {
	ExamDate             *string `json:"exam_date"`
	DailyGoal            *int    `json:"daily_goal"`
	DaysUntilExam        *int    `json:"days_until_exam"`
	RecommendedDailyGoal *int    `json:"recommended_daily_goal"`
}

func (s *Server) setExamSettings(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user_id"})
		return
	}
	var payload examSettingsRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	examDate, err := time.ParseInLocation("2006-01-02", payload.ExamDate, s.dayLoc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "exam_date must be YYYY-MM-DD"})
		return
	}
	if !examDate.After(today(s.dayLoc)) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "exam date must be in the future"})
		return
	}

	user, err := s.users.UpdateSettings(c.Request.Context(), userID, models.UserSettingsUpdate{
		ExamDate:  &examDate,
		DailyGoal: &payload.DailyGoal,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.examSettingsFor(c, user))
}

func (s *Server) getExamSettings(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user_id"})
		return
	}
	user, err := s.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.examSettingsFor(c, user))
}

// examSettingsFor derives the countdown fields from the user's exam date and
// the catalog size for their exam country/language.
func (s *Server) examSettingsFor(c *gin.Context, user *models.User) examSettingsResponse {
	resp := examSettingsResponse{DailyGoal: user.DailyGoal}
	if user.ExamDate == nil {
		return resp
	}

	date := user.ExamDate.Format("2006-01-02")
	resp.ExamDate = &date

	days := int(user.ExamDate.Sub(today(s.dayLoc)).Hours() / 24)
	resp.DaysUntilExam = &days

	total, err := s.counts.Get(c.Request.Context(), user.ExamCountry, user.ExamLanguage)
	if err != nil {
		s.log.Warnw("failed to load catalog size for recommendation",
			"user_id", user.ID, "error", err)
		return resp
	}
	recommended := total / max(1, days)
	if recommended < 1 {
		recommended = 1
	}
	resp.RecommendedDailyGoal = &recommended
	return resp
}

func (s *Server) getUserStats(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user_id"})
		return
	}
	stats, err := s.coordinator.Stats(c.Request.Context(), userID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) getDailyProgress(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user_id"})
		return
	}

	target := time.Now()
	if v := c.Query("date"); v != "" {
		target, err = time.ParseInLocation("2006-01-02", v, s.dayLoc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "date must be YYYY-MM-DD"})
			return
		}
	}

	report, err := s.aggregator.Compute(c.Request.Context(), userID, target, s.dayLoc)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) submitAnswer(c *gin.Context) {
	var payload models.AnswerSubmit
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	progress, err := s.coordinator.SubmitAnswer(c.Request.Context(), payload)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, progress)
}

func (s *Server) submitBatch(c *gin.Context) {
	var payload models.BatchAnswersSubmit
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	result, err := s.coordinator.SubmitBatch(c.Request.Context(), payload)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// today is local midnight in loc.
func today(loc *time.Location) time.Time {
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}
