package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/example/examtrainer/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByID returns a user by internal ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := DB.GetContext(ctx, &user, DB.Rebind("SELECT * FROM users WHERE id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "user %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &user, nil
}

// GetByTelegramID returns a user by Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := DB.GetContext(ctx, &user, DB.Rebind("SELECT * FROM users WHERE telegram_id = ?"), telegramID)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "telegram user %d", telegramID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user by telegram ID")
	}
	return &user, nil
}

// Upsert creates a user keyed by telegram_id or refreshes the profile fields
// of an existing one.
func (r *UserRepository) Upsert(ctx context.Context, data models.UserCreate) (*models.User, error) {
	existing, err := r.GetByTelegramID(ctx, data.TelegramID)
	if err != nil && !IsNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()

	if existing == nil {
		user := models.User{
			ID:           uuid.New(),
			TelegramID:   data.TelegramID,
			Username:     data.Username,
			FirstName:    data.FirstName,
			LastName:     data.LastName,
			ExamCountry:  strings.ToLower(data.ExamCountry),
			ExamLanguage: strings.ToLower(data.ExamLanguage),
			UILanguage:   strings.ToLower(data.UILanguage),
			ExamDate:     data.ExamDate,
			DailyGoal:    data.DailyGoal,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		query := DB.Rebind(`
			INSERT INTO users (
				id, telegram_id, username, first_name, last_name,
				exam_country, exam_language, ui_language, exam_date, daily_goal,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		_, err = DB.ExecContext(ctx, query,
			user.ID, user.TelegramID, user.Username, user.FirstName, user.LastName,
			user.ExamCountry, user.ExamLanguage, user.UILanguage, user.ExamDate, user.DailyGoal,
			user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create user")
		}
		return &user, nil
	}

	existing.Username = data.Username
	existing.FirstName = data.FirstName
	existing.LastName = data.LastName
	if data.ExamCountry != "" {
		existing.ExamCountry = strings.ToLower(data.ExamCountry)
	}
	if data.ExamLanguage != "" {
		existing.ExamLanguage = strings.ToLower(data.ExamLanguage)
	}
	if data.UILanguage != "" {
		existing.UILanguage = strings.ToLower(data.UILanguage)
	}
	if data.ExamDate != nil {
		existing.ExamDate = data.ExamDate
	}
	if data.DailyGoal != nil {
		existing.DailyGoal = data.DailyGoal
	}
	existing.UpdatedAt = now

	query := DB.Rebind(`
		UPDATE users SET
			username = ?, first_name = ?, last_name = ?,
			exam_country = ?, exam_language = ?, ui_language = ?,
			exam_date = ?, daily_goal = ?, updated_at = ?
		WHERE id = ?
	`)
	_, err = DB.ExecContext(ctx, query,
		existing.Username, existing.FirstName, existing.LastName,
		existing.ExamCountry, existing.ExamLanguage, existing.UILanguage,
		existing.ExamDate, existing.DailyGoal, existing.UpdatedAt,
		existing.ID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update user")
	}
	return existing, nil
}

// UpdateSettings writes the non-nil fields of the allow-listed settings
// update and returns the refreshed user. Fields outside the update struct
// cannot be touched through this path.
func (r *UserRepository) UpdateSettings(ctx context.Context, id uuid.UUID, update models.UserSettingsUpdate) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.ExamCountry != nil {
		user.ExamCountry = strings.ToLower(*update.ExamCountry)
	}
	if update.ExamLanguage != nil {
		user.ExamLanguage = strings.ToLower(*update.ExamLanguage)
	}
	if update.UILanguage != nil {
		user.UILanguage = strings.ToLower(*update.UILanguage)
	}
	if update.ExamDate != nil {
		user.ExamDate = update.ExamDate
	}
	if update.DailyGoal != nil {
		user.DailyGoal = update.DailyGoal
	}
	user.UpdatedAt = time.Now().UTC()

	query := DB.Rebind(`
		UPDATE users SET
			exam_country = ?, exam_language = ?, ui_language = ?,
			exam_date = ?, daily_goal = ?, updated_at = ?
		WHERE id = ?
	`)
	_, err = DB.ExecContext(ctx, query,
		user.ExamCountry, user.ExamLanguage, user.UILanguage,
		user.ExamDate, user.DailyGoal, user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update user settings")
	}
	return user, nil
}
