package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dewgenenny/facesinq/internal/database"
	"github.com/dewgenenny/facesinq/internal/models"

	"gorm.io/gorm"
)

func GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	result := database.DB.WithContext(ctx).First(&user, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, result.Error
}

// GetUserName returns the display name for an ID, or "Unknown" when the user
// is not in the directory.
func GetUserName(ctx context.Context, id string) string {
	user, err := GetUser(ctx, id)
	if err != nil || user == nil {
		return "Unknown"
	}
	return user.Name
}

func SetOptIn(ctx context.Context, userID string, optedIn bool) error {
	return database.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("opted_in", optedIn).Error
}

func SetDifficulty(ctx context.Context, userID, difficulty string) error {
	if difficulty != models.DifficultyEasy && difficulty != models.DifficultyHard {
		return errors.New("unknown difficulty mode: " + difficulty)
	}
	return database.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("difficulty", difficulty).Error
}

func OptedInCount(ctx context.Context) (int64, error) {
	var count int64
	result := database.DB.WithContext(ctx).Model(&models.User{}).Where("opted_in = ?", true).Count(&count)
	return count, result.Error
}

// ColleaguesExcluding returns directory records for everyone in the workspace
// except the given user. This is the candidate pool for quiz options.
func ColleaguesExcluding(ctx context.Context, userID, teamID string) ([]models.Colleague, error) {
	var colleagues []models.Colleague
	result := database.DB.WithContext(ctx).Model(&models.User{}).
		Select("id", "name", "image").
		Where("team_id = ? AND id <> ?", teamID, userID).
		Find(&colleagues)
	return colleagues, result.Error
}

// UsersDueForQuiz returns opted-in users whose scheduled quiz time has
// elapsed. Users with no schedule yet are included so they get picked up on
// the first tick after opting in.
func UsersDueForQuiz(ctx context.Context, now time.Time) ([]models.User, error) {
	var users []models.User
	result := database.DB.WithContext(ctx).
		Where("opted_in = ?", true).
		Where("next_quiz_at IS NULL OR next_quiz_at <= ?", now).
		Find(&users)
	return users, result.Error
}

func SetNextQuizAt(ctx context.Context, userID string, at time.Time) error {
	return database.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("next_quiz_at", at).Error
}
