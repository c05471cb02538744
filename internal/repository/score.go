package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dewgenenny/facesinq/internal/database"
	"github.com/dewgenenny/facesinq/internal/models"

	"gorm.io/gorm"
)

// GetScore returns the user's aggregate, zero-valued when they have never
// answered.
func GetScore(ctx context.Context, userID string) (*models.Score, error) {
	var score models.Score
	result := database.DB.WithContext(ctx).First(&score, "user_id = ?", userID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return &models.Score{UserID: userID}, nil
	}
	return &score, result.Error
}

// LeaderboardRow is one ranked entry as displayed to users.
type LeaderboardRow struct {
	UserID        string
	Name          string
	Image         string
	Score         int
	TotalAttempts int
	Correct       int
	Streak        int
}

// Percentage is the accuracy over the row's window.
func (r LeaderboardRow) Percentage() float64 {
	if r.TotalAttempts == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.TotalAttempts) * 100
}

// TopScores ranks the all-time Score aggregates. Users below minAttempts are
// excluded so a single lucky guess cannot top the board. orderBy selects the
// ranking policy column expression ("score" or accuracy).
func TopScores(ctx context.Context, limit, minAttempts int, byPercentage bool) ([]LeaderboardRow, error) {
	order := "scores.score DESC, users.id"
	if byPercentage {
		order = "accuracy DESC, users.id"
	}

	var rows []LeaderboardRow
	result := database.DB.WithContext(ctx).
		Table("scores").
		Select("users.id AS user_id, users.name AS name, users.image AS image, " +
			"scores.score AS score, scores.total_attempts AS total_attempts, " +
			"scores.correct_attempts AS correct, users.current_streak AS streak, " +
			"(scores.correct_attempts * 1.0 / scores.total_attempts) AS accuracy").
		Joins("JOIN users ON users.id = scores.user_id").
		Where("scores.total_attempts >= ?", minAttempts).
		Order(order).
		Limit(limit).
		Scan(&rows)
	return rows, result.Error
}

// TopScoresSince aggregates the history ledger from start onward, grouped per
// user. No minimum-attempt floor: any play inside the window qualifies.
func TopScoresSince(ctx context.Context, start time.Time, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	result := database.DB.WithContext(ctx).
		Table("score_history").
		Select("users.id AS user_id, users.name AS name, users.image AS image, "+
			"SUM(score_history.points) AS score, COUNT(*) AS total_attempts, "+
			"SUM(CASE WHEN score_history.is_correct THEN 1 ELSE 0 END) AS correct, "+
			"users.current_streak AS streak").
		Joins("JOIN users ON users.id = score_history.user_id").
		Where("score_history.created_at >= ?", start).
		Group("users.id, users.name, users.image, users.current_streak").
		Order("score DESC, users.id").
		Limit(limit).
		Scan(&rows)
	return rows, result.Error
}
