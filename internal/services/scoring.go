package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dewgenenny/facesinq/internal/config"
	"github.com/dewgenenny/facesinq/internal/database"
	"github.com/dewgenenny/facesinq/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Scorer applies the point formula and daily-play streak rules.
type Scorer struct {
	log *zap.Logger
	cfg config.ScoringConfig
}

func NewScorer(log *zap.Logger, cfg config.ScoringConfig) *Scorer {
	return &Scorer{log: log, cfg: cfg}
}

// ScoreResult reports what one answer was worth.
type ScoreResult struct {
	Points  int
	Streak  int
	Correct bool
}

// NextStreak computes the user's streak after playing at time now. Only the
// calendar date matters: playing again the same day keeps the streak, the
// next day extends it, anything longer resets it to 1.
func NextStreak(lastAnswered *time.Time, now time.Time, current int) int {
	if lastAnswered == nil {
		return 1
	}

	lastDay := time.Date(lastAnswered.Year(), lastAnswered.Month(), lastAnswered.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch int(today.Sub(lastDay).Hours() / 24) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

// Points computes the award for one answer given the streak after the daily
// update. Incorrect answers earn the flat participation award; the streak
// bonus applies to correct answers only and is capped.
func (s *Scorer) Points(isCorrect bool, streak int) int {
	if !isCorrect {
		return s.cfg.BaseIncorrect
	}
	bonusMultiplier := streak
	if bonusMultiplier > s.cfg.StreakBonusCap {
		bonusMultiplier = s.cfg.StreakBonusCap
	}
	return s.cfg.BaseCorrect + s.cfg.StreakBonusStep*bonusMultiplier
}

// Score updates the user's streak and last-answered time, the Score
// aggregate, and appends a history row — all in one transaction so a crash
// can never record one without the others. Playing updates the streak and
// last-answered date whether or not the answer was right.
func (s *Scorer) Score(ctx context.Context, userID string, isCorrect bool, now time.Time) (*ScoreResult, error) {
	var result ScoreResult

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("could not load user %s: %w", userID, err)
		}

		streak := NextStreak(user.LastAnsweredAt, now, user.CurrentStreak)
		points := s.Points(isCorrect, streak)

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{
				"current_streak":   streak,
				"last_answered_at": now,
			}).Error; err != nil {
			return err
		}

		var score models.Score
		err := tx.First(&score, "user_id = ?", userID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			score = models.Score{UserID: userID, Score: points, TotalAttempts: 1}
			if isCorrect {
				score.CorrectAttempts = 1
			}
			if err := tx.Create(&score).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			score.Score += points
			score.TotalAttempts++
			if isCorrect {
				score.CorrectAttempts++
			}
			if err := tx.Save(&score).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&models.ScoreHistory{
			UserID:    userID,
			Points:    points,
			IsCorrect: isCorrect,
			CreatedAt: now,
		}).Error; err != nil {
			return err
		}

		result = ScoreResult{Points: points, Streak: streak, Correct: isCorrect}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("Answer scored",
		zap.String("user", userID),
		zap.Bool("correct", isCorrect),
		zap.Int("points", result.Points),
		zap.Int("streak", result.Streak))
	return &result, nil
}
