package repository

import (
	"context"
	"errors"

	"github.com/dewgenenny/facesinq/internal/database"
	"github.com/dewgenenny/facesinq/internal/models"

	"gorm.io/gorm"
)

// GetQuizSession returns the user's active session, or nil when idle.
func GetQuizSession(ctx context.Context, userID string) (*models.QuizSession, error) {
	var session models.QuizSession
	result := database.DB.WithContext(ctx).First(&session, "user_id = ?", userID)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &session, nil
}

// ReplaceQuizSession stores the session for a freshly sent quiz. The delete
// and insert run in one transaction so a stale row from a concurrently
// expiring session can never coexist with the new one.
func ReplaceQuizSession(ctx context.Context, userID, correctUserID string) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.QuizSession{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.QuizSession{
			UserID:        userID,
			CorrectUserID: correctUserID,
		}).Error
	})
}

// DeleteQuizSession removes the user's active session if any, returning the
// number of rows removed. Deleting an already-idle user is not an error.
func DeleteQuizSession(ctx context.Context, userID string) (int64, error) {
	result := database.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.QuizSession{})
	return result.RowsAffected, result.Error
}
