package services

import (
	"context"
	"testing"
	"time"

	"github.com/dewgenenny/facesinq/internal/config"
	"github.com/dewgenenny/facesinq/internal/database"
	"github.com/dewgenenny/facesinq/internal/models"

	"go.uber.org/zap"
)

func seedScoredUser(t *testing.T, id string, score, attempts, correct, streak int) {
	t.Helper()
	if err := database.DB.Create(&models.User{ID: id, TeamID: "T1", Name: "User " + id, CurrentStreak: streak}).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	if err := database.DB.Create(&models.Score{UserID: id, Score: score, TotalAttempts: attempts, CorrectAttempts: correct}).Error; err != nil {
		t.Fatalf("seed score %s: %v", id, err)
	}
}

func TestTopAllTimeAppliesAttemptFloor(t *testing.T) {
	setupDB(t)
	seedScoredUser(t, "U-nine", 500, 9, 9, 3)  // below the floor
	seedScoredUser(t, "U-ten", 100, 10, 5, 1)  // at the floor
	seedScoredUser(t, "U-many", 300, 50, 30, 2)

	board := NewLeaderboard(zap.NewNop(), config.Default().Leaderboard)
	rows, err := board.TopAllTime(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopAllTime: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 qualifying rows, got %d", len(rows))
	}
	// Raw-score ranking: 300 before 100; the 9-attempt user is absent.
	if rows[0].UserID != "U-many" || rows[1].UserID != "U-ten" {
		t.Fatalf("unexpected order: %s, %s", rows[0].UserID, rows[1].UserID)
	}
	for _, row := range rows {
		if row.UserID == "U-nine" {
			t.Fatal("user below attempt floor made the board")
		}
	}
}

func TestTopAllTimePercentagePolicy(t *testing.T) {
	setupDB(t)
	seedScoredUser(t, "U-sharp", 100, 10, 9, 0) // 90% accuracy, lower score
	seedScoredUser(t, "U-grind", 400, 40, 20, 0) // 50% accuracy, higher score

	cfg := config.Default().Leaderboard
	cfg.Ranking = "percentage"
	board := NewLeaderboard(zap.NewNop(), cfg)

	rows, err := board.TopAllTime(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopAllTime: %v", err)
	}
	if len(rows) != 2 || rows[0].UserID != "U-sharp" {
		t.Fatalf("percentage policy should rank accuracy first, got %+v", rows)
	}
}

func TestTopSinceWindowsHistory(t *testing.T) {
	setupDB(t)
	seedScoredUser(t, "U-old", 1000, 100, 80, 5)
	seedScoredUser(t, "U-new", 20, 2, 1, 1)

	now := time.Now().UTC()
	lastWeek := now.AddDate(0, 0, -9)
	history := []models.ScoreHistory{
		{UserID: "U-old", Points: 15, IsCorrect: true, CreatedAt: lastWeek},
		{UserID: "U-new", Points: 15, IsCorrect: true, CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: "U-new", Points: 2, IsCorrect: false, CreatedAt: now.Add(-1 * time.Hour)},
	}
	for _, row := range history {
		if err := database.DB.Create(&row).Error; err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}

	board := NewLeaderboard(zap.NewNop(), config.Default().Leaderboard)
	rows, err := board.TopSince(context.Background(), now.AddDate(0, 0, -7), 10)
	if err != nil {
		t.Fatalf("TopSince: %v", err)
	}

	// Only U-new played inside the window; no attempt floor applies.
	if len(rows) != 1 || rows[0].UserID != "U-new" {
		t.Fatalf("unexpected windowed rows: %+v", rows)
	}
	if rows[0].Score != 17 || rows[0].TotalAttempts != 2 || rows[0].Correct != 1 {
		t.Fatalf("unexpected window aggregate: %+v", rows[0])
	}
	if pct := rows[0].Percentage(); pct != 50 {
		t.Fatalf("expected 50%% accuracy in window, got %.1f", pct)
	}
}
