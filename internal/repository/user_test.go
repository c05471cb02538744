package repository

import (
	"context"
	"testing"
	"time"

	"github.com/dewgenenny/facesinq/internal/database"
	"github.com/dewgenenny/facesinq/internal/models"
)

func TestUsersDueForQuiz(t *testing.T) {
	setupDB(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	users := []models.User{
		{ID: "U-due", TeamID: "T1", Name: "Due", OptedIn: true, NextQuizAt: &past},
		{ID: "U-new", TeamID: "T1", Name: "Never scheduled", OptedIn: true},
		{ID: "U-later", TeamID: "T1", Name: "Later", OptedIn: true, NextQuizAt: &future},
		{ID: "U-out", TeamID: "T1", Name: "Opted out", OptedIn: false, NextQuizAt: &past},
	}
	for _, user := range users {
		if err := database.DB.Create(&user).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	due, err := UsersDueForQuiz(context.Background(), now)
	if err != nil {
		t.Fatalf("UsersDueForQuiz: %v", err)
	}

	ids := make(map[string]bool)
	for _, user := range due {
		ids[user.ID] = true
	}
	if len(due) != 2 || !ids["U-due"] || !ids["U-new"] {
		t.Fatalf("unexpected due set: %v", ids)
	}
}

func TestSetNextQuizAt(t *testing.T) {
	setupDB(t)
	if err := database.DB.Create(&models.User{ID: "U1", TeamID: "T1", Name: "Player", OptedIn: true}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	next := time.Date(2025, 6, 10, 13, 0, 0, 0, time.UTC)
	if err := SetNextQuizAt(context.Background(), "U1", next); err != nil {
		t.Fatalf("SetNextQuizAt: %v", err)
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", "U1").Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.NextQuizAt == nil || !user.NextQuizAt.Equal(next) {
		t.Fatalf("schedule not persisted: %v", user.NextQuizAt)
	}
}

func TestSetOptInAndCount(t *testing.T) {
	setupDB(t)
	for _, id := range []string{"U1", "U2", "U3"} {
		if err := database.DB.Create(&models.User{ID: id, TeamID: "T1", Name: id}).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	ctx := context.Background()

	if err := SetOptIn(ctx, "U1", true); err != nil {
		t.Fatalf("SetOptIn: %v", err)
	}
	if err := SetOptIn(ctx, "U2", true); err != nil {
		t.Fatalf("SetOptIn: %v", err)
	}

	count, err := OptedInCount(ctx)
	if err != nil {
		t.Fatalf("OptedInCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 opted-in users, got %d", count)
	}
}

func TestSetDifficultyValidates(t *testing.T) {
	setupDB(t)
	if err := database.DB.Create(&models.User{ID: "U1", TeamID: "T1", Name: "Player"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	ctx := context.Background()

	if err := SetDifficulty(ctx, "U1", models.DifficultyHard); err != nil {
		t.Fatalf("SetDifficulty: %v", err)
	}
	if err := SetDifficulty(ctx, "U1", "nightmare"); err == nil {
		t.Fatal("expected an error for an unknown mode")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", "U1").Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.Difficulty != models.DifficultyHard {
		t.Fatalf("difficulty not persisted: %q", user.Difficulty)
	}
}
