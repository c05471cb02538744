package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dewgenenny/facesinq/internal/config"
	"github.com/dewgenenny/facesinq/internal/database"
	"github.com/dewgenenny/facesinq/internal/images"
	"github.com/dewgenenny/facesinq/internal/models"
	"github.com/dewgenenny/facesinq/internal/repository"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// setupDB points the global handle at a fresh in-memory sqlite database. The
// named shared-cache DSN keeps the whole connection pool on one database.
func setupDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	if err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, zap.NewNop()); err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
}

// seedTeam creates a player plus enough colleagues for a quiz.
func seedTeam(t *testing.T, teamID, playerID string, colleagues int) {
	t.Helper()
	player := models.User{ID: playerID, TeamID: teamID, Name: "Player", OptedIn: true}
	if err := database.DB.Create(&player).Error; err != nil {
		t.Fatalf("seed player: %v", err)
	}
	for i := 0; i < colleagues; i++ {
		colleague := models.User{
			ID:     fmt.Sprintf("%s-colleague-%d", playerID, i),
			TeamID: teamID,
			Name:   fmt.Sprintf("Colleague %d", i),
			Image:  fmt.Sprintf("https://example.com/photo-%d.jpg", i),
		}
		if err := database.DB.Create(&colleague).Error; err != nil {
			t.Fatalf("seed colleague: %v", err)
		}
	}
}

type fakeChat struct {
	posts      []string
	updates    int
	uploads    int
	failPost   bool
	failUpdate bool
}

func (f *fakeChat) OpenDirectMessage(ctx context.Context, userID string) (string, error) {
	return "D" + userID, nil
}

func (f *fakeChat) PostMessage(ctx context.Context, channelID, text string, blocks []slack.Block) (string, error) {
	if f.failPost {
		return "", errors.New("slack is down")
	}
	f.posts = append(f.posts, text)
	return "1700000000.000100", nil
}

func (f *fakeChat) UpdateMessage(ctx context.Context, channelID, messageTS, text string, blocks []slack.Block) error {
	if f.failUpdate {
		return errors.New("slack is down")
	}
	f.updates++
	return nil
}

func (f *fakeChat) UploadImage(ctx context.Context, channelID string, data []byte, title string) error {
	f.uploads++
	return nil
}

func newTestEngine(t *testing.T, chatClient *fakeChat) *Engine {
	t.Helper()
	log := zap.NewNop()
	compositor := images.NewCompositor(log, images.Options{FetchTimeout: time.Second})
	generator := NewGenerator(log, compositor)
	pending := NewPendingQuizzes(log, generator)
	scorer := NewScorer(log, config.Default().Scoring)
	return NewEngine(log, chatClient, generator, pending, scorer, models.DefaultMessages())
}

func sessionCount(t *testing.T, userID string) int64 {
	t.Helper()
	var count int64
	if err := database.DB.Model(&models.QuizSession{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	return count
}

func TestSendQuizCreatesSingleSession(t *testing.T) {
	setupDB(t)
	seedTeam(t, "T1", "U1", 4)
	chatClient := &fakeChat{}
	engine := newTestEngine(t, chatClient)
	ctx := context.Background()

	if err := engine.SendQuiz(ctx, "U1", "T1"); err != nil {
		t.Fatalf("SendQuiz: %v", err)
	}
	if got := sessionCount(t, "U1"); got != 1 {
		t.Fatalf("expected 1 session, got %d", got)
	}

	// A second send without answering must not create another session.
	err := engine.SendQuiz(ctx, "U1", "T1")
	if !errors.Is(err, ErrSessionAlreadyActive) {
		t.Fatalf("expected ErrSessionAlreadyActive, got %v", err)
	}
	if got := sessionCount(t, "U1"); got != 1 {
		t.Fatalf("expected 1 session after duplicate send, got %d", got)
	}
	// The user was told about the existing quiz.
	found := false
	for _, post := range chatClient.posts {
		if post == models.DefaultMessages().AlreadyActive {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an already-active notice to be posted")
	}
}

func TestSendQuizInsufficientCandidates(t *testing.T) {
	setupDB(t)
	seedTeam(t, "T1", "U1", 3)
	engine := newTestEngine(t, &fakeChat{})

	err := engine.SendQuiz(context.Background(), "U1", "T1")
	if !errors.Is(err, ErrInsufficientCandidates) {
		t.Fatalf("expected ErrInsufficientCandidates, got %v", err)
	}
	if got := sessionCount(t, "U1"); got != 0 {
		t.Fatalf("expected no session, got %d", got)
	}
}

func TestSendQuizRollsBackSessionOnSendFailure(t *testing.T) {
	setupDB(t)
	seedTeam(t, "T1", "U1", 4)
	engine := newTestEngine(t, &fakeChat{failPost: true})

	err := engine.SendQuiz(context.Background(), "U1", "T1")
	if err == nil {
		t.Fatal("expected a delivery error")
	}
	if got := sessionCount(t, "U1"); got != 0 {
		t.Fatalf("failed send left %d session(s) behind", got)
	}
}

func TestHandleAnswerCorrect(t *testing.T) {
	setupDB(t)
	seedTeam(t, "T1", "U1", 4)
	chatClient := &fakeChat{}
	engine := newTestEngine(t, chatClient)
	ctx := context.Background()

	if err := engine.SendQuiz(ctx, "U1", "T1"); err != nil {
		t.Fatalf("SendQuiz: %v", err)
	}
	session, err := repository.GetQuizSession(ctx, "U1")
	if err != nil || session == nil {
		t.Fatalf("expected an active session, got %v, %v", session, err)
	}

	err = engine.HandleAnswer(ctx, Answer{
		UserID:     "U1",
		SelectedID: session.CorrectUserID,
		ChannelID:  "DU1",
		MessageTS:  "1700000000.000100",
	})
	if err != nil {
		t.Fatalf("HandleAnswer: %v", err)
	}

	if got := sessionCount(t, "U1"); got != 0 {
		t.Fatalf("session not deleted after answer, %d left", got)
	}
	if chatClient.updates != 1 {
		t.Fatalf("expected 1 message update, got %d", chatClient.updates)
	}

	score, err := repository.GetScore(ctx, "U1")
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	// First-ever correct answer: streak 1, 10 base + 5 bonus.
	if score.Score != 15 || score.TotalAttempts != 1 || score.CorrectAttempts != 1 {
		t.Fatalf("unexpected aggregate: %+v", score)
	}

	var history int64
	database.DB.Model(&models.ScoreHistory{}).Where("user_id = ?", "U1").Count(&history)
	if history != 1 {
		t.Fatalf("expected 1 history row, got %d", history)
	}
}

func TestHandleAnswerDeletesSessionEvenWhenUpdateFails(t *testing.T) {
	setupDB(t)
	seedTeam(t, "T1", "U1", 4)
	engine := newTestEngine(t, &fakeChat{failUpdate: true})
	ctx := context.Background()

	if err := engine.SendQuiz(ctx, "U1", "T1"); err != nil {
		t.Fatalf("SendQuiz: %v", err)
	}
	session, _ := repository.GetQuizSession(ctx, "U1")

	err := engine.HandleAnswer(ctx, Answer{
		UserID:     "U1",
		SelectedID: session.CorrectUserID,
		ChannelID:  "DU1",
		MessageTS:  "1700000000.000100",
	})
	if err == nil {
		t.Fatal("expected an update failure")
	}
	if got := sessionCount(t, "U1"); got != 0 {
		t.Fatalf("update failure left %d session(s) alive", got)
	}
}

func TestHandleAnswerExpiredSession(t *testing.T) {
	setupDB(t)
	seedTeam(t, "T1", "U1", 4)
	engine := newTestEngine(t, &fakeChat{})

	err := engine.HandleAnswer(context.Background(), Answer{UserID: "U1", SelectedID: "whoever"})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// No scoring happened.
	score, _ := repository.GetScore(context.Background(), "U1")
	if score.TotalAttempts != 0 {
		t.Fatalf("expired answer must not score, got %+v", score)
	}
}

func TestResetSession(t *testing.T) {
	setupDB(t)
	seedTeam(t, "T1", "U1", 4)
	engine := newTestEngine(t, &fakeChat{})
	ctx := context.Background()

	if err := engine.SendQuiz(ctx, "U1", "T1"); err != nil {
		t.Fatalf("SendQuiz: %v", err)
	}

	removed, err := engine.ResetSession(ctx, "U1")
	if err != nil || removed != 1 {
		t.Fatalf("expected 1 removed row, got %d, %v", removed, err)
	}

	// Resetting an idle user is a no-op, not an error.
	removed, err = engine.ResetSession(ctx, "U1")
	if err != nil || removed != 0 {
		t.Fatalf("expected idempotent reset, got %d, %v", removed, err)
	}
}
