package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dewgenenny/facesinq/internal/chat"
	"github.com/dewgenenny/facesinq/internal/models"
	"github.com/dewgenenny/facesinq/internal/repository"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// Engine owns the per-user question lifecycle: Idle -> AwaitingAnswer ->
// Idle. At most one quiz session exists per user at any time; every exit path
// from an answered or failed quiz ends back in Idle.
type Engine struct {
	log       *zap.Logger
	chat      chat.Client
	generator *Generator
	pending   *PendingQuizzes
	scorer    *Scorer
	msgs      *models.Messages
}

func NewEngine(log *zap.Logger, chatClient chat.Client, generator *Generator, pending *PendingQuizzes, scorer *Scorer, msgs *models.Messages) *Engine {
	return &Engine{
		log:       log,
		chat:      chatClient,
		generator: generator,
		pending:   pending,
		scorer:    scorer,
		msgs:      msgs,
	}
}

// Answer is a decoded button click on a quiz message.
type Answer struct {
	UserID     string
	SelectedID string
	ChannelID  string
	MessageTS  string
	Blocks     []slack.Block
}

// SendQuiz delivers a new quiz to the user unless one is already outstanding.
// The pending cache is consulted first; a cache miss generates synchronously.
// If delivery fails after the session row was written, the row is rolled back
// so the user is never stuck awaiting a question they never saw.
func (e *Engine) SendQuiz(ctx context.Context, userID, teamID string) error {
	existing, err := repository.GetQuizSession(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not check active session: %w", err)
	}
	if existing != nil {
		e.log.Debug("User already has an active quiz", zap.String("user", userID))
		e.notify(ctx, userID, e.msgs.AlreadyActive)
		return ErrSessionAlreadyActive
	}

	quiz := e.pending.Take(userID)
	if quiz == nil {
		quiz, err = e.generator.Generate(ctx, userID, teamID)
		if err != nil {
			if errors.Is(err, ErrInsufficientCandidates) {
				e.notify(ctx, userID, e.msgs.NotEnoughPeople)
			}
			return err
		}
	}

	if err := repository.ReplaceQuizSession(ctx, userID, quiz.Correct.ID); err != nil {
		return fmt.Errorf("could not persist quiz session: %w", err)
	}

	if err := e.sendQuestion(ctx, userID, quiz); err != nil {
		// Roll the session back; a failed send must not leave the user
		// stuck in AwaitingAnswer.
		if _, delErr := repository.DeleteQuizSession(ctx, userID); delErr != nil {
			e.log.Error("Failed to roll back session after send failure",
				zap.String("user", userID), zap.Error(delErr))
		}
		return fmt.Errorf("quiz delivery failed: %w", err)
	}

	// Refill the cache off the request path so the next quiz is instant.
	e.pending.Prepare(userID, teamID)
	return nil
}

// HandleAnswer scores a button click against the active session, rewrites the
// question message with the result, and deletes the session. The session is
// deleted on every path once it has been found, including scoring and chat
// failures, so the user can always request a fresh quiz.
func (e *Engine) HandleAnswer(ctx context.Context, answer Answer) error {
	session, err := repository.GetQuizSession(ctx, answer.UserID)
	if err != nil {
		return fmt.Errorf("could not load quiz session: %w", err)
	}
	if session == nil {
		e.notify(ctx, answer.UserID, e.msgs.SessionExpired)
		return ErrSessionExpired
	}

	defer func() {
		if _, err := repository.DeleteQuizSession(ctx, answer.UserID); err != nil {
			e.log.Error("Failed to delete answered quiz session",
				zap.String("user", answer.UserID), zap.Error(err))
		}
	}()

	isCorrect := answer.SelectedID == session.CorrectUserID
	result, err := e.scorer.Score(ctx, answer.UserID, isCorrect, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("could not record score: %w", err)
	}

	feedback := e.feedback(ctx, session.CorrectUserID, result)
	blocks := chat.RevealAnswer(answer.Blocks, session.CorrectUserID, answer.SelectedID,
		feedback, e.msgs.NextQuizButton)

	if err := e.chat.UpdateMessage(ctx, answer.ChannelID, answer.MessageTS, feedback, blocks); err != nil {
		e.log.Warn("Failed to update quiz message with result",
			zap.String("user", answer.UserID), zap.Error(err))
		return fmt.Errorf("result delivery failed: %w", err)
	}
	return nil
}

// ResetSession force-deletes any active session for the user, returning how
// many rows were removed. Idempotent on an idle user. Any pending quiz is
// discarded too so a stale difficulty mode doesn't linger.
func (e *Engine) ResetSession(ctx context.Context, userID string) (int64, error) {
	e.pending.Take(userID)
	return repository.DeleteQuizSession(ctx, userID)
}

func (e *Engine) sendQuestion(ctx context.Context, userID string, quiz *models.Quiz) error {
	channelID, err := e.chat.OpenDirectMessage(ctx, userID)
	if err != nil {
		return err
	}

	if quiz.Mode == models.DifficultyHard && len(quiz.GridImage) == 0 {
		// No grid to show; fall back to the easy layout rather than
		// sending numbered buttons with nothing to number.
		quiz.Mode = models.DifficultyEasy
	}

	if quiz.Mode == models.DifficultyHard {
		title := fmt.Sprintf(e.msgs.HardQuizPrompt, quiz.Correct.Name)
		if err := e.chat.UploadImage(ctx, channelID, quiz.GridImage, title); err != nil {
			return err
		}
	}

	_, err = e.chat.PostMessage(ctx, channelID, "Time for a quiz!", chat.QuestionBlocks(e.msgs, quiz))
	return err
}

func (e *Engine) feedback(ctx context.Context, correctUserID string, result *ScoreResult) string {
	if result.Correct {
		praise := e.msgs.Praise[rand.Intn(len(e.msgs.Praise))]
		return fmt.Sprintf("%s  +%d points · 🔥 %d", praise, result.Points, result.Streak)
	}
	correctName := repository.GetUserName(ctx, correctUserID)
	return fmt.Sprintf(e.msgs.Incorrect, correctName)
}

// notify sends a plain DM, logging rather than propagating failures; these
// are courtesy messages, not state transitions.
func (e *Engine) notify(ctx context.Context, userID, text string) {
	channelID, err := e.chat.OpenDirectMessage(ctx, userID)
	if err != nil {
		e.log.Warn("Could not open DM for notification", zap.String("user", userID), zap.Error(err))
		return
	}
	if _, err := e.chat.PostMessage(ctx, channelID, text, nil); err != nil {
		e.log.Warn("Could not send notification", zap.String("user", userID), zap.Error(err))
	}
}
