// Package bot routes decoded inbound events (slash commands, button clicks,
// scheduler ticks arrive elsewhere) into the quiz engine and repositories.
// Transport, signature verification and OAuth live outside this module and
// deliver already-authenticated events here.
package bot

import (
	"context"
	"fmt"

	"github.com/dewgenenny/facesinq/internal/chat"
	"github.com/dewgenenny/facesinq/internal/repository"
	"github.com/dewgenenny/facesinq/internal/services"

	"go.uber.org/zap"
)

// Inbound events. Each maps to one interaction the surrounding glue decodes.
type (
	// SendQuizRequested comes from `/facesinq quiz`, the next-quiz button,
	// or the App Home start button.
	SendQuizRequested struct {
		UserID string
		TeamID string
	}

	// AnswerSubmitted is a click on one of the answer buttons.
	AnswerSubmitted services.Answer

	// AdminResetRequested force-clears a stuck session.
	AdminResetRequested struct {
		TargetUserID string
	}

	// OptInRequested toggles participation in scheduled quizzes.
	OptInRequested struct {
		UserID string
		OptIn  bool
	}

	// DifficultyChangeRequested switches between easy and hard mode.
	DifficultyChangeRequested struct {
		UserID     string
		Difficulty string
	}

	// LeaderboardRequested posts the ranking to the user. Window is
	// "all", "daily" or "weekly".
	LeaderboardRequested struct {
		UserID string
		Window string
	}

	// ScoreRequested asks for the user's own score.
	ScoreRequested struct {
		UserID string
	}

	// StatsRequested asks how many users are opted in.
	StatsRequested struct{}
)

// Dispatcher fans events out to the engine and repositories.
type Dispatcher struct {
	log         *zap.Logger
	engine      *services.Engine
	leaderboard *services.Leaderboard
	chat        chat.Client
}

func NewDispatcher(log *zap.Logger, engine *services.Engine, leaderboard *services.Leaderboard, chatClient chat.Client) *Dispatcher {
	return &Dispatcher{
		log:         log,
		engine:      engine,
		leaderboard: leaderboard,
		chat:        chatClient,
	}
}

// Handle processes one event. The returned text, when non-empty, is the
// ephemeral reply for command-style events.
func (d *Dispatcher) Handle(ctx context.Context, event interface{}) (string, error) {
	switch ev := event.(type) {
	case SendQuizRequested:
		user, err := repository.GetUser(ctx, ev.UserID)
		if err != nil {
			return "", err
		}
		if user == nil || !user.OptedIn {
			return "You need to opt-in first using `/facesinq opt-in`.", nil
		}
		if err := d.engine.SendQuiz(ctx, ev.UserID, ev.TeamID); err != nil {
			return "", err
		}
		return "Quiz sent!", nil

	case AnswerSubmitted:
		return "", d.engine.HandleAnswer(ctx, services.Answer(ev))

	case AdminResetRequested:
		removed, err := d.engine.ResetSession(ctx, ev.TargetUserID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Cleared %d active session(s) for user %s.", removed, ev.TargetUserID), nil

	case OptInRequested:
		if err := repository.SetOptIn(ctx, ev.UserID, ev.OptIn); err != nil {
			return "", err
		}
		if ev.OptIn {
			return "You have opted in to FaceSinq quizzes!", nil
		}
		return "You have opted out of FaceSinq quizzes.", nil

	case DifficultyChangeRequested:
		if err := repository.SetDifficulty(ctx, ev.UserID, ev.Difficulty); err != nil {
			return "", err
		}
		return fmt.Sprintf("Difficulty set to %s.", ev.Difficulty), nil

	case LeaderboardRequested:
		return "", d.sendLeaderboard(ctx, ev)

	case ScoreRequested:
		score, err := repository.GetScore(ctx, ev.UserID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Your current score is %d.", score.Score), nil

	case StatsRequested:
		count, err := repository.OptedInCount(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("There are %d users opted in to FaceSinq quizzes.", count), nil

	default:
		return "", fmt.Errorf("unknown event type %T", event)
	}
}

func (d *Dispatcher) sendLeaderboard(ctx context.Context, ev LeaderboardRequested) error {
	var (
		rows  []repository.LeaderboardRow
		title string
		err   error
	)
	switch ev.Window {
	case "daily":
		title = "🏆 Today's Leaderboard"
		rows, err = d.leaderboard.TopDaily(ctx, 0)
	case "weekly":
		title = "🏆 Weekly Leaderboard"
		rows, err = d.leaderboard.TopWeekly(ctx, 0)
	default:
		title = "🏆 Leaderboard"
		rows, err = d.leaderboard.TopAllTime(ctx, 0)
	}
	if err != nil {
		return err
	}

	channelID, err := d.chat.OpenDirectMessage(ctx, ev.UserID)
	if err != nil {
		return err
	}
	_, err = d.chat.PostMessage(ctx, channelID, title, chat.LeaderboardBlocks(title, rows))
	if err != nil {
		d.log.Warn("Failed to post leaderboard",
			zap.String("user", ev.UserID), zap.Error(err))
	}
	return err
}
