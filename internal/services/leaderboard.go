package services

import (
	"context"
	"time"

	"github.com/dewgenenny/facesinq/internal/config"
	"github.com/dewgenenny/facesinq/internal/repository"

	"go.uber.org/zap"
)

// Leaderboard ranks users all-time and over daily/weekly windows.
type Leaderboard struct {
	log *zap.Logger
	cfg config.LeaderboardConfig
}

func NewLeaderboard(log *zap.Logger, cfg config.LeaderboardConfig) *Leaderboard {
	return &Leaderboard{log: log, cfg: cfg}
}

// TopAllTime ranks the cumulative Score aggregates. Users below the
// configured minimum attempts are excluded so a single lucky guess cannot
// distort the board. The ranking policy (raw score vs. accuracy percentage)
// comes from config.
func (l *Leaderboard) TopAllTime(ctx context.Context, limit int) ([]repository.LeaderboardRow, error) {
	if limit <= 0 {
		limit = l.cfg.Limit
	}
	byPercentage := l.cfg.Ranking == "percentage"
	return repository.TopScores(ctx, limit, l.cfg.MinAttempts, byPercentage)
}

// TopSince ranks play inside a time window from the history ledger. No
// minimum-attempt floor: any participation in the window qualifies.
func (l *Leaderboard) TopSince(ctx context.Context, start time.Time, limit int) ([]repository.LeaderboardRow, error) {
	if limit <= 0 {
		limit = l.cfg.Limit
	}
	return repository.TopScoresSince(ctx, start, limit)
}

// TopDaily covers today, midnight UTC onward.
func (l *Leaderboard) TopDaily(ctx context.Context, limit int) ([]repository.LeaderboardRow, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return l.TopSince(ctx, start, limit)
}

// TopWeekly covers the trailing seven days.
func (l *Leaderboard) TopWeekly(ctx context.Context, limit int) ([]repository.LeaderboardRow, error) {
	return l.TopSince(ctx, time.Now().UTC().AddDate(0, 0, -7), limit)
}
