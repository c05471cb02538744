package services

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/dewgenenny/facesinq/internal/config"
	"github.com/dewgenenny/facesinq/internal/models"
	"github.com/dewgenenny/facesinq/internal/repository"

	"go.uber.org/zap"
)

// Scheduler sends random quizzes to opted-in users whose next-quiz time has
// elapsed.
type Scheduler struct {
	log       *zap.Logger
	engine    *Engine
	frequency time.Duration
	jitter    time.Duration
}

func NewScheduler(log *zap.Logger, engine *Engine, cfg config.QuizConfig) *Scheduler {
	return &Scheduler{
		log:       log,
		engine:    engine,
		frequency: cfg.Frequency,
		jitter:    cfg.Jitter,
	}
}

// Start runs the scheduler in a goroutine.
func (s *Scheduler) Start() {
	s.log.Info("Starting quiz scheduler...")
	go func() {
		// Ticker will fire on every minute.
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			<-ticker.C
			s.runQuizCheck()
		}
	}()
}

func (s *Scheduler) runQuizCheck() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.log.Debug("Running scheduled quiz check", zap.Time("utc_time", now))

	users, err := repository.UsersDueForQuiz(ctx, now)
	if err != nil {
		s.log.Error("Failed to get users due for a quiz", zap.Error(err))
		return
	}

	for _, user := range users {
		// Reschedule before sending so a persistent send failure cannot
		// spam the same user on every tick.
		next := now.Add(s.nextInterval())
		if err := repository.SetNextQuizAt(ctx, user.ID, next); err != nil {
			s.log.Error("Failed to reschedule quiz", zap.String("user", user.ID), zap.Error(err))
			continue
		}

		go s.sendQuiz(user)
	}
}

func (s *Scheduler) nextInterval() time.Duration {
	interval := s.frequency
	if s.jitter > 0 {
		interval += time.Duration(rand.Int63n(int64(s.jitter)))
	}
	return interval
}

func (s *Scheduler) sendQuiz(user models.User) {
	err := s.engine.SendQuiz(context.Background(), user.ID, user.TeamID)
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionAlreadyActive), errors.Is(err, ErrInsufficientCandidates):
		s.log.Debug("Scheduled quiz skipped", zap.String("user", user.ID), zap.Error(err))
	default:
		s.log.Error("Scheduled quiz failed", zap.String("user", user.ID), zap.Error(err))
	}
}
