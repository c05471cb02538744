package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dewgenenny/facesinq/internal/models"

	"go.uber.org/zap"
)

// prepareTimeout bounds a background generation (photo fetches included).
const prepareTimeout = 30 * time.Second

// PendingQuizzes holds at most one precomputed quiz per user so the next
// question can be served without waiting on photo fetches and grid
// composition. Entries live in process memory only; losing one just means a
// synchronous generation later.
type PendingQuizzes struct {
	log       *zap.Logger
	generator *Generator

	mu      sync.Mutex
	entries map[string]*models.Quiz
}

func NewPendingQuizzes(log *zap.Logger, generator *Generator) *PendingQuizzes {
	return &PendingQuizzes{
		log:       log,
		generator: generator,
		entries:   make(map[string]*models.Quiz),
	}
}

// Take removes and returns the user's pending quiz, or nil when none is
// stored.
func (p *PendingQuizzes) Take(userID string) *models.Quiz {
	p.mu.Lock()
	defer p.mu.Unlock()
	quiz := p.entries[userID]
	delete(p.entries, userID)
	return quiz
}

// Put stores a pending quiz for the user, replacing any previous one.
func (p *PendingQuizzes) Put(userID string, quiz *models.Quiz) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[userID] = quiz
}

// Prepare generates the user's next quiz off the request path and stores it.
// Fire-and-forget: failures are logged and discarded, a too-small workspace
// is silently skipped.
func (p *PendingQuizzes) Prepare(userID, teamID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), prepareTimeout)
		defer cancel()

		quiz, err := p.generator.Generate(ctx, userID, teamID)
		if err != nil {
			if !errors.Is(err, ErrInsufficientCandidates) {
				p.log.Warn("Background quiz preparation failed",
					zap.String("user", userID), zap.Error(err))
			}
			return
		}
		p.Put(userID, quiz)
	}()
}
