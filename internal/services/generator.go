package services

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/dewgenenny/facesinq/internal/images"
	"github.com/dewgenenny/facesinq/internal/models"
	"github.com/dewgenenny/facesinq/internal/repository"

	"go.uber.org/zap"
)

// optionCount is 1 correct answer + 3 distractors.
const optionCount = 4

// Generator builds quiz payloads from the workspace directory.
type Generator struct {
	log        *zap.Logger
	compositor *images.Compositor
}

func NewGenerator(log *zap.Logger, compositor *images.Compositor) *Generator {
	return &Generator{log: log, compositor: compositor}
}

// Generate picks a correct colleague and three distractors for the user,
// shuffles the presentation order, and composes the photo grid when the user
// plays on hard mode. Returns ErrInsufficientCandidates when the workspace is
// too small.
func (g *Generator) Generate(ctx context.Context, userID, teamID string) (*models.Quiz, error) {
	colleagues, err := repository.ColleaguesExcluding(ctx, userID, teamID)
	if err != nil {
		return nil, fmt.Errorf("could not load colleagues: %w", err)
	}
	if len(colleagues) < optionCount {
		return nil, ErrInsufficientCandidates
	}

	correct := colleagues[rand.Intn(len(colleagues))]

	// Shuffle the remainder and take the first three as distractors.
	distractorPool := make([]models.Colleague, 0, len(colleagues)-1)
	for _, colleague := range colleagues {
		if colleague.ID != correct.ID {
			distractorPool = append(distractorPool, colleague)
		}
	}
	rand.Shuffle(len(distractorPool), func(i, j int) {
		distractorPool[i], distractorPool[j] = distractorPool[j], distractorPool[i]
	})

	options := append([]models.Colleague{correct}, distractorPool[:optionCount-1]...)
	// Shuffle again so the correct answer's position carries no signal.
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	mode := models.DifficultyEasy
	if user, err := repository.GetUser(ctx, userID); err == nil && user != nil {
		mode = user.DifficultyOrDefault()
	}

	quiz := &models.Quiz{Correct: correct, Options: options, Mode: mode}

	if mode == models.DifficultyHard {
		// Grid numbering must follow the shuffled option order so the
		// on-screen photos line up with the numbered buttons.
		urls := make([]string, len(options))
		for i, option := range options {
			urls[i] = option.Image
		}
		grid, err := g.compositor.GridJPEG(ctx, urls)
		if err != nil {
			// The engine falls back to the easy layout when there is
			// no grid to show.
			g.log.Warn("Grid composition failed, quiz will degrade to easy layout",
				zap.String("user", userID), zap.Error(err))
		} else {
			quiz.GridImage = grid
		}
	}

	return quiz, nil
}
