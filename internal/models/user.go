package models

import "time"

// Difficulty modes for quizzes. Easy shows a photo and asks for the name;
// hard shows a name and asks for the photo from a numbered grid.
const (
	DifficultyEasy = "easy"
	DifficultyHard = "hard"
)

// User is a workspace member known to the bot. IDs are the chat platform's
// own user IDs, so the primary key is a string rather than an integer.
type User struct {
	ID            string `gorm:"primaryKey"`
	TeamID        string `gorm:"index"`
	Name          string
	Image         string
	OptedIn       bool
	Difficulty    string `gorm:"default:easy"`
	CurrentStreak int
	// LastAnsweredAt is nil until the user has answered at least once.
	LastAnsweredAt *time.Time
	// NextQuizAt is when the scheduler should send the next random quiz.
	NextQuizAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DifficultyOrDefault normalizes the stored difficulty.
func (u *User) DifficultyOrDefault() string {
	if u.Difficulty == DifficultyHard {
		return DifficultyHard
	}
	return DifficultyEasy
}
