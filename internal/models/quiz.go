package models

import "time"

// QuizSession is the single outstanding question for a user. The user ID is
// the primary key, which enforces the zero-or-one invariant at the schema
// level; writers must still replace rather than blindly insert.
type QuizSession struct {
	UserID        string `gorm:"primaryKey"`
	CorrectUserID string
	CreatedAt     time.Time
}

// Score is the durable per-user aggregate. Attempts only ever go up.
type Score struct {
	UserID          string `gorm:"primaryKey"`
	Score           int
	TotalAttempts   int
	CorrectAttempts int
	UpdatedAt       time.Time
}

// ScoreHistory is the append-only ledger of answered attempts, one row per
// answer. Time-windowed leaderboards aggregate over this table.
type ScoreHistory struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	Points    int
	IsCorrect bool
	CreatedAt time.Time
}

// TableName keeps the table singular to match the original schema.
func (ScoreHistory) TableName() string { return "score_history" }

// Colleague is a directory record used to build quiz options. It is a
// projection of User, never written back.
type Colleague struct {
	ID    string
	Name  string
	Image string
}
