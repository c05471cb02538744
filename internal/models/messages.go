package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Messages holds the user-facing bot copy. A deployment can override any of
// it from a yaml file; anything left empty falls back to the defaults below.
type Messages struct {
	QuizPrompt     string   `yaml:"quiz_prompt"`
	HardQuizPrompt string   `yaml:"hard_quiz_prompt"`
	Praise         []string `yaml:"praise"`
	// Incorrect is a format string receiving the correct colleague's name.
	Incorrect       string `yaml:"incorrect"`
	AlreadyActive   string `yaml:"already_active"`
	SessionExpired  string `yaml:"session_expired"`
	NotEnoughPeople string `yaml:"not_enough_people"`
	NextQuizButton  string `yaml:"next_quiz_button"`
}

// DefaultMessages returns the built-in copy.
func DefaultMessages() *Messages {
	return &Messages{
		QuizPrompt:     "*Who's this colleague?*",
		HardQuizPrompt: "*Which photo is %s?*",
		Praise: []string{
			"🎉 Correct! You really know your colleagues!",
			"🎉 Nailed it!",
			"🎉 Correct! Nothing gets past you.",
		},
		Incorrect:       "❌ Nope! This is your amazing colleague called *%s*.",
		AlreadyActive:   "You already have an active quiz! Please answer it before requesting a new one.",
		SessionExpired:  "Sorry, your quiz session has expired.",
		NotEnoughPeople: "Not enough colleagues in your workspace for a quiz yet. Check back later!",
		NextQuizButton:  "Next Quiz ▶️",
	}
}

// LoadMessages reads bot copy from a yaml file, filling gaps with defaults.
// A missing file is not an error.
func LoadMessages(path string) (*Messages, error) {
	msgs := DefaultMessages()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return msgs, nil
		}
		return nil, fmt.Errorf("could not read messages file: %w", err)
	}

	var overrides Messages
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("could not parse messages file: %w", err)
	}

	if overrides.QuizPrompt != "" {
		msgs.QuizPrompt = overrides.QuizPrompt
	}
	if overrides.HardQuizPrompt != "" {
		msgs.HardQuizPrompt = overrides.HardQuizPrompt
	}
	if len(overrides.Praise) > 0 {
		msgs.Praise = overrides.Praise
	}
	if overrides.Incorrect != "" {
		msgs.Incorrect = overrides.Incorrect
	}
	if overrides.AlreadyActive != "" {
		msgs.AlreadyActive = overrides.AlreadyActive
	}
	if overrides.SessionExpired != "" {
		msgs.SessionExpired = overrides.SessionExpired
	}
	if overrides.NotEnoughPeople != "" {
		msgs.NotEnoughPeople = overrides.NotEnoughPeople
	}
	if overrides.NextQuizButton != "" {
		msgs.NextQuizButton = overrides.NextQuizButton
	}

	return msgs, nil
}
