// Package quiz runs multiple-choice quiz sessions drawn from a question pool.
package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for arguments outside the current question's range.
	ErrInvalidInput = errors.New("quiz: invalid input")
	// ErrInvalidStateTransition is returned when an operation is not allowed in the current state.
	ErrInvalidStateTransition = errors.New("quiz: invalid state transition")
	// ErrEmptyPool is returned when a session is requested from a pool with no questions.
	ErrEmptyPool = errors.New("quiz: question pool is empty")
)

// Question is a single multiple-choice question.
type Question struct {
	ID           string   `yaml:"id" json:"id"`
	Prompt       string   `yaml:"prompt" json:"prompt"`
	Options      []string `yaml:"options" json:"options"`
	CorrectIndex int      `yaml:"correct_index" json:"correctIndex"`
	Explanation  string   `yaml:"explanation" json:"explanation,omitempty"`
}

// Validate checks that the question is answerable.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question id is required")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question %s: need at least 2 options, got %d", q.ID, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("question %s: correct index %d out of range", q.ID, q.CorrectIndex)
	}
	return nil
}

// Pool is a named set of questions a session draws from.
type Pool struct {
	ID        string     `yaml:"id" json:"id"`
	Title     string     `yaml:"title" json:"title"`
	Questions []Question `yaml:"questions" json:"questions"`
}

// Validate checks every question and that question ids are unique.
func (p Pool) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("pool id is required")
	}
	seen := make(map[string]bool, len(p.Questions))
	for _, q := range p.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("pool %s: %w", p.ID, err)
		}
		if seen[q.ID] {
			return fmt.Errorf("pool %s: duplicate question id %s", p.ID, q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}
