package quiz

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
)

// DefaultSampleSize is the number of questions drawn per attempt.
const DefaultSampleSize = 10

// State is the lifecycle stage of a session.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

// ResultRecorder persists the outcome of a completed session.
type ResultRecorder interface {
	SaveQuizResult(score, total int)
}

// Option configures a Session.
type Option func(*Session)

// WithSampleSize sets how many questions each attempt draws.
func WithSampleSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.sampleSize = n
		}
	}
}

// WithRand sets the random source used for drawing questions.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithRecorder sets where completed results are saved.
func WithRecorder(r ResultRecorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// Session is one quiz attempt. It is not safe for concurrent use.
type Session struct {
	pool       []Question
	sampleSize int
	rng        *rand.Rand
	recorder   ResultRecorder

	drawn    []Question
	current  int
	selected int // -1 when unset
	revealed bool
	results  []bool
	state    State
}

// NewSession draws a fresh attempt from pool. When the pool is smaller than
// the sample size every question is used.
func NewSession(pool []Question, opts ...Option) (*Session, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	s := &Session{
		pool:       slices.Clone(pool),
		sampleSize: DefaultSampleSize,
		selected:   -1,
		state:      StateNotStarted,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s.start()
	return s, nil
}

// start draws a new sample and resets all per-attempt state.
func (s *Session) start() {
	shuffled := slices.Clone(s.pool)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > s.sampleSize {
		shuffled = shuffled[:s.sampleSize]
	}

	s.drawn = shuffled
	s.current = 0
	s.selected = -1
	s.revealed = false
	s.results = make([]bool, 0, len(shuffled))
	s.state = StateInProgress
}

// Select chooses an option for the current question. The choice can be
// changed freely until the answer is revealed.
func (s *Session) Select(option int) error {
	if s.state != StateInProgress || s.revealed {
		return fmt.Errorf("select in state %s (revealed=%v): %w", s.state, s.revealed, ErrInvalidStateTransition)
	}
	q := s.drawn[s.current]
	if option < 0 || option >= len(q.Options) {
		return fmt.Errorf("option %d of %d: %w", option, len(q.Options), ErrInvalidInput)
	}
	s.selected = option
	return nil
}

// Reveal locks in the selected option and records whether it was correct.
func (s *Session) Reveal() (bool, error) {
	if s.state != StateInProgress || s.revealed || s.selected < 0 {
		return false, fmt.Errorf("reveal in state %s (revealed=%v, selected=%v): %w",
			s.state, s.revealed, s.selected >= 0, ErrInvalidStateTransition)
	}
	correct := s.selected == s.drawn[s.current].CorrectIndex
	s.results = append(s.results, correct)
	s.revealed = true
	return correct, nil
}

// Advance moves to the next question, or completes the session after the
// last one and saves the result.
func (s *Session) Advance() error {
	if s.state != StateInProgress || !s.revealed {
		return fmt.Errorf("advance in state %s (revealed=%v): %w", s.state, s.revealed, ErrInvalidStateTransition)
	}

	if s.current == len(s.drawn)-1 {
		s.state = StateComplete
		score, total := s.Score(), len(s.drawn)
		if s.recorder != nil {
			s.recorder.SaveQuizResult(score, total)
		}
		slog.Debug("quiz completed", "score", score, "total", total)
		return nil
	}

	s.current++
	s.selected = -1
	s.revealed = false
	return nil
}

// Retry starts a new, independently drawn attempt after completion.
func (s *Session) Retry() error {
	if s.state != StateComplete {
		return fmt.Errorf("retry in state %s: %w", s.state, ErrInvalidStateTransition)
	}
	s.start()
	return nil
}

// State returns the lifecycle stage.
func (s *Session) State() State { return s.state }

// CurrentIndex returns the position of the current question.
func (s *Session) CurrentIndex() int { return s.current }

// Current returns the question being answered. ok is false once complete.
func (s *Session) Current() (Question, bool) {
	if s.state != StateInProgress {
		return Question{}, false
	}
	return s.drawn[s.current], true
}

// Selected returns the chosen option for the current question, if any.
func (s *Session) Selected() (int, bool) {
	return s.selected, s.selected >= 0
}

// Revealed reports whether the current answer has been revealed.
func (s *Session) Revealed() bool { return s.revealed }

// Results returns one entry per revealed question, in order.
func (s *Session) Results() []bool { return slices.Clone(s.results) }

// Questions returns the questions drawn for this attempt.
func (s *Session) Questions() []Question { return slices.Clone(s.drawn) }

// Total returns the number of questions in this attempt.
func (s *Session) Total() int { return len(s.drawn) }

// Score returns the number of correct answers so far.
func (s *Session) Score() int {
	n := 0
	for _, ok := range s.results {
		if ok {
			n++
		}
	}
	return n
}

// Outcome returns the graded result once the session is complete.
func (s *Session) Outcome() (Outcome, bool) {
	if s.state != StateComplete {
		return Outcome{}, false
	}
	return Grade(s.Score(), len(s.drawn)), true
}
