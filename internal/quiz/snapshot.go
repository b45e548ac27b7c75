package quiz

// QuestionView is a question as shown to the taker. The answer and
// explanation are only filled in after the answer is revealed.
type QuestionView struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correctIndex,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
}

// Snapshot is a serialisable view of a session.
type Snapshot struct {
	State        State         `json:"state"`
	CurrentIndex int           `json:"currentIndex"`
	Total        int           `json:"total"`
	Question     *QuestionView `json:"question,omitempty"`
	Selected     *int          `json:"selected,omitempty"`
	Revealed     bool          `json:"revealed"`
	Results      []bool        `json:"results"`
	Outcome      *Outcome      `json:"outcome,omitempty"`
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:        s.state,
		CurrentIndex: s.current,
		Total:        len(s.drawn),
		Revealed:     s.revealed,
		Results:      s.Results(),
	}

	if q, ok := s.Current(); ok {
		view := &QuestionView{ID: q.ID, Prompt: q.Prompt, Options: q.Options}
		if s.revealed {
			correct := q.CorrectIndex
			view.CorrectIndex = &correct
			view.Explanation = q.Explanation
		}
		snap.Question = view
	}
	if sel, ok := s.Selected(); ok && s.state == StateInProgress {
		snap.Selected = &sel
	}
	if out, ok := s.Outcome(); ok {
		snap.Outcome = &out
	}
	return snap
}
