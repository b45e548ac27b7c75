// Package progress tracks what a learner has read, bookmarked, checked off
// and scored, persisted through a kv.Store under a fixed key prefix.
package progress

import (
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/p-n-ai/apprentice/internal/kv"
	"github.com/p-n-ai/apprentice/internal/quiz"
)

// DefaultPrefix namespaces every persisted key.
const DefaultPrefix = "workplace-culture-"

// SectionProgress counts read items within a section.
// Callers must not derive a ratio when Total is 0.
type SectionProgress struct {
	Read  int `json:"read"`
	Total int `json:"total"`
}

// OverallProgress counts read items across the catalogue.
type OverallProgress struct {
	Read       int `json:"read"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock sets the time source used to stamp quiz results and events.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEventLogger registers a logger notified of every effective change.
func WithEventLogger(l EventLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.loggers = append(s.loggers, l)
		}
	}
}

// Store is the learner's progress and preferences. All methods are safe for
// concurrent use; each mutation is a single read-modify-write on its key.
type Store struct {
	medium  kv.Store
	prefix  string
	now     func() time.Time
	loggers []EventLogger

	mu         sync.Mutex
	loaded     bool
	read       StringSet
	bookmarks  *OrderedSet[string]
	quizResult *QuizResult
	checklists map[string]*OrderedSet[int]
	seq        uint64

	// Changes whose write failed, replayed onto the stored value by the next
	// successful write of the same key.
	pendingRead       []func(StringSet) bool
	pendingBookmarks  []func(*OrderedSet[string]) bool
	pendingChecklists []func(map[string]*OrderedSet[int]) bool
}

// New creates a Store over medium. Persisted state is read on first use.
func New(medium kv.Store, opts ...Option) *Store {
	s := &Store{
		medium: medium,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prefix returns the key namespace.
func (s *Store) Prefix() string { return s.prefix }

// AddEventLogger registers l after construction.
func (s *Store) AddEventLogger(l EventLogger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggers = append(s.loggers, l)
}

// MarkRead records id as read. Marking an already-read id is a no-op.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	s.ensureLoaded()
	next, changed := mutate(s, keyRead, s.read, readCodec, &s.pendingRead, func(set StringSet) bool {
		return set.Add(id)
	})
	s.read = next
	var seq uint64
	if changed {
		seq = s.nextSeq()
	}
	s.mu.Unlock()

	if changed {
		s.emit(Event{Seq: seq, Kind: EventItemRead, ItemID: id})
	}
}

// IsRead reports whether id has been read.
func (s *Store) IsRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	return s.read.Contains(id)
}

// ReadIDs returns every read id in ascending order.
func (s *Store) ReadIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	return s.read.Sorted()
}

// ToggleBookmark removes id from the bookmarks if present, otherwise appends it.
// It reports whether id is bookmarked afterwards.
func (s *Store) ToggleBookmark(id string) bool {
	var present bool
	s.mu.Lock()
	s.ensureLoaded()
	s.bookmarks, _ = mutate(s, keyBookmarks, s.bookmarks, bookmarksCodec, &s.pendingBookmarks, func(set *OrderedSet[string]) bool {
		present = set.Toggle(id)
		return true
	})
	seq := s.nextSeq()
	s.mu.Unlock()

	kind := EventBookmarkRemoved
	if present {
		kind = EventBookmarkAdded
	}
	s.emit(Event{Seq: seq, Kind: kind, ItemID: id})
	return present
}

// IsBookmarked reports whether id is bookmarked.
func (s *Store) IsBookmarked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	return s.bookmarks.Contains(id)
}

// Bookmarks returns the bookmarked ids, oldest first.
func (s *Store) Bookmarks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	return s.bookmarks.Items()
}

// SectionProgress counts how many of ids have been read.
func (s *Store) SectionProgress(ids []string) SectionProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	read := 0
	for _, id := range ids {
		if s.read.Contains(id) {
			read++
		}
	}
	return SectionProgress{Read: read, Total: len(ids)}
}

// OverallProgress reports read items against total, the size of the catalogue.
// Percentage rounds half up and is 0 when total is not positive.
func (s *Store) OverallProgress(total int) OverallProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()

	read := len(s.read)
	return OverallProgress{Read: read, Total: total, Percentage: quiz.Percentage(read, total)}
}

// SaveQuizResult replaces the stored quiz result with score out of total.
// Negative values are rejected with a warning and nothing is saved.
func (s *Store) SaveQuizResult(score, total int) {
	if score < 0 || total < 0 {
		slog.Warn("rejecting quiz result with negative values", "score", score, "total", total)
		return
	}

	result := QuizResult{Score: score, Total: total, Date: s.now()}
	key := s.prefix + keyQuizResult

	s.mu.Lock()
	s.ensureLoaded()
	s.quizResult = &result
	if err := s.medium.Set(key, encodeQuizResult(result)); err != nil {
		slog.Warn("failed to persist quiz result", "key", key, "error", err)
	}
	seq := s.nextSeq()
	s.mu.Unlock()

	s.emit(Event{Seq: seq, Kind: EventQuizResultSaved, Data: map[string]any{"score": score, "total": total}})
}

// LastQuizResult returns the most recent quiz result, if any.
func (s *Store) LastQuizResult() (QuizResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	if s.quizResult == nil {
		return QuizResult{}, false
	}
	return *s.quizResult, true
}

// ToggleChecklistItem flips index within checklist id and reports whether it
// is checked afterwards.
func (s *Store) ToggleChecklistItem(id string, index int) (bool, error) {
	if index < 0 {
		return false, fmt.Errorf("checklist %s: negative index %d", id, index)
	}

	var checked bool
	s.mu.Lock()
	s.ensureLoaded()
	s.checklists, _ = mutate(s, keyChecklists, s.checklists, checklistsCodec, &s.pendingChecklists, func(m map[string]*OrderedSet[int]) bool {
		set, ok := m[id]
		if !ok {
			set = NewOrderedSet[int]()
			m[id] = set
		}
		checked = set.Toggle(index)
		return true
	})
	seq := s.nextSeq()
	s.mu.Unlock()

	kind := EventChecklistCleared
	if checked {
		kind = EventChecklistChecked
	}
	s.emit(Event{Seq: seq, Kind: kind, ItemID: id, Data: map[string]any{"index": index}})
	return checked, nil
}

// ChecklistItems returns the checked indices of checklist id in the order they were checked.
func (s *Store) ChecklistItems(id string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	if set, ok := s.checklists[id]; ok {
		return set.Items()
	}
	return []int{}
}

// IsChecklistItemChecked reports whether index is checked in checklist id.
func (s *Store) IsChecklistItemChecked(id string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	set, ok := s.checklists[id]
	return ok && set.Contains(index)
}

// ensureLoaded reads every key once. Missing, unreadable or malformed values
// become empty defaults. Callers hold s.mu.
func (s *Store) ensureLoaded() {
	if s.loaded {
		return
	}
	s.read = readCodec.decode(s.load(keyRead))
	s.bookmarks = bookmarksCodec.decode(s.load(keyBookmarks))
	s.quizResult = decodeQuizResult(s.load(keyQuizResult))
	s.checklists = checklistsCodec.decode(s.load(keyChecklists))
	s.loaded = true
}

func (s *Store) load(suffix string) (string, string, bool) {
	key := s.prefix + suffix
	raw, ok, err := s.medium.Get(key)
	if err != nil {
		slog.Warn("failed to read progress", "key", key, "error", err)
		return key, "", false
	}
	return key, raw, ok
}

// nextSeq numbers an event. Callers hold s.mu.
func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func (s *Store) emit(e Event) {
	e.Namespace = s.prefix
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	s.mu.Lock()
	loggers := append([]EventLogger(nil), s.loggers...)
	s.mu.Unlock()

	for _, l := range loggers {
		if err := l.LogEvent(e); err != nil {
			slog.Warn("progress event logger failed", "kind", e.Kind, "error", err)
		}
	}
}

// codec converts one piece of state to and from its persisted form.
type codec[T any] struct {
	decode func(key, raw string, ok bool) T
	encode func(T) string
	clone  func(T) T
}

var (
	readCodec = codec[StringSet]{
		decode: decodeRead,
		encode: encodeRead,
		clone:  StringSet.Clone,
	}
	bookmarksCodec = codec[*OrderedSet[string]]{
		decode: decodeBookmarks,
		encode: encodeBookmarks,
		clone:  (*OrderedSet[string]).Clone,
	}
	checklistsCodec = codec[map[string]*OrderedSet[int]]{
		decode: decodeChecklists,
		encode: encodeChecklists,
		clone:  cloneChecklists,
	}
)

func cloneChecklists(m map[string]*OrderedSet[int]) map[string]*OrderedSet[int] {
	out := maps.Clone(m)
	for id, set := range out {
		out[id] = set.Clone()
	}
	return out
}

// mutate applies change to the persisted value under the store prefix inside
// an atomic read-modify-write and returns the new state. Changes queued in
// pending by earlier failed writes are replayed onto the stored value first,
// so updates made by other writers in the meantime survive. If the medium
// fails, change is applied to local and queued, so the in-memory transition
// always completes.
// Callers hold s.mu.
func mutate[T any](s *Store, suffix string, local T, c codec[T], pending *[]func(T) bool, change func(T) bool) (T, bool) {
	key := s.prefix + suffix
	var next T
	var changed bool

	err := s.medium.Update(key, func(current string, ok bool) (string, bool, error) {
		base := c.decode(key, current, ok)
		for _, replay := range *pending {
			replay(base)
		}
		changed = change(base)
		next = base
		if !changed && len(*pending) == 0 {
			return "", false, nil
		}
		return c.encode(base), true, nil
	})
	if err != nil {
		slog.Warn("failed to persist progress", "key", key, "error", err, "pending", len(*pending)+1)
		next = c.clone(local)
		changed = change(next)
		if changed {
			*pending = append(*pending, change)
		}
		return next, changed
	}

	*pending = nil
	return next, changed
}
