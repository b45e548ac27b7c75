package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/apprentice/internal/catalogue"
	"github.com/p-n-ai/apprentice/internal/quiz"
)

// File suffixes recognised by the loader.
const (
	suffixTemplates = ".templates.yaml"
	suffixSections  = ".sections.yaml"
	suffixQuiz      = ".quiz.yaml"
	suffixQuizSheet = ".quiz.xlsx"
)

// Loader loads and caches course content from the filesystem.
type Loader struct {
	rootDir   string
	templates []catalogue.CircuitTemplate
	pools     map[string]quiz.Pool
	sections  []Section
	mu        sync.RWMutex
}

// NewLoader creates a new content loader and loads all content.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir: rootDir,
		pools:   make(map[string]quiz.Pool),
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	slog.Info("content loaded",
		"templates", len(l.templates),
		"pools", len(l.pools),
		"sections", len(l.sections),
	)
	return l, nil
}

// Templates returns every circuit template in file order.
func (l *Loader) Templates() []catalogue.CircuitTemplate {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]catalogue.CircuitTemplate(nil), l.templates...)
}

// Pool returns a question pool by ID.
func (l *Loader) Pool(id string) (quiz.Pool, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.pools[id]
	return p, ok
}

// Pools returns all pools ordered by ID.
func (l *Loader) Pools() []quiz.Pool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	pools := make([]quiz.Pool, 0, len(l.pools))
	for _, p := range l.pools {
		pools = append(pools, p)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].ID < pools[j].ID })
	return pools
}

// Sections returns every section in file order.
func (l *Loader) Sections() []Section {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Section(nil), l.sections...)
}

// Section returns a section by ID.
func (l *Loader) Section(id string) (Section, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// TotalItems counts distinct trackable item ids across all sections.
func (l *Loader) TotalItems() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, s := range l.sections {
		for _, id := range s.Items {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

func (l *Loader) loadAll() error {
	if _, err := os.Stat(l.rootDir); err != nil {
		return err
	}

	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		switch {
		case strings.HasSuffix(path, suffixTemplates):
			return l.loadTemplates(path)
		case strings.HasSuffix(path, suffixSections):
			return l.loadSections(path)
		case strings.HasSuffix(path, suffixQuiz):
			return l.loadPool(path)
		case strings.HasSuffix(path, suffixQuizSheet):
			return l.loadPoolSheet(path)
		}
		return nil
	})
}

func (l *Loader) loadTemplates(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file templatesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		slog.Warn("skipping invalid templates YAML", "path", path, "error", err)
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range file.Templates {
		if t.ID == "" {
			continue
		}
		if _, ok := catalogue.ParseCategory(string(t.Category)); !ok {
			slog.Warn("skipping template with unknown category", "path", path, "id", t.ID, "category", t.Category)
			continue
		}
		l.templates = append(l.templates, t)
	}
	return nil
}

func (l *Loader) loadSections(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file sectionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		slog.Warn("skipping invalid sections YAML", "path", path, "error", err)
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range file.Sections {
		if s.ID != "" {
			l.sections = append(l.sections, s)
		}
	}
	return nil
}

func (l *Loader) loadPool(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var pool quiz.Pool
	if err := yaml.Unmarshal(data, &pool); err != nil {
		slog.Warn("skipping invalid quiz YAML", "path", path, "error", err)
		return nil
	}
	if pool.ID == "" {
		pool.ID = strings.TrimSuffix(filepath.Base(path), suffixQuiz)
	}

	l.addPool(path, pool)
	return nil
}

// addPool drops invalid or duplicate questions and merges pools that share an ID.
func (l *Loader) addPool(path string, pool quiz.Pool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.pools[pool.ID]
	if !ok {
		existing = quiz.Pool{ID: pool.ID, Title: pool.Title}
	}
	if existing.Title == "" {
		existing.Title = pool.Title
	}

	seen := make(map[string]bool, len(existing.Questions))
	for _, q := range existing.Questions {
		seen[q.ID] = true
	}
	for _, q := range pool.Questions {
		if err := q.Validate(); err != nil {
			slog.Warn("skipping invalid question", "path", path, "error", err)
			continue
		}
		if seen[q.ID] {
			slog.Warn("skipping duplicate question", "path", path, "id", q.ID)
			continue
		}
		seen[q.ID] = true
		existing.Questions = append(existing.Questions, q)
	}
	if len(existing.Questions) == 0 {
		slog.Warn("skipping quiz without valid questions", "path", path, "pool", pool.ID)
		return
	}
	l.pools[pool.ID] = existing
}
