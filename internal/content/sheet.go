package content

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/apprentice/internal/quiz"
)

// Spreadsheet layout: one question per row after a header row.
// A: id, B: prompt, C-F: options (blank cells ignored), G: correct letter, H: explanation.
const (
	colID          = 0
	colPrompt      = 1
	colFirstOption = 2
	maxOptions     = 4
	colCorrect     = colFirstOption + maxOptions
	colExplanation = colCorrect + 1
)

// loadPoolSheet imports a pool from the first sheet of an xlsx workbook.
// The pool ID is the file name; the title is the sheet name.
func (l *Loader) loadPoolSheet(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		slog.Warn("skipping unreadable quiz workbook", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		slog.Warn("skipping quiz workbook", "path", path, "error", err)
		return nil
	}

	pool := quiz.Pool{
		ID:    strings.TrimSuffix(filepath.Base(path), suffixQuizSheet),
		Title: sheets[0],
	}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		q, err := parseQuestionRow(row)
		if err != nil {
			slog.Warn("skipping quiz row", "path", path, "row", i+1, "error", err)
			continue
		}
		pool.Questions = append(pool.Questions, q)
	}

	l.addPool(path, pool)
	return nil
}

func parseQuestionRow(row []string) (quiz.Question, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	q := quiz.Question{
		ID:          cell(colID),
		Prompt:      cell(colPrompt),
		Explanation: cell(colExplanation),
	}
	if q.ID == "" {
		return quiz.Question{}, fmt.Errorf("missing id")
	}

	// Letters refer to the option columns, so blank options shift nothing.
	letterIndex := make(map[string]int, maxOptions)
	for i := range maxOptions {
		opt := cell(colFirstOption + i)
		if opt == "" {
			continue
		}
		letterIndex[string(rune('A'+i))] = len(q.Options)
		q.Options = append(q.Options, opt)
	}

	idx, ok := letterIndex[strings.ToUpper(cell(colCorrect))]
	if !ok {
		return quiz.Question{}, fmt.Errorf("question %s: correct answer %q does not name an option", q.ID, cell(colCorrect))
	}
	q.CorrectIndex = idx

	if err := q.Validate(); err != nil {
		return quiz.Question{}, err
	}
	return q, nil
}
