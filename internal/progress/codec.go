package progress

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// Persisted key suffixes, appended to the store prefix.
const (
	keyRead       = "read"
	keyBookmarks  = "bookmarks"
	keyQuizResult = "quiz-result"
	keyChecklists = "checklists"
)

// dateLayout matches JavaScript's Date.prototype.toISOString.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	idListSchema = mustSchema(`{
		"type": "array",
		"items": {"type": "string"}
	}`)

	quizResultSchema = mustSchema(`{
		"type": "object",
		"required": ["score", "total", "date"],
		"properties": {
			"score": {"type": "integer", "minimum": 0},
			"total": {"type": "integer", "minimum": 0},
			"date":  {"type": "string"}
		}
	}`)

	checklistsSchema = mustSchema(`{
		"type": "object",
		"additionalProperties": {
			"type": "array",
			"items": {"type": "integer", "minimum": 0}
		}
	}`)
)

// QuizResult is the most recent completed quiz.
type QuizResult struct {
	Score int       `json:"score"`
	Total int       `json:"total"`
	Date  time.Time `json:"-"`
}

type quizResultWire struct {
	Score int    `json:"score"`
	Total int    `json:"total"`
	Date  string `json:"date"`
}

// MarshalJSON writes the date in the persisted ISO-8601 form.
func (r QuizResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(quizResultWire{
		Score: r.Score,
		Total: r.Total,
		Date:  r.Date.UTC().Format(dateLayout),
	})
}

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("progress: invalid schema: %v", err))
	}
	return schema
}

// valid reports whether raw is JSON matching schema. Any failure counts as invalid.
func valid(key, raw string, schema *gojsonschema.Schema) bool {
	res, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		slog.Warn("discarding unparseable progress value", "key", key, "error", err)
		return false
	}
	if !res.Valid() {
		slog.Warn("discarding malformed progress value", "key", key, "errors", len(res.Errors()))
		return false
	}
	return true
}

func decodeRead(key, raw string, ok bool) StringSet {
	if !ok || !valid(key, raw, idListSchema) {
		return StringSet{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return StringSet{}
	}
	return NewStringSet(ids...)
}

func encodeRead(s StringSet) string {
	data, _ := json.Marshal(s.Sorted())
	return string(data)
}

func decodeBookmarks(key, raw string, ok bool) *OrderedSet[string] {
	if !ok || !valid(key, raw, idListSchema) {
		return NewOrderedSet[string]()
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return NewOrderedSet[string]()
	}
	return NewOrderedSet(ids...)
}

func encodeBookmarks(s *OrderedSet[string]) string {
	data, _ := json.Marshal(s.Items())
	return string(data)
}

func decodeQuizResult(key, raw string, ok bool) *QuizResult {
	if !ok || !valid(key, raw, quizResultSchema) {
		return nil
	}
	var w quizResultWire
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil
	}
	date, err := time.Parse(time.RFC3339Nano, w.Date)
	if err != nil {
		slog.Warn("discarding quiz result with bad date", "key", key, "error", err)
		return nil
	}
	return &QuizResult{Score: w.Score, Total: w.Total, Date: date}
}

func encodeQuizResult(r QuizResult) string {
	data, _ := json.Marshal(r)
	return string(data)
}

func decodeChecklists(key, raw string, ok bool) map[string]*OrderedSet[int] {
	out := make(map[string]*OrderedSet[int])
	if !ok || !valid(key, raw, checklistsSchema) {
		return out
	}
	var m map[string][]int
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return out
	}
	for id, indices := range m {
		out[id] = NewOrderedSet(indices...)
	}
	return out
}

func encodeChecklists(m map[string]*OrderedSet[int]) string {
	wire := make(map[string][]int, len(m))
	for id, set := range m {
		wire[id] = set.Items()
	}
	data, _ := json.Marshal(wire)
	return string(data)
}
