package quiz

import (
	"encoding/json"
	"fmt"
)

const DefaultTimeLimitMs = 20000

type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	TimeLimitMs int      `json:"timeLimit"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

type Quiz struct {
	ID        int
	Title     string
	Questions []Question
}

// Record is one row from the quiz store, as returned by a Source.
type Record struct {
	ID       int
	Title    string
	DataJSON string
}

// Source supplies quiz records for Catalog.Reload.
type Source interface {
	LoadAll() ([]Record, error)
}

type payload struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Parse decodes a store record into a Quiz. Question ids missing from the
// stored JSON are synthesized as q1, q2, ... by position.
func Parse(rec Record) (*Quiz, error) {
	var p payload
	if err := json.Unmarshal([]byte(rec.DataJSON), &p); err != nil {
		return nil, fmt.Errorf("quiz %d: decoding data_json: %w", rec.ID, err)
	}

	title := p.Title
	if title == "" {
		title = rec.Title
	}

	questions := make([]Question, len(p.Questions))
	for i, q := range p.Questions {
		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		if q.TimeLimitMs <= 0 {
			q.TimeLimitMs = DefaultTimeLimitMs
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("quiz %d question %s: no options", rec.ID, q.ID)
		}
		if q.Answer < 0 || q.Answer >= len(q.Options) {
			return nil, fmt.Errorf("quiz %d question %s: answer index %d out of range", rec.ID, q.ID, q.Answer)
		}
		questions[i] = q
	}

	return &Quiz{ID: rec.ID, Title: title, Questions: questions}, nil
}
