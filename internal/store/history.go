package store

import (
	"fmt"
	"sync"
	"time"

	"calc-service/internal/keypad"
	"calc-service/internal/observability"

	"go.uber.org/zap"
)

// Record is one completed calculation as persisted and served back.
type Record struct {
	Operand1  float64   `json:"operand1"`
	Operator  string    `json:"operator"`
	Operand2  float64   `json:"operand2"`
	Result    float64   `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// Expression renders the record as a readable equation, e.g. "5 + 3 = 8".
func (r Record) Expression() string {
	return fmt.Sprintf("%s %s %s = %s",
		formatOperand(r.Operand1),
		r.Operator,
		formatOperand(r.Operand2),
		formatOperand(r.Result),
	)
}

func formatOperand(v float64) string {
	s, err := keypad.FormatResult(v)
	if err != nil {
		return fmt.Sprintf("%g", v)
	}
	return s
}

// HistoryStore is an append-only JSON-file store of calculation records
// keyed by username.
type HistoryStore struct {
	mu   sync.Mutex
	path string
}

// NewHistoryStore returns a store backed by the JSON file at path.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Append adds a completed calculation to username's history, stamped with
// the current time.
func (s *HistoryStore) Append(username string, rec keypad.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.load()
	history[username] = append(history[username], Record{
		Operand1:  rec.Operand1,
		Operator:  rec.Op.Symbol(),
		Operand2:  rec.Operand2,
		Result:    rec.Result,
		Timestamp: time.Now().UTC(),
	})
	return writeJSON(s.path, history)
}

// History returns username's records, most recent first. Unknown users get
// an empty slice.
func (s *HistoryStore) History(username string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.load()
	records := append([]Record(nil), history[username]...)

	// Appends are chronological; reversing yields most-recent-first even
	// when consecutive records share a timestamp.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records
}

func (s *HistoryStore) load() map[string][]Record {
	history := make(map[string][]Record)
	if err := readJSON(s.path, &history); err != nil {
		observability.Logger.Warn("could not load history, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return make(map[string][]Record)
	}
	return history
}
