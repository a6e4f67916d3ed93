package calculator

import "time"

// PressRequest is the JSON body for POST /calculator/press. Button is a
// raw keypad token: digits 0-9, ".", "+", "-", "*", "/", "^", "x²",
// "sqrt", "sin", "cos", "tan", "ln", "log", "!", "=", "C".
type PressRequest struct {
	Button string `json:"button"`
}

// StateResponse describes the calculator after an event, and is also the
// response of GET /calculator/state. Error carries the user-facing message
// when the pressed button failed; the session stays usable either way.
type StateResponse struct {
	Display     string `json:"display"`
	Preview     string `json:"preview,omitempty"`
	FinalAnswer bool   `json:"final_answer"`
	Error       string `json:"error,omitempty"`
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate, a
// one-shot computation outside any session state. B is required for binary
// operators and ignored for unary ones.
type EvaluateRequest struct {
	A  float64  `json:"a"`
	Op string   `json:"op"`
	B  *float64 `json:"b,omitempty"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Operation string   `json:"operation"`
	A         float64  `json:"a"`
	B         *float64 `json:"b,omitempty"`
	Result    float64  `json:"result"`
}

// HistoryEntry is one completed calculation as served by
// GET /calculator/history.
type HistoryEntry struct {
	Operand1   float64   `json:"operand1"`
	Operator   string    `json:"operator"`
	Operand2   float64   `json:"operand2"`
	Result     float64   `json:"result"`
	Timestamp  time.Time `json:"timestamp"`
	Expression string    `json:"expression"`
}

// HistoryResponse is the JSON response for GET /calculator/history,
// most recent first.
type HistoryResponse struct {
	Username string         `json:"username"`
	Records  []HistoryEntry `json:"records"`
}
