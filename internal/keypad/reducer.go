// Package keypad interprets calculator button events. The whole package is
// a pure reducer: Reduce maps a state and one event to the next state plus
// an optional side effect (a record to persist or an error message to
// show). Callers own the state; nothing here is shared or mutated in place.
package keypad

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"calc-service/internal/engine"
)

// ErrInvalidNumber is reported when the display cannot be parsed as a
// number at the moment an operator, equals, or unary event needs one, or
// when a computation produces a non-finite value.
var ErrInvalidNumber = errors.New("invalid input, please enter a valid number")

// Pending is a stored first operand and operator awaiting a second operand.
type Pending struct {
	Operand float64
	Op      engine.Op
}

// State is the complete per-session calculator state.
//
// Display always holds a parseable numeric literal with at most one decimal
// point. NewNumber controls whether the next digit starts a fresh entry.
// FinalAnswer marks the display as the result of a completed equals, for
// presentation emphasis only.
type State struct {
	Display     string
	Pending     *Pending
	NewNumber   bool
	FinalAnswer bool
}

// Initial returns the Idle state: display "0", nothing pending.
func Initial() State {
	return State{Display: "0", NewNumber: true}
}

// Record is a completed binary calculation, emitted exactly once per
// successful equals resolution.
type Record struct {
	Operand1 float64
	Op       engine.Op
	Operand2 float64
	Result   float64
}

// Effect is the side effect of one reduction. At most one field is set:
// Record when an equals resolution completed, Error when the event failed
// and a message should be shown to the user. The zero Effect means neither.
type Effect struct {
	Record *Record
	Error  string
}

// Event is one calculator button press.
type Event interface {
	isEvent()
}

// Digit is a press of one of the buttons 0-9.
type Digit struct {
	D rune
}

// Decimal is a press of the decimal point button.
type Decimal struct{}

// Operator is a press of a binary operator button. Preset, when non-nil,
// supplies a fixed second operand and bypasses the pending computation
// entirely (the square shortcut is power with preset 2).
type Operator struct {
	Op     engine.Op
	Preset *float64
}

// Unary is a press of a single-operand function button.
type Unary struct {
	Op engine.Op
}

// Equals resolves the pending computation, if any.
type Equals struct{}

// Clear resets to the Idle state unconditionally.
type Clear struct{}

func (Digit) isEvent()    {}
func (Decimal) isEvent()  {}
func (Operator) isEvent() {}
func (Unary) isEvent()    {}
func (Equals) isEvent()   {}
func (Clear) isEvent()    {}

// Reduce applies one event to the state. Every error is absorbed here:
// failed events reset the visible state to an Idle-like baseline and
// surface a message through the Effect, never past this boundary.
func Reduce(s State, ev Event) (State, Effect) {
	switch e := ev.(type) {
	case Digit:
		return reduceDigit(s, e.D), Effect{}
	case Decimal:
		return reduceDecimal(s), Effect{}
	case Operator:
		if e.Preset != nil {
			return reducePresetOperator(s, e.Op, *e.Preset)
		}
		return reduceOperator(s, e.Op)
	case Unary:
		return reduceUnary(s, e.Op)
	case Equals:
		return reduceEquals(s)
	case Clear:
		return Initial(), Effect{}
	}
	return s, Effect{}
}

func reduceDigit(s State, d rune) State {
	s.FinalAnswer = false
	switch {
	case s.NewNumber:
		s.Display = string(d)
		s.NewNumber = false
	case s.Display == "0":
		s.Display = string(d)
	default:
		s.Display += string(d)
	}
	return s
}

func reduceDecimal(s State) State {
	if strings.Contains(s.Display, ".") {
		return s
	}
	s.FinalAnswer = false
	if s.NewNumber {
		s.Display = "0."
		s.NewNumber = false
	} else {
		s.Display += "."
	}
	return s
}

func reduceOperator(s State, op engine.Op) (State, Effect) {
	value, err := strconv.ParseFloat(s.Display, 64)
	if err != nil {
		return failed(s, clearPending), Effect{Error: ErrInvalidNumber.Error()}
	}

	if s.Pending != nil {
		// Chained operator: resolve the pending computation first.
		result, err := engine.Calculate(s.Pending.Operand, s.Pending.Op, value)
		if err != nil {
			return failed(s, clearPending), Effect{Error: err.Error()}
		}
		display, err := FormatResult(result)
		if err != nil {
			return failed(s, clearPending), Effect{Error: err.Error()}
		}
		s.Display = display
		s.Pending = &Pending{Operand: result, Op: op}
	} else {
		s.Pending = &Pending{Operand: value, Op: op}
	}

	s.NewNumber = true
	return s, Effect{}
}

// reducePresetOperator applies op with a fixed second operand against the
// current display value. It never consults or mutates the pending
// computation.
func reducePresetOperator(s State, op engine.Op, preset float64) (State, Effect) {
	value, err := strconv.ParseFloat(s.Display, 64)
	if err != nil {
		return failed(s, keepPending), Effect{Error: ErrInvalidNumber.Error()}
	}

	result, err := engine.Calculate(value, op, preset)
	if err != nil {
		return failed(s, keepPending), Effect{Error: err.Error()}
	}
	display, err := FormatResult(result)
	if err != nil {
		return failed(s, keepPending), Effect{Error: err.Error()}
	}

	s.Display = display
	s.NewNumber = true
	return s, Effect{}
}

func reduceUnary(s State, op engine.Op) (State, Effect) {
	value, err := strconv.ParseFloat(s.Display, 64)
	if err != nil {
		return failed(s, keepPending), Effect{Error: ErrInvalidNumber.Error()}
	}

	result, err := engine.Calculate(value, op, 0)
	if err != nil {
		return failed(s, keepPending), Effect{Error: err.Error()}
	}
	display, err := FormatResult(result)
	if err != nil {
		return failed(s, keepPending), Effect{Error: err.Error()}
	}

	s.Display = display
	s.NewNumber = true
	return s, Effect{}
}

func reduceEquals(s State) (State, Effect) {
	if s.Pending == nil {
		return s, Effect{}
	}

	operand2, err := strconv.ParseFloat(s.Display, 64)
	if err != nil {
		return failed(s, clearPending), Effect{Error: ErrInvalidNumber.Error()}
	}

	pending := *s.Pending
	result, err := engine.Calculate(pending.Operand, pending.Op, operand2)
	if err != nil {
		return failed(s, clearPending), Effect{Error: err.Error()}
	}
	display, err := FormatResult(result)
	if err != nil {
		// Non-finite result: nothing is recorded.
		return failed(s, clearPending), Effect{Error: err.Error()}
	}

	s.Display = display
	s.Pending = nil
	s.NewNumber = true
	s.FinalAnswer = true

	return s, Effect{Record: &Record{
		Operand1: pending.Operand,
		Op:       pending.Op,
		Operand2: operand2,
		Result:   result,
	}}
}

const (
	clearPending = true
	keepPending  = false
)

// failed resets the visible state after any error: display back to "0",
// ready for a fresh number, emphasis cleared. Pending state is dropped
// only where the event consumed it.
func failed(s State, dropPending bool) State {
	s.Display = "0"
	s.NewNumber = true
	s.FinalAnswer = false
	if dropPending {
		s.Pending = nil
	}
	return s
}

// roundScale fixes the single rounding policy for every success path:
// 10 fractional digits.
const roundScale = 1e10

// FormatResult renders a computation result for the display. Integral
// values render without a decimal point; everything else rounds to 10
// fractional digits. Non-finite values are rejected, keeping the display
// invariant (always a parseable literal) intact.
func FormatResult(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", ErrInvalidNumber
	}
	if scaled := v * roundScale; !math.IsInf(scaled, 0) {
		v = math.Round(scaled) / roundScale
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64), nil
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

// Preview renders the in-progress expression for the presentation
// boundary: first operand and operator, the second operand while it is
// being typed, and a live answer when both operands are present and the
// computation succeeds. Empty when nothing is pending.
func Preview(s State) string {
	if s.Pending == nil {
		return ""
	}

	operand1, err := FormatResult(s.Pending.Operand)
	if err != nil {
		return ""
	}
	expr := fmt.Sprintf("%s %s", operand1, s.Pending.Op.Symbol())

	if s.NewNumber {
		return expr
	}
	expr += " " + s.Display

	operand2, err := strconv.ParseFloat(s.Display, 64)
	if err != nil {
		return expr
	}
	result, err := engine.Calculate(s.Pending.Operand, s.Pending.Op, operand2)
	if err != nil {
		return expr
	}
	answer, err := FormatResult(result)
	if err != nil {
		return expr
	}
	return expr + " = " + answer
}
