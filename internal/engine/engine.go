// Package engine evaluates single calculator operations. It is pure and
// stateless: every function maps operands to a result or an error, touches
// no shared state, and is safe to call concurrently.
package engine

import (
	"errors"
	"fmt"
	"math"
)

// Op identifies one operation from the closed calculator set.
type Op string

const (
	OpAdd       Op = "add"
	OpSubtract  Op = "subtract"
	OpMultiply  Op = "multiply"
	OpDivide    Op = "divide"
	OpPower     Op = "power"
	OpSqrt      Op = "sqrt"
	OpSin       Op = "sin"
	OpCos       Op = "cos"
	OpTan       Op = "tan"
	OpLn        Op = "ln"
	OpLog10     Op = "log10"
	OpFactorial Op = "factorial"
)

// Calculation failures. All are recoverable: callers reset to a safe state
// and surface the message to the user.
var (
	ErrDivisionByZero   = errors.New("division by zero is not allowed")
	ErrNegativeRadicand = errors.New("cannot calculate square root of negative number")
	ErrNonPositiveLog   = errors.New("cannot calculate log of non-positive number")
	ErrInvalidFactorial = errors.New("factorial only works with non-negative integers")
	ErrUnknownOperator  = errors.New("unknown operator")
)

// symbols maps each operation to the token shown in expressions and
// accepted from the presentation boundary.
var symbols = map[Op]string{
	OpAdd:       "+",
	OpSubtract:  "-",
	OpMultiply:  "*",
	OpDivide:    "/",
	OpPower:     "^",
	OpSqrt:      "sqrt",
	OpSin:       "sin",
	OpCos:       "cos",
	OpTan:       "tan",
	OpLn:        "ln",
	OpLog10:     "log",
	OpFactorial: "!",
}

// Symbol returns the display token for op ("+" for add, "!" for factorial).
// Unknown operations render as their raw value.
func (op Op) Symbol() string {
	if s, ok := symbols[op]; ok {
		return s
	}
	return string(op)
}

// Unary reports whether op takes a single operand.
func (op Op) Unary() bool {
	switch op {
	case OpSqrt, OpSin, OpCos, OpTan, OpLn, OpLog10, OpFactorial:
		return true
	}
	return false
}

// Binary reports whether op takes two operands.
func (op Op) Binary() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide, OpPower:
		return true
	}
	return false
}

// ParseOp resolves an external token (operation name or display symbol) to
// an Op. Tokens outside the closed set fail with ErrUnknownOperator; the
// fallback exists for the presentation boundary, where arbitrary strings
// can arrive.
func ParseOp(token string) (Op, error) {
	switch token {
	case "+", string(OpAdd):
		return OpAdd, nil
	case "-", string(OpSubtract):
		return OpSubtract, nil
	case "*", "×", string(OpMultiply):
		return OpMultiply, nil
	case "/", "÷", string(OpDivide):
		return OpDivide, nil
	case "^", string(OpPower):
		return OpPower, nil
	case "√", string(OpSqrt):
		return OpSqrt, nil
	case string(OpSin), string(OpCos), string(OpTan), string(OpLn):
		return Op(token), nil
	case "log", string(OpLog10):
		return OpLog10, nil
	case "!", string(OpFactorial):
		return OpFactorial, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperator, token)
}

// Calculate dispatches op over operands a and b. Unary operations consume
// only a; b is ignored. The dispatch is total over the closed set — any
// other value of op fails with ErrUnknownOperator.
//
// Power accepts any real exponent and may return a non-finite result
// (e.g. 0^-1); handling that is the caller's responsibility.
func Calculate(a float64, op Op, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSubtract:
		return a - b, nil
	case OpMultiply:
		return a * b, nil
	case OpDivide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	case OpPower:
		return math.Pow(a, b), nil
	case OpSqrt:
		if a < 0 {
			return 0, ErrNegativeRadicand
		}
		return math.Sqrt(a), nil
	case OpSin:
		return math.Sin(a), nil
	case OpCos:
		return math.Cos(a), nil
	case OpTan:
		return math.Tan(a), nil
	case OpLn:
		if a <= 0 {
			return 0, ErrNonPositiveLog
		}
		return math.Log(a), nil
	case OpLog10:
		if a <= 0 {
			return 0, ErrNonPositiveLog
		}
		return math.Log10(a), nil
	case OpFactorial:
		return factorial(a)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, string(op))
}

func factorial(a float64) (float64, error) {
	if a < 0 || a != math.Trunc(a) {
		return 0, ErrInvalidFactorial
	}
	result := 1.0
	for i := 2.0; i <= a; i++ {
		result *= i
	}
	return result, nil
}
