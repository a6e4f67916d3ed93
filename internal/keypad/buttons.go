package keypad

import (
	"fmt"

	"calc-service/internal/engine"
)

// squareOperand is the preset second operand behind the x² shortcut,
// which is operationally "raise the display value to the power of 2".
var squareOperand = 2.0

// ParseButton maps a raw button token from the presentation boundary to an
// event. Digits 0-9, ".", "=", "C" (or "AC"), "x²", and every operator
// token engine.ParseOp accepts are recognized; anything else fails with
// engine.ErrUnknownOperator wrapped around the token.
func ParseButton(token string) (Event, error) {
	switch token {
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return Digit{D: rune(token[0])}, nil
	case ".":
		return Decimal{}, nil
	case "=":
		return Equals{}, nil
	case "C", "AC", "clear":
		return Clear{}, nil
	case "x²", "square":
		return Operator{Op: engine.OpPower, Preset: &squareOperand}, nil
	}

	op, err := engine.ParseOp(token)
	if err != nil {
		return nil, fmt.Errorf("button %q: %w", token, err)
	}
	if op.Unary() {
		return Unary{Op: op}, nil
	}
	return Operator{Op: op}, nil
}
