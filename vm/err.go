package vm

import (
	"errors"

	"github.com/minivm/minivm/translate"
)

var f = translate.From

// Assembly errors. Reported before any execution, always with line context
// via ErrAssembly.
var (
	ErrUnknownInstruction = errors.New(f("unknown instruction"))
	ErrOperandMismatch    = errors.New(f("operand count or kind mismatch"))
	ErrDuplicateLabel     = errors.New(f("label duplicated"))
	ErrUndefinedLabel     = errors.New(f("label undefined"))
	ErrBadRegister        = errors.New(f("register out of range"))
	ErrBadNumber          = errors.New(f("not a number"))
	ErrBadOperand         = errors.New(f("malformed operand"))
	ErrBadLabel           = errors.New(f("malformed label"))
	ErrAddressRange       = errors.New(f("label past end of program"))
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))

	// Program deserialization errors.
	ErrBadBinary = errors.New(f("malformed program binary"))
)

// ErrAssembly wraps any assembly error with the offending source location.
type ErrAssembly struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrAssembly) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrAssembly) Unwrap() error {
	return err.Err
}

// ErrExpression indicates a $() constant expression that failed to evaluate.
type ErrExpression string

func (err ErrExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
