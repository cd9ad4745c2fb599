package runner

import (
	"errors"

	"github.com/minivm/minivm/translate"
)

var f = translate.From

var (
	ErrDumpRange = errors.New(f("dump range out of bounds"))
)

// ErrRuntime decorates a fault with the assembly source line it arose from.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
