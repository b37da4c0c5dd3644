package scheduler

import (
	"errors"

	"github.com/ezrec/duet/translate"
)

var f = translate.From

var (
	// ErrStepLimit indicates a unit executed more instructions than permitted.
	ErrStepLimit = errors.New(f("step limit exceeded"))
)

// ErrRuntime indicates the unit and source location of a runtime error.
type ErrRuntime struct {
	Unit   int64
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("cpu%d line %d %v", err.Unit, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
