package cpu

import (
	"errors"

	"github.com/ezrec/duet/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrChannelInvalid = errors.New(f("channel invalid"))
	ErrDivideByZero   = errors.New(f("modulo by zero"))

	// Assembler errors
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrOpcodeArgs      = errors.New(f("wrong argument count"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
)

// ErrOpcode identifies the instruction that failed at runtime.
type ErrOpcode struct {
	Pc          int64
	Instruction Instruction
}

func (eo ErrOpcode) Error() string {
	return f("pc %d: %v", eo.Pc, eo.Instruction.String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrSyntax locates a parse failure in the program text.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
