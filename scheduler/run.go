package scheduler

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/ezrec/duet/cpu"
)

// parse assembles program text from a reader.
func parse(input io.Reader) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{}
	prog, err = asm.Parse(input)
	if err != nil {
		err = errors.Wrap(err, f("parse"))
	}
	return
}

// RunSingle parses a program and runs it as a single process with
// recording rcv semantics.
func RunSingle(ctx context.Context, input io.Reader) (result Result, err error) {
	prog, err := parse(input)
	if err != nil {
		return
	}

	result, err = NewSolo(prog).Run(ctx)
	if err != nil {
		err = errors.Wrap(err, f("single"))
	}

	return
}

// RunDual parses a program and runs two instances of it as a duet,
// returning the number of values sent by the second instance.
func RunDual(ctx context.Context, input io.Reader) (sent int, err error) {
	prog, err := parse(input)
	if err != nil {
		return
	}

	sent, err = NewDuet(prog).Run(ctx)
	if err != nil {
		err = errors.Wrap(err, f("dual"))
	}

	return
}
