// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package scheduler

import (
	"context"
	"log"

	"github.com/ezrec/duet/cpu"
)

// Solo runs a single program instance with recording rcv semantics.
type Solo struct {
	Verbose   bool         // If set, enables verbose logging.
	StepLimit int          // Maximum instructions to execute; 0 is unlimited.
	*cpu.Cpu               // Reference to the CPU simulation.
	Program   *cpu.Program // Reference to the running program.
}

// NewSolo creates a new single-process scheduler.
func NewSolo(prog *cpu.Program) (solo *Solo) {
	solo = &Solo{
		Cpu:     cpu.NewCpu(prog, cpu.RECEIVE_RECORD),
		Program: prog,
	}

	return
}

// Reset the CPU to the start of the program.
func (solo *Solo) Reset() {
	solo.Cpu.Program = solo.Program
	solo.Cpu.Verbose = solo.Verbose
	solo.Cpu.Reset()
}

// Tick performs a single step of the program.
func (solo *Solo) Tick() (done bool, err error) {
	solo.Cpu.Verbose = solo.Verbose

	if solo.StepLimit > 0 && solo.Cpu.Ticks >= solo.StepLimit {
		err = ErrStepLimit
		return
	}

	lineno := solo.Program.LineNo(solo.Cpu.Pc)

	outcome, err := solo.Cpu.Step()
	if err != nil {
		err = &ErrRuntime{Unit: solo.Cpu.Id, LineNo: lineno, Err: err}
		return
	}

	done = outcome == cpu.OUTCOME_HALTED

	return
}

// Result returns the outcome of the run so far.
func (solo *Solo) Result() (result Result) {
	value, ok := solo.Cpu.Recovered()
	switch {
	case ok:
		result = Result{Value: value, Reason: REASON_RECOVERED}
	case solo.Cpu.Triggered():
		result = Result{Reason: REASON_SILENT}
	}

	return
}

// Run ticks the program until it halts.
func (solo *Solo) Run(ctx context.Context) (result Result, err error) {
	for done := false; !done; {
		err = ctx.Err()
		if err != nil {
			return
		}

		done, err = solo.Tick()
		if err != nil {
			return
		}
	}

	result = solo.Result()

	if solo.Verbose {
		log.Printf("solo: %v after %d ticks", result.Reason, solo.Cpu.Ticks)
	}

	return
}
