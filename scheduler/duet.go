// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package scheduler

import (
	"context"
	"log"

	"github.com/ezrec/duet/channel"
	"github.com/ezrec/duet/cpu"
)

const (
	UNIT_COUNT  = 2   // Program instances in a duet.
	ID_REGISTER = "p" // Register seeded with the instance identifier.
)

// Duet runs two instances of a program in cooperative round-robin,
// connected by a pair of channels, until neither can make progress.
type Duet struct {
	Verbose   bool         // If set, enables verbose logging.
	StepLimit int          // Maximum instructions per unit; 0 is unlimited.
	Program   *cpu.Program // Reference to the running program.

	Units  [UNIT_COUNT]*cpu.Cpu      // Units A and B.
	Links  [UNIT_COUNT]*channel.Fifo // Links[n] carries values sent by Units[n].
	Sweeps int                       // Completed round-robin sweeps.
}

// NewDuet creates a new dual-process scheduler.
//
// Unit A sends on Links[0] and receives from Links[1]; unit B is the mirror.
func NewDuet(prog *cpu.Program) (duet *Duet) {
	duet = &Duet{
		Program: prog,
	}

	for n := range UNIT_COUNT {
		duet.Links[n] = &channel.Fifo{}
		unit := cpu.NewCpu(prog, cpu.RECEIVE_BLOCK)
		unit.Id = int64(n)
		duet.Units[n] = unit
	}

	for n, unit := range duet.Units {
		unit.Outbound = duet.Links[n]
		unit.Inbound = duet.Links[UNIT_COUNT-1-n]
	}

	duet.Reset()

	return
}

// Reset both units to the start of the program, with empty channels.
func (duet *Duet) Reset() {
	for _, link := range duet.Links {
		link.Rewind()
	}

	for _, unit := range duet.Units {
		unit.Program = duet.Program
		unit.Verbose = duet.Verbose
		unit.Reset()
		unit.Register.Set(ID_REGISTER, unit.Id)
	}

	duet.Sweeps = 0
}

// Idle returns true if a unit cannot make progress on its own: it has
// halted, or it is waiting on an empty inbound channel.
func (duet *Duet) Idle(n int) bool {
	unit := duet.Units[n]

	switch unit.Status {
	case cpu.STATUS_HALTED:
		return true
	case cpu.STATUS_WAITING:
		return unit.Inbound.Len() == 0
	default:
		return false
	}
}

// Quiescent returns true if no unit can make further progress.
func (duet *Duet) Quiescent() bool {
	for n := range duet.Units {
		if !duet.Idle(n) {
			return false
		}
	}

	return true
}

// Deadlocked returns true if every unit is waiting on an empty channel.
func (duet *Duet) Deadlocked() bool {
	for n, unit := range duet.Units {
		if unit.Status != cpu.STATUS_WAITING || !duet.Idle(n) {
			return false
		}
	}

	return true
}

// Sent returns the number of values sent by unit B.
func (duet *Duet) Sent() int {
	return duet.Units[1].Sent
}

// Tick performs one sweep: a single step of each unit, in fixed order.
// The termination check runs only after the whole sweep, so that a unit
// unblocked during the sweep is not mistaken for a stalled one.
func (duet *Duet) Tick() (done bool, err error) {
	for _, unit := range duet.Units {
		unit.Verbose = duet.Verbose

		if duet.StepLimit > 0 && unit.Ticks >= duet.StepLimit {
			err = ErrStepLimit
			return
		}

		lineno := duet.Program.LineNo(unit.Pc)

		_, err = unit.Step()
		if err != nil {
			err = &ErrRuntime{Unit: unit.Id, LineNo: lineno, Err: err}
			return
		}
	}

	duet.Sweeps++

	done = duet.Quiescent()
	if done && duet.Verbose {
		log.Printf("duet: quiescent after %d sweeps (a %v, b %v)",
			duet.Sweeps, duet.Units[0].Status, duet.Units[1].Status)
	}

	return
}

// Run sweeps until both units are quiescent, and returns the number of
// values sent by unit B.
func (duet *Duet) Run(ctx context.Context) (sent int, err error) {
	for done := false; !done; {
		err = ctx.Err()
		if err != nil {
			return
		}

		done, err = duet.Tick()
		if err != nil {
			return
		}
	}

	sent = duet.Sent()

	return
}
