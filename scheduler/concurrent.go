// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package scheduler

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/duet/channel"
	"github.com/ezrec/duet/cpu"
)

// monitor tracks the idle state of every unit, and wakes waiting units
// when data arrives, when the run is cancelled, or when no unit can make
// progress.
type monitor struct {
	mu      sync.Mutex
	cond    *sync.Cond
	status  [UNIT_COUNT]cpu.Status
	inbound [UNIT_COUNT]*channel.Fifo
	stopped bool
	run     int // Bumped on every reset.
}

// quiescent must be called with mu held.
func (mon *monitor) quiescent() bool {
	for n, status := range mon.status {
		switch status {
		case cpu.STATUS_HALTED:
		case cpu.STATUS_WAITING:
			if mon.inbound[n].Len() != 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// await blocks unit n until its inbound channel has data. Returns false if
// the run is over instead.
func (mon *monitor) await(n int) (ok bool) {
	mon.mu.Lock()
	defer mon.mu.Unlock()

	for mon.inbound[n].Len() == 0 {
		if mon.stopped {
			return false
		}
		mon.status[n] = cpu.STATUS_WAITING
		if mon.quiescent() {
			mon.stopped = true
			mon.cond.Broadcast()
			return false
		}
		mon.cond.Wait()
	}

	mon.status[n] = cpu.STATUS_RUNNING
	return true
}

// halt marks unit n as permanently idle.
func (mon *monitor) halt(n int) {
	mon.mu.Lock()
	defer mon.mu.Unlock()

	mon.status[n] = cpu.STATUS_HALTED
	if mon.quiescent() {
		mon.stopped = true
	}
	mon.cond.Broadcast()
}

// stop wakes every waiting unit and ends the run.
func (mon *monitor) stop() {
	mon.mu.Lock()
	defer mon.mu.Unlock()

	mon.stopped = true
	mon.cond.Broadcast()
}

// cancel stops the run, unless the monitor has been reset since.
func (mon *monitor) cancel(run int) {
	mon.mu.Lock()
	defer mon.mu.Unlock()

	if mon.run != run {
		return
	}

	mon.stopped = true
	mon.cond.Broadcast()
}

// link is the monitored end of a channel shared between two goroutines.
type link struct {
	mon  *monitor
	fifo *channel.Fifo
}

var _ channel.Channel = (*link)(nil)

func (l *link) Rewind() {
	l.mon.mu.Lock()
	defer l.mon.mu.Unlock()

	l.fifo.Rewind()
}

func (l *link) Send(value int64) {
	l.mon.mu.Lock()
	defer l.mon.mu.Unlock()

	l.fifo.Send(value)
	l.mon.cond.Broadcast()
}

func (l *link) Receive() (value int64, ok bool) {
	l.mon.mu.Lock()
	defer l.mon.mu.Unlock()

	return l.fifo.Receive()
}

func (l *link) Len() int {
	l.mon.mu.Lock()
	defer l.mon.mu.Unlock()

	return l.fifo.Len()
}

// Concurrent runs the two units of a duet on their own goroutines. A unit
// blocked on rcv sleeps until its peer sends, and the run ends when the
// monitor finds that neither unit can make progress.
type Concurrent struct {
	Verbose   bool         // If set, enables verbose logging.
	StepLimit int          // Maximum instructions per unit; 0 is unlimited.
	Program   *cpu.Program // Reference to the running program.

	Units [UNIT_COUNT]*cpu.Cpu      // Units A and B.
	Links [UNIT_COUNT]*channel.Fifo // Links[n] carries values sent by Units[n].

	mon *monitor
}

// NewConcurrent creates a new goroutine-per-unit scheduler.
func NewConcurrent(prog *cpu.Program) (con *Concurrent) {
	con = &Concurrent{
		Program: prog,
		mon:     &monitor{},
	}
	con.mon.cond = sync.NewCond(&con.mon.mu)

	for n := range UNIT_COUNT {
		con.Links[n] = &channel.Fifo{}
		unit := cpu.NewCpu(prog, cpu.RECEIVE_BLOCK)
		unit.Id = int64(n)
		con.Units[n] = unit
	}

	for n, unit := range con.Units {
		peer := UNIT_COUNT - 1 - n
		unit.Outbound = &link{mon: con.mon, fifo: con.Links[n]}
		unit.Inbound = &link{mon: con.mon, fifo: con.Links[peer]}
		con.mon.inbound[n] = con.Links[peer]
	}

	con.Reset()

	return
}

// Reset both units to the start of the program, with empty channels.
func (con *Concurrent) Reset() {
	con.mon.mu.Lock()
	for n, link := range con.Links {
		link.Rewind()
		con.mon.status[n] = cpu.STATUS_RUNNING
	}
	con.mon.stopped = false
	con.mon.run++
	con.mon.mu.Unlock()

	for _, unit := range con.Units {
		unit.Program = con.Program
		unit.Verbose = con.Verbose
		unit.Reset()
		unit.Register.Set(ID_REGISTER, unit.Id)
	}
}

// Sent returns the number of values sent by unit B.
func (con *Concurrent) Sent() int {
	return con.Units[1].Sent
}

// Deadlocked returns true if the last run ended with every unit waiting.
func (con *Concurrent) Deadlocked() bool {
	con.mon.mu.Lock()
	defer con.mon.mu.Unlock()

	for _, status := range con.mon.status {
		if status != cpu.STATUS_WAITING {
			return false
		}
	}

	return con.mon.quiescent()
}

// runUnit steps unit n until it halts, or the run is stopped.
func (con *Concurrent) runUnit(ctx context.Context, n int) (err error) {
	unit := con.Units[n]
	unit.Verbose = con.Verbose

	defer func() {
		if err != nil {
			con.mon.stop()
		}
	}()

	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		if con.StepLimit > 0 && unit.Ticks >= con.StepLimit {
			err = ErrStepLimit
			return
		}

		lineno := con.Program.LineNo(unit.Pc)

		var outcome cpu.Outcome
		outcome, err = unit.Step()
		if err != nil {
			err = &ErrRuntime{Unit: unit.Id, LineNo: lineno, Err: err}
			return
		}

		switch outcome {
		case cpu.OUTCOME_HALTED:
			con.mon.halt(n)
			return
		case cpu.OUTCOME_BLOCKED:
			if !con.mon.await(n) {
				if con.Verbose {
					log.Printf("cpu%d: stopped waiting at %d", unit.Id, unit.Pc)
				}
				err = ctx.Err()
				return
			}
		}
	}
}

// Run starts both units, waits until neither can make progress, and
// returns the number of values sent by unit B.
func (con *Concurrent) Run(ctx context.Context) (sent int, err error) {
	group, gctx := errgroup.WithContext(ctx)

	con.mon.mu.Lock()
	run := con.mon.run
	con.mon.mu.Unlock()

	// Wait cancels gctx, so the callback may still fire after Run returns.
	release := context.AfterFunc(gctx, func() {
		con.mon.cancel(run)
	})
	defer release()

	for n := range UNIT_COUNT {
		group.Go(func() error {
			return con.runUnit(gctx, n)
		})
	}

	err = group.Wait()
	if err != nil {
		return
	}

	// The group context is cancelled on return from Wait.
	err = ctx.Err()
	if err != nil {
		return
	}

	sent = con.Sent()

	if con.Verbose {
		log.Printf("concurrent: done, deadlocked %v", con.Deadlocked())
	}

	return
}
