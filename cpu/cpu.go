package cpu

import (
	"errors"
	"fmt"
	"log"

	"github.com/ezrec/duet/channel"
)

// Channel is a message channel interface.
type Channel channel.Channel

// Cpu is the simulation context for a single program instance.
type Cpu struct {
	Verbose bool  // Set to enable verbose logging.
	Id      int64 // Instance identifier, used for logging.

	Program *Program    // Shared, read-only program.
	Mode    ReceiveMode // Behaviour of the rcv instruction.

	Pc       int64     // Current program counter.
	Register Registers // Register file.
	Status   Status    // Execution status.

	Inbound  Channel // Source for blocking rcv.
	Outbound Channel // Destination for snd in blocking mode.

	Sent  int // Count of values sent.
	Ticks int // Count of instructions executed, including blocked retries.

	lastSent     int64
	hasSent      bool
	recovered    int64
	hasRecovered bool
	triggered    bool
}

// NewCpu creates a new CPU running a program in the given receive mode.
func NewCpu(prog *Program, mode ReceiveMode) (cpu *Cpu) {
	cpu = &Cpu{
		Program:  prog,
		Mode:     mode,
		Register: Registers{},
	}

	return
}

// Reset the CPU state.
// - Clears the registers and the program counter.
// - Zeros statistics counters.
// - Forgets the last sent and recovered values.
//
// Channels are left attached and are not rewound.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu%d: reset", cpu.Id)
	}

	if cpu.Register == nil {
		cpu.Register = Registers{}
	}
	cpu.Register.Reset()
	cpu.Pc = 0
	cpu.Status = STATUS_RUNNING
	cpu.Sent = 0
	cpu.Ticks = 0
	cpu.lastSent, cpu.hasSent = 0, false
	cpu.recovered, cpu.hasRecovered = 0, false
	cpu.triggered = false
}

// LastSent returns the most recently sent value, if any.
func (cpu *Cpu) LastSent() (value int64, ok bool) {
	return cpu.lastSent, cpu.hasSent
}

// Recovered returns the value captured by a recording rcv. ok is false if
// the rcv has not fired, or fired before anything was sent.
func (cpu *Cpu) Recovered() (value int64, ok bool) {
	return cpu.recovered, cpu.hasRecovered
}

// Triggered returns true if a recording rcv has halted the CPU, whether
// or not a value was sent before it.
func (cpu *Cpu) Triggered() bool {
	return cpu.triggered
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 6s: %d\n", "id", cpu.Id)
	text += fmt.Sprintf("% 6s: %d\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 6s: %v\n", "status", cpu.Status)
	text += fmt.Sprintf("% 6s: %d\n", "sent", cpu.Sent)
	if value, ok := cpu.LastSent(); ok {
		text += fmt.Sprintf("% 6s: %d\n", "last", value)
	} else {
		text += fmt.Sprintf("% 6s: -\n", "last")
	}
	text += fmt.Sprintf("% 6s: %v\n", "regs", cpu.Register)

	return
}

// Step executes a single instruction.
//
// A program counter outside the program halts the CPU; once halted, every
// further Step returns OUTCOME_HALTED without side effects.
func (cpu *Cpu) Step() (outcome Outcome, err error) {
	if cpu.Status == STATUS_HALTED {
		outcome = OUTCOME_HALTED
		return
	}

	in, ok := cpu.Program.Fetch(cpu.Pc)
	if !ok {
		if cpu.Verbose {
			log.Printf("cpu%d: %03d: halt", cpu.Id, cpu.Pc)
		}
		cpu.Status = STATUS_HALTED
		outcome = OUTCOME_HALTED
		return
	}

	cpu.Ticks++

	return cpu.Execute(in)
}

// Execute executes a single decoded instruction at the current program counter.
func (cpu *Cpu) Execute(in Instruction) (outcome Outcome, err error) {
	defer func() {
		if err != nil {
			cpu.Status = STATUS_HALTED
			outcome = OUTCOME_HALTED
			err = errors.Join(ErrOpcode{Pc: cpu.Pc, Instruction: in}, err)
		}
	}()

	if cpu.Verbose {
		log.Printf("cpu%d: %03d: %v", cpu.Id, cpu.Pc, in)
	}

	if len(in.Args) != in.Op.Operands() {
		err = ErrOpcodeArgs
		return
	}

	regs := cpu.Register
	next_pc := cpu.Pc + 1
	outcome = OUTCOME_CONTINUED

	switch in.Op {
	case OP_SND:
		value := in.Args[0].Resolve(regs)
		if cpu.Mode == RECEIVE_BLOCK {
			if cpu.Outbound == nil {
				err = ErrChannelInvalid
				return
			}
			cpu.Outbound.Send(value)
		}
		cpu.lastSent, cpu.hasSent = value, true
		cpu.Sent++
	case OP_SET:
		regs.Set(in.Register, in.Args[0].Resolve(regs))
	case OP_ADD, OP_MUL, OP_MOD:
		var output int64
		output, err = cpu.doAlu(in.Op, regs.Get(in.Register), in.Args[0].Resolve(regs))
		if err != nil {
			return
		}
		regs.Set(in.Register, output)
	case OP_RCV:
		switch cpu.Mode {
		case RECEIVE_RECORD:
			if regs.Get(in.Register) != 0 && !cpu.triggered {
				cpu.triggered = true
				cpu.recovered, cpu.hasRecovered = cpu.lastSent, cpu.hasSent
				if cpu.Verbose {
					if cpu.hasRecovered {
						log.Printf("cpu%d: recovered %d", cpu.Id, cpu.recovered)
					} else {
						log.Printf("cpu%d: recovered nothing", cpu.Id)
					}
				}
				cpu.Status = STATUS_HALTED
				outcome = OUTCOME_HALTED
				return
			}
		case RECEIVE_BLOCK:
			if cpu.Inbound == nil {
				err = ErrChannelInvalid
				return
			}
			value, ok := cpu.Inbound.Receive()
			if !ok {
				// Retry the same instruction on the next step.
				cpu.Status = STATUS_WAITING
				outcome = OUTCOME_BLOCKED
				return
			}
			regs.Set(in.Register, value)
		}
	case OP_JGZ:
		if in.Args[0].Resolve(regs) > 0 {
			next_pc = cpu.Pc + in.Args[1].Resolve(regs)
		}
	default:
		err = ErrOpcodeInvalid
		return
	}

	cpu.Pc = next_pc
	cpu.Status = STATUS_RUNNING

	return
}

// doAlu performs the requested arithmetic, and returns the output value.
func (cpu *Cpu) doAlu(op Opcode, input int64, value int64) (output int64, err error) {
	switch op {
	case OP_ADD:
		output = input + value
	case OP_MUL:
		output = input * value
	case OP_MOD:
		if value == 0 {
			err = ErrDivideByZero
			return
		}
		output = input % value
	}

	return
}
