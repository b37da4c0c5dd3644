package cpu

// ReceiveMode selects the behaviour of the rcv instruction.
type ReceiveMode int

//go:generate go tool stringer -linecomment -type=ReceiveMode
const (
	RECEIVE_RECORD = ReceiveMode(0) // record
	RECEIVE_BLOCK  = ReceiveMode(1) // block
)

// Status is the execution state of a Cpu.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATUS_RUNNING = Status(0) // running
	STATUS_WAITING = Status(1) // waiting
	STATUS_HALTED  = Status(2) // halted
)

// Outcome is the result of a single Cpu step.
type Outcome int

//go:generate go tool stringer -linecomment -type=Outcome
const (
	OUTCOME_CONTINUED = Outcome(0) // continued
	OUTCOME_BLOCKED   = Outcome(1) // blocked
	OUTCOME_HALTED    = Outcome(2) // halted
)
