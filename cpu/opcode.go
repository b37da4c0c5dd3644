package cpu

import (
	"strconv"
	"strings"
)

// Opcode is an instruction operation.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_SND = Opcode(0) // snd
	OP_SET = Opcode(1) // set
	OP_ADD = Opcode(2) // add
	OP_MUL = Opcode(3) // mul
	OP_MOD = Opcode(4) // mod
	OP_RCV = Opcode(5) // rcv
	OP_JGZ = Opcode(6) // jgz
)

// Arity returns the number of arguments the opcode takes in program text.
func (op Opcode) Arity() int {
	switch op {
	case OP_SND, OP_RCV:
		return 1
	default:
		return 2
	}
}

// Operands returns the number of value operands the opcode carries.
func (op Opcode) Operands() int {
	switch op {
	case OP_RCV:
		return 0
	case OP_JGZ:
		return 2
	default:
		return 1
	}
}

// Targeted returns true if the first argument names a destination register.
func (op Opcode) Targeted() bool {
	switch op {
	case OP_SET, OP_ADD, OP_MUL, OP_MOD, OP_RCV:
		return true
	default:
		return false
	}
}

// Operand is a value source: a literal, or a named register.
type Operand struct {
	Register string // Register name; empty for a literal.
	Value    int64  // Literal value.
}

// Literal creates a literal operand.
func Literal(value int64) Operand {
	return Operand{Value: value}
}

// Ref creates a register reference operand.
func Ref(name string) Operand {
	return Operand{Register: name}
}

// IsLiteral returns true if the operand does not reference a register.
func (op Operand) IsLiteral() bool {
	return len(op.Register) == 0
}

// Resolve returns the operand's value against a register file.
// Registers never written resolve to zero.
func (op Operand) Resolve(regs Registers) int64 {
	if op.IsLiteral() {
		return op.Value
	}

	return regs.Get(op.Register)
}

func (op Operand) String() string {
	if op.IsLiteral() {
		return strconv.FormatInt(op.Value, 10)
	}
	return op.Register
}

// Instruction is a single decoded program line.
type Instruction struct {
	Op       Opcode
	Register string    // Destination register for targeted opcodes.
	Args     []Operand // Value operands.
	LineNo   int       // Source line number, 1-based.
}

// Snd creates a send instruction.
func Snd(value Operand) Instruction {
	return Instruction{Op: OP_SND, Args: []Operand{value}}
}

// Set creates a register set instruction.
func Set(reg string, value Operand) Instruction {
	return Instruction{Op: OP_SET, Register: reg, Args: []Operand{value}}
}

// Add creates a register add instruction.
func Add(reg string, value Operand) Instruction {
	return Instruction{Op: OP_ADD, Register: reg, Args: []Operand{value}}
}

// Mul creates a register multiply instruction.
func Mul(reg string, value Operand) Instruction {
	return Instruction{Op: OP_MUL, Register: reg, Args: []Operand{value}}
}

// Mod creates a register modulo instruction.
func Mod(reg string, value Operand) Instruction {
	return Instruction{Op: OP_MOD, Register: reg, Args: []Operand{value}}
}

// Rcv creates a receive instruction.
func Rcv(reg string) Instruction {
	return Instruction{Op: OP_RCV, Register: reg}
}

// Jgz creates a relative jump, taken if cond is greater than zero.
func Jgz(cond Operand, offset Operand) Instruction {
	return Instruction{Op: OP_JGZ, Args: []Operand{cond, offset}}
}

// String returns the instruction in program text form.
func (in Instruction) String() string {
	words := []string{in.Op.String()}
	if in.Op.Targeted() {
		words = append(words, in.Register)
	}
	for _, arg := range in.Args {
		words = append(words, arg.String())
	}
	return strings.Join(words, " ")
}
