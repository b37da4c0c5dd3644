package cpu

import (
	"iter"
)

// Program is an immutable decoded instruction stream.
type Program struct {
	Instructions []Instruction
}

// Len returns the number of instructions.
func (prog *Program) Len() int {
	return len(prog.Instructions)
}

// Fetch returns the instruction at pc, or ok=false if pc is out of range.
func (prog *Program) Fetch(pc int64) (in Instruction, ok bool) {
	if pc < 0 || pc >= int64(len(prog.Instructions)) {
		return
	}

	return prog.Instructions[pc], true
}

// LineNo returns the source line of the instruction at pc, or 0.
func (prog *Program) LineNo(pc int64) int {
	in, ok := prog.Fetch(pc)
	if !ok {
		return 0
	}
	return in.LineNo
}

// All iterates over the program's instructions by pc.
func (prog *Program) All() iter.Seq2[int64, Instruction] {
	return func(yield func(pc int64, in Instruction) bool) {
		for n, in := range prog.Instructions {
			if !yield(int64(n), in) {
				return
			}
		}
	}
}
