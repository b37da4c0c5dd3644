// Package cpu implements the register machine and assembler for duet programs.
//
// A Cpu holds a program counter and a register file, and executes one
// instruction per Step. The seven opcodes (snd, set, add, mul, mod, rcv, jgz)
// operate on signed 64-bit registers named by arbitrary identifiers; a
// register never written reads as zero.
//
// The rcv instruction has two behaviours, selected when the Cpu is created:
// RECEIVE_RECORD captures the last sent value and halts the first time its
// register is non-zero, and RECEIVE_BLOCK pops the inbound channel, stalling
// in place while the channel is empty.
//
// The assembler decodes line oriented program text, supporting ';' comments
// and compile-time $(...) expressions.
package cpu
