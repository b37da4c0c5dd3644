// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// opMap maps mnemonics to opcodes.
var opMap = map[string]Opcode{
	"snd": OP_SND,
	"set": OP_SET,
	"add": OP_ADD,
	"mul": OP_MUL,
	"mod": OP_MOD,
	"rcv": OP_RCV,
	"jgz": OP_JGZ,
}

var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)

// Assembler is a line oriented parser for duet program text.
//
// Each line is `mnemonic arg1 [arg2]`. Text after ';' is a comment.
// Lines that do not split into two or three words are skipped.
// A `$(expr)` is replaced by the value of the integer expression before
// the line is split.
type Assembler struct {
	Verbose     bool          // If set, verbosely logs the assembler actions.
	Instruction []Instruction // List of decoded instructions.

	predefine map[string]int64 // Names visible to $(...) expressions.
}

// Predefine defines a new name, or redefines an existing name, for use
// in $(...) expressions.
func (asm *Assembler) Predefine(name string, value int64) {
	if asm.predefine == nil {
		asm.predefine = map[string]int64{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// Predefines returns a copy of the predefined names.
func (asm *Assembler) Predefines() map[string]int64 {
	return maps.Clone(asm.predefine)
}

// parenEval does compile-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, val := range asm.predefine {
		pred[key] = starlark.MakeInt64(val)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// valueOf returns the literal value of a word, or ok=false for a register.
func valueOf(word string) (value int64, ok bool) {
	value, err := strconv.ParseInt(word, 10, 64)
	ok = err == nil
	return
}

// operandOf decodes a word as a literal or register operand.
func operandOf(word string) Operand {
	value, ok := valueOf(word)
	if ok {
		return Literal(value)
	}
	return Ref(word)
}

// parseLine expands a line of text into words.
func (asm *Assembler) parseLine(line string) (words []string, err error) {
	// The field count for skipping is taken after the comment is removed.
	line, _, _ = strings.Cut(line, ";")

	// Do $() evaluations
	line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.FormatInt(value, 10)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)
	return
}

// parseWords decodes the words of a line into an instruction.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	op, ok := opMap[words[0]]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	args := words[1:]
	if len(args) != op.Arity() {
		err = ErrOpcodeArgs
		return
	}

	in := Instruction{Op: op, LineNo: lineno}
	if op.Targeted() {
		if _, is_literal := valueOf(args[0]); is_literal {
			err = ErrRegisterInvalid
			return
		}
		in.Register = args[0]
		args = args[1:]
	}
	for _, word := range args {
		in.Args = append(in.Args, operandOf(word))
	}

	asm.Instruction = append(asm.Instruction, in)

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Instruction = nil

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		var words []string
		words, err = asm.parseLine(line)
		if err != nil {
			return
		}

		if len(words) < 2 || len(words) > 3 {
			if asm.Verbose && len(words) != 0 {
				log.Printf("%v: skipped, %d words", lineno, len(words))
			}
			continue
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	prog = &Program{
		Instructions: asm.Instruction,
	}

	return
}

// ParseString parses program text into a Program.
func ParseString(text string) (prog *Program, err error) {
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(text))
}

// MustParse parses program text, and panics on failure.
func MustParse(text string) *Program {
	prog, err := ParseString(text)
	if err != nil {
		panic(fmt.Sprintf("cpu: %v", err))
	}
	return prog
}
