package cpu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/duet/channel"
)

// fuzzCpu builds a blocking-mode cpu in a fixed starting state.
func fuzzCpu(prog *Program, reg int64, inputs uint8) (cpu *Cpu, in, out *channel.Fifo) {
	in = &channel.Fifo{}
	out = &channel.Fifo{}
	for n := range inputs % 4 {
		in.Send(int64(n) * 11)
	}

	cpu = NewCpu(prog, RECEIVE_BLOCK)
	cpu.Inbound = in
	cpu.Outbound = out
	cpu.Register.Set("a", reg)
	cpu.Register.Set("b", -reg)
	return
}

func FuzzStep(f *testing.F) {
	for op := range 7 {
		f.Add(uint8(op), int64(0), int64(1), int64(3), uint8(0))
		f.Add(uint8(op), int64(-5), int64(0), int64(-1), uint8(2))
	}

	f.Fuzz(func(t *testing.T, op uint8, x int64, y int64, reg int64, inputs uint8) {
		assert := assert.New(t)

		opcode := Opcode(op % 7)
		in := Instruction{Op: opcode}
		if opcode.Targeted() {
			in.Register = "a"
		}
		switch opcode.Operands() {
		case 1:
			in.Args = []Operand{Literal(x)}
		case 2:
			in.Args = []Operand{Ref("a"), Literal(y)}
		}

		prog := &Program{Instructions: []Instruction{in, Add("b", Ref("a")), Snd(Ref("b"))}}

		cpu1, in1, out1 := fuzzCpu(prog, reg, inputs)
		cpu2, in2, out2 := fuzzCpu(prog, reg, inputs)

		for step := range 4 {
			outcome1, err1 := cpu1.Step()
			outcome2, err2 := cpu2.Step()

			where := fmt.Sprintf("step %d: %v\ncpu:%v", step, in, cpu1.String())
			assert.Equal(outcome1, outcome2, where)
			assert.Equal(fmt.Sprint(err1), fmt.Sprint(err2), where)
			assert.Equal(cpu1.Pc, cpu2.Pc, where)
			assert.Equal(cpu1.Status, cpu2.Status, where)
			assert.Equal(cpu1.Register, cpu2.Register, where)
			assert.Equal(in1.Data, in2.Data, where)
			assert.Equal(out1.Data, out2.Data, where)

			if err1 != nil {
				assert.Equal(OUTCOME_HALTED, outcome1, where)
				assert.Equal(OP_MOD, opcode, where)
				assert.ErrorIs(err1, ErrDivideByZero, where)
			}

			switch outcome1 {
			case OUTCOME_BLOCKED:
				assert.Equal(STATUS_WAITING, cpu1.Status, where)
				assert.Equal(0, in1.Len(), where)
			case OUTCOME_HALTED:
				assert.Equal(STATUS_HALTED, cpu1.Status, where)
			case OUTCOME_CONTINUED:
				assert.Equal(STATUS_RUNNING, cpu1.Status, where)
			}
		}
	})
}
