package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/duet/cpu"
)

var soloExample = []string{
	"set a 1",
	"add a 2",
	"mul a a",
	"mod a 5",
	"snd a",
	"set a 0",
	"rcv a",
	"jgz a -1",
	"set a 1",
	"jgz a -2",
}

var duetExample = []string{
	"snd 1",
	"snd 2",
	"snd p",
	"rcv a",
	"rcv b",
	"rcv c",
	"rcv d",
	"snd a",
	"snd b",
}

// countdown has unit A loop ten times and unit B eleven times, so B is
// left waiting for a value that A, having halted, never sends.
var countdown = []string{
	"set i 10",
	"add i p",
	"snd i",
	"rcv a",
	"add i -1",
	"jgz i -3",
}

var forever = []string{
	"set a 1",
	"jgz a 0",
}

func parseLines(t *testing.T, program []string) *cpu.Program {
	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func TestSolo(t *testing.T) {
	assert := assert.New(t)

	solo := NewSolo(parseLines(t, soloExample))

	result, err := solo.Run(context.Background())
	assert.NoError(err)
	assert.True(result.Ok())
	assert.Equal(REASON_RECOVERED, result.Reason)
	assert.Equal(int64(4), result.Value)
	assert.Equal("4", result.String())
	assert.Equal(cpu.STATUS_HALTED, solo.Cpu.Status)
}

func TestSolo_Exhausted(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
	}){
		{"empty", []string{}},
		{"no_rcv", []string{"snd 1", "set a 2"}},
		{"rcv_zero", []string{"snd 1", "rcv a"}},
		{"jump_out", []string{"set a 1", "jgz a -5", "snd 3", "rcv a"}},
	}

	for _, entry := range table {
		solo := NewSolo(parseLines(t, entry.program))

		result, err := solo.Run(context.Background())
		assert.NoError(err, entry.name)
		assert.False(result.Ok(), entry.name)
		assert.Equal(REASON_EXHAUSTED, result.Reason, entry.name)
		assert.Equal("none", result.String(), entry.name)
	}
}

func TestSolo_Silent(t *testing.T) {
	assert := assert.New(t)

	solo := NewSolo(parseLines(t, []string{"set a 1", "rcv a", "snd 7", "rcv a"}))

	result, err := solo.Run(context.Background())
	assert.NoError(err)
	assert.False(result.Ok())
	assert.Equal(REASON_SILENT, result.Reason)
	assert.Equal("none", result.String())

	// The first rcv halts; the later snd never runs.
	assert.Equal(int64(1), solo.Cpu.Pc)
	assert.Equal(2, solo.Cpu.Ticks)
	assert.Equal(0, solo.Cpu.Sent)
}

func TestSolo_Tick(t *testing.T) {
	assert := assert.New(t)

	solo := NewSolo(parseLines(t, soloExample))

	var ticks int
	for done := false; !done; ticks++ {
		var err error
		done, err = solo.Tick()
		assert.NoError(err)
		if ticks > 100 {
			t.Fatal("solo did not halt")
		}
	}

	// 10 instructions, back to 'jgz a -1', then the recovering rcv.
	assert.Equal(12, ticks)
	assert.Equal(12, solo.Cpu.Ticks)

	done, err := solo.Tick()
	assert.NoError(err)
	assert.True(done)

	solo.Reset()
	assert.Equal(int64(0), solo.Cpu.Pc)
	assert.False(solo.Result().Ok())
}

func TestSolo_StepLimit(t *testing.T) {
	assert := assert.New(t)

	solo := NewSolo(parseLines(t, forever))
	solo.StepLimit = 100

	_, err := solo.Run(context.Background())
	assert.ErrorIs(err, ErrStepLimit)
	assert.Equal(100, solo.Cpu.Ticks)
}

func TestSolo_RuntimeError(t *testing.T) {
	assert := assert.New(t)

	solo := NewSolo(parseLines(t, []string{"set a 3", "", "mod a b"}))

	_, err := solo.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrDivideByZero)

	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(3, rt.LineNo)
		assert.Equal(int64(0), rt.Unit)
	}
}

func TestSolo_Cancelled(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	solo := NewSolo(parseLines(t, forever))
	_, err := solo.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
}

func TestDuet(t *testing.T) {
	assert := assert.New(t)

	duet := NewDuet(parseLines(t, duetExample))

	assert.Equal(int64(0), duet.Units[0].Register.Get("p"))
	assert.Equal(int64(1), duet.Units[1].Register.Get("p"))

	sent, err := duet.Run(context.Background())
	assert.NoError(err)
	assert.Equal(3, sent)
	assert.Equal(3, duet.Units[0].Sent)
	assert.True(duet.Deadlocked())
	assert.True(duet.Quiescent())

	// Three sends, three receives, and one sweep to find both stuck.
	assert.Equal(7, duet.Sweeps)

	a := duet.Units[0].Register
	b := duet.Units[1].Register
	assert.Equal([]int64{1, 2, 1}, []int64{a.Get("a"), a.Get("b"), a.Get("c")})
	assert.Equal([]int64{1, 2, 0}, []int64{b.Get("a"), b.Get("b"), b.Get("c")})

	for _, unit := range duet.Units {
		assert.Equal(cpu.STATUS_WAITING, unit.Status)
		assert.Equal(int64(6), unit.Pc)
	}
}

func TestDuet_Topology(t *testing.T) {
	assert := assert.New(t)

	duet := NewDuet(parseLines(t, []string{"snd p"}))

	assert.Same(duet.Links[0], duet.Units[0].Outbound)
	assert.Same(duet.Links[0], duet.Units[1].Inbound)
	assert.Same(duet.Links[1], duet.Units[1].Outbound)
	assert.Same(duet.Links[1], duet.Units[0].Inbound)

	done, err := duet.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal([]int64{0}, duet.Links[0].Data)
	assert.Equal([]int64{1}, duet.Links[1].Data)

	done, err = duet.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.False(duet.Deadlocked())
	assert.Equal(1, duet.Sent())
}

func TestDuet_DeadlockWithinOneSweep(t *testing.T) {
	assert := assert.New(t)

	duet := NewDuet(parseLines(t, []string{"rcv a", "snd 1"}))
	duet.StepLimit = 50

	done, err := duet.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.True(duet.Deadlocked())
	assert.Equal(1, duet.Sweeps)

	sent, err := duet.Run(context.Background())
	assert.NoError(err)
	assert.Equal(0, sent)
	assert.Equal(2, duet.Sweeps)
}

func TestDuet_UnblockedInSweep(t *testing.T) {
	assert := assert.New(t)

	// A waits first, B sends in the same sweep: the sweep must not end
	// the run while A has a value to receive.
	duet := NewDuet(parseLines(t, []string{
		"jgz p 2",
		"rcv a",
		"snd 5",
		"rcv b",
	}))
	duet.StepLimit = 50

	sent, err := duet.Run(context.Background())
	assert.NoError(err)
	assert.Equal(int64(5), duet.Units[0].Register.Get("a"))
	assert.Equal(1, sent)
	assert.Equal(1, duet.Units[0].Sent)
	assert.Equal(cpu.STATUS_HALTED, duet.Units[1].Status)
	assert.True(duet.Quiescent())
	assert.False(duet.Deadlocked())
}

func TestDuet_HaltedAndWaiting(t *testing.T) {
	assert := assert.New(t)

	duet := NewDuet(parseLines(t, []string{
		"jgz p 3",
		"rcv a",
		"rcv b",
		"snd 9",
	}))
	duet.StepLimit = 50

	sent, err := duet.Run(context.Background())
	assert.NoError(err)
	assert.Equal(1, sent)
	assert.Equal(4, duet.Sweeps)
	assert.Equal(cpu.STATUS_WAITING, duet.Units[0].Status)
	assert.Equal(cpu.STATUS_HALTED, duet.Units[1].Status)
	assert.False(duet.Deadlocked())
	assert.True(duet.Quiescent())
}

func TestDuet_BothHalted(t *testing.T) {
	assert := assert.New(t)

	duet := NewDuet(parseLines(t, countdown[:3]))

	sent, err := duet.Run(context.Background())
	assert.NoError(err)
	assert.Equal(1, sent)
	for _, unit := range duet.Units {
		assert.Equal(cpu.STATUS_HALTED, unit.Status)
	}
	assert.Equal(int64(11), duet.Links[1].Data[0])
}

func TestDuet_Countdown(t *testing.T) {
	assert := assert.New(t)

	duet := NewDuet(parseLines(t, countdown))
	duet.StepLimit = 1000

	sent, err := duet.Run(context.Background())
	assert.NoError(err)
	assert.Equal(11, sent)
	assert.Equal(10, duet.Units[0].Sent)
	assert.Equal(cpu.STATUS_HALTED, duet.Units[0].Status)
	assert.Equal(cpu.STATUS_WAITING, duet.Units[1].Status)
}

func TestDuet_Deterministic(t *testing.T) {
	assert := assert.New(t)

	prog := parseLines(t, countdown)

	first := NewDuet(prog)
	_, err := first.Run(context.Background())
	assert.NoError(err)

	second := NewDuet(prog)
	_, err = second.Run(context.Background())
	assert.NoError(err)

	assert.Equal(first.Sweeps, second.Sweeps)
	for n := range UNIT_COUNT {
		assert.Equal(first.Units[n].Register, second.Units[n].Register)
		assert.Equal(first.Units[n].Pc, second.Units[n].Pc)
		assert.Equal(first.Units[n].Ticks, second.Units[n].Ticks)
	}

	// Reset replays identically.
	sweeps := first.Sweeps
	first.Reset()
	assert.Equal(int64(1), first.Units[1].Register.Get("p"))
	assert.Equal(0, first.Links[0].Len())
	_, err = first.Run(context.Background())
	assert.NoError(err)
	assert.Equal(sweeps, first.Sweeps)
}

func TestDuet_StepLimit(t *testing.T) {
	assert := assert.New(t)

	duet := NewDuet(parseLines(t, forever))
	duet.StepLimit = 100

	_, err := duet.Run(context.Background())
	assert.ErrorIs(err, ErrStepLimit)
}

func TestDuet_RuntimeError(t *testing.T) {
	assert := assert.New(t)

	// Unit A divides by its p, which is zero.
	duet := NewDuet(parseLines(t, []string{"mod a p", "set b 1", "mod b a"}))

	_, err := duet.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrDivideByZero)

	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(int64(0), rt.Unit)
		assert.Equal(1, rt.LineNo)
	}
}

func TestConcurrent(t *testing.T) {
	assert := assert.New(t)

	con := NewConcurrent(parseLines(t, duetExample))
	con.StepLimit = 1000

	sent, err := con.Run(context.Background())
	assert.NoError(err)
	assert.Equal(3, sent)
	assert.True(con.Deadlocked())

	a := con.Units[0].Register
	assert.Equal([]int64{1, 2, 1}, []int64{a.Get("a"), a.Get("b"), a.Get("c")})
}

func TestConcurrent_MatchesDuet(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
	}){
		{"example", duetExample},
		{"countdown", countdown},
		{"halted_and_waiting", []string{"jgz p 3", "rcv a", "rcv b", "snd 9"}},
		{"both_halted", []string{"snd p"}},
		{"stuck", []string{"rcv a"}},
	}

	for _, entry := range table {
		prog := parseLines(t, entry.program)

		duet := NewDuet(prog)
		duet.StepLimit = 10000
		expected, err := duet.Run(context.Background())
		assert.NoError(err, entry.name)

		for range 5 {
			con := NewConcurrent(prog)
			con.StepLimit = 10000
			sent, err := con.Run(context.Background())
			assert.NoError(err, entry.name)
			assert.Equal(expected, sent, entry.name)
			for n := range UNIT_COUNT {
				assert.Equal(duet.Units[n].Register, con.Units[n].Register, entry.name)
				assert.Equal(duet.Units[n].Status, con.Units[n].Status, entry.name)
			}
			assert.Equal(duet.Deadlocked(), con.Deadlocked(), entry.name)
		}
	}
}

func TestConcurrent_StepLimit(t *testing.T) {
	assert := assert.New(t)

	con := NewConcurrent(parseLines(t, forever))
	con.StepLimit = 100

	_, err := con.Run(context.Background())
	assert.ErrorIs(err, ErrStepLimit)
}

func TestConcurrent_Timeout(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Unit A spins forever while unit B waits on it.
	con := NewConcurrent(parseLines(t, []string{"jgz p 2", "jgz 1 0", "rcv a"}))

	_, err := con.Run(ctx)
	assert.ErrorIs(err, context.DeadlineExceeded)
}

func TestConcurrent_RuntimeError(t *testing.T) {
	assert := assert.New(t)

	// Unit B fails while unit A waits for it.
	con := NewConcurrent(parseLines(t, []string{"jgz p 2", "rcv a", "mod a 0"}))

	_, err := con.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrDivideByZero)

	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(int64(1), rt.Unit)
		assert.Equal(3, rt.LineNo)
	}
}

func TestConcurrent_Reset(t *testing.T) {
	assert := assert.New(t)

	con := NewConcurrent(parseLines(t, countdown))

	sent, err := con.Run(context.Background())
	assert.NoError(err)
	assert.Equal(11, sent)

	con.Reset()
	assert.Equal(0, con.Units[1].Sent)
	assert.Equal(0, con.Links[0].Len())

	sent, err = con.Run(context.Background())
	assert.NoError(err)
	assert.Equal(11, sent)
}

func TestConcurrent_ResetRepeated(t *testing.T) {
	assert := assert.New(t)

	con := NewConcurrent(parseLines(t, countdown))

	// Each run is followed immediately by a reset, with no pause for the
	// previous run's cancellation to settle.
	for n := range 50 {
		con.Reset()
		sent, err := con.Run(context.Background())
		assert.NoError(err, n)
		assert.Equal(11, sent, n)
		assert.Equal(10, con.Units[0].Sent, n)
	}
}
