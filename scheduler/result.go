package scheduler

import (
	"strconv"
)

// Reason is why a single-process run stopped. REASON_EXHAUSTED means the
// program ran off its end; REASON_SILENT means rcv fired before any snd.
type Reason int

//go:generate go tool stringer -linecomment -type=Reason
const (
	REASON_EXHAUSTED = Reason(0) // exhausted
	REASON_RECOVERED = Reason(1) // recovered
	REASON_SILENT    = Reason(2) // silent
)

// Result of a single-process run.
type Result struct {
	Value  int64  // Recovered value, if Reason is REASON_RECOVERED.
	Reason Reason // Why the run stopped.
}

// Ok returns true if a value was recovered.
func (res Result) Ok() bool {
	return res.Reason == REASON_RECOVERED
}

func (res Result) String() string {
	if !res.Ok() {
		return "none"
	}
	return strconv.FormatInt(res.Value, 10)
}
