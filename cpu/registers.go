package cpu

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Registers is a register file. Unset registers read as zero.
type Registers map[string]int64

// Get returns the value of a register.
func (regs Registers) Get(name string) int64 {
	return regs[name]
}

// Set sets the value of a register.
func (regs Registers) Set(name string, value int64) {
	regs[name] = value
}

// Reset clears all registers back to zero.
func (regs Registers) Reset() {
	clear(regs)
}

// String returns the registers sorted by name.
func (regs Registers) String() string {
	var text []string
	for _, name := range slices.Sorted(maps.Keys(regs)) {
		text = append(text, fmt.Sprintf("%v=%d", name, regs[name]))
	}
	return strings.Join(text, " ")
}
