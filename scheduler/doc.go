// Package scheduler drives duet programs to completion.
//
// Solo runs one instance with recording rcv until it recovers a value or
// runs off the end of the program. Duet runs two instances, A and B, in a
// fixed round-robin order, each with its own registers and its register p
// seeded to 0 or 1, connected by a pair of FIFO channels. A duet ends when
// neither unit can make progress: each is halted, or waiting on an empty
// channel. Concurrent produces the same results as Duet with one goroutine
// per unit.
package scheduler
