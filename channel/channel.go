// Package channel provides the message queues that connect program instances.
package channel

// Channel is a one-way queue of values between two program instances.
// Neither end ever blocks: blocking semantics are built on top by the
// scheduler.
type Channel interface {
	// Rewind discards all queued values.
	Rewind()
	// Send appends a value to the tail of the queue.
	Send(value int64)
	// Receive removes the value at the head of the queue, if any.
	Receive() (value int64, ok bool)
	// Len returns the number of queued values.
	Len() int
}
