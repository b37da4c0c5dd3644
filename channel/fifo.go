package channel

// Fifo is an unbounded first-in first-out queue.
type Fifo struct {
	Data []int64
}

var _ Channel = (*Fifo)(nil)

// Rewind empties the queue.
func (q *Fifo) Rewind() {
	q.Data = nil
}

// Send appends a value. It never fails.
func (q *Fifo) Send(value int64) {
	q.Data = append(q.Data, value)
}

// Receive pops the head of the queue, or returns ok=false if empty.
func (q *Fifo) Receive() (value int64, ok bool) {
	if len(q.Data) > 0 {
		ok = true
		value = q.Data[0]
		q.Data = q.Data[1:]
	}
	return
}

// Len returns the number of values waiting to be received.
func (q *Fifo) Len() int {
	return len(q.Data)
}
