package order

import "sync"

// Counter hands out human-facing order numbers. It lives as long as the
// process; a restart starts again at 1.
type Counter struct {
	mu   sync.Mutex
	next int
	// epoch changes on every Reset, so a number reserved before a reset
	// can never be released into the new sequence.
	epoch uint64
}

func NewCounter() *Counter {
	return &Counter{next: 1}
}

// Next reserves and returns the next number along with the epoch it was
// issued in.
func (c *Counter) Next() (int, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.next
	c.next++
	return n, c.epoch
}

// Release gives n back after a failed creation. It has no effect once a
// later number was handed out or the counter was reset since.
func (c *Counter) Release(n int, epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch || c.next-1 != n {
		return false
	}
	c.next = n
	return true
}

// Reset makes the next order number 1.
func (c *Counter) Reset() {
	c.mu.Lock()
	c.next = 1
	c.epoch++
	c.mu.Unlock()
}

// Peek returns the number the next order will receive.
func (c *Counter) Peek() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}
