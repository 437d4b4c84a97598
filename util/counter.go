package util

import "sync/atomic"

// RequestCounter counts dispatched requests for the lifetime of the process.
// The zero value is ready to use and must not be copied.
type RequestCounter struct {
	n atomic.Uint64
}

func NewRequestCounter() *RequestCounter {
	return &RequestCounter{}
}

// Increment adds one and returns the new value.
func (c *RequestCounter) Increment() uint64 {
	return c.n.Add(1)
}

func (c *RequestCounter) Load() uint64 {
	return c.n.Load()
}
