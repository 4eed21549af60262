// Package sequence assigns monotonic sequence numbers to accepted
// events so downstream consumers can detect gaps and reordering.
package sequence

import (
	"fmt"
	"sync/atomic"
)

type Generator struct {
	counter uint64
}

func New() *Generator {
	return &Generator{}
}

// Next returns the next sequence number.
func (g *Generator) Next() uint64 {
	return atomic.AddUint64(&g.counter, 1)
}

// Key returns a partition-friendly publish key combining the
// interaction ID with an already assigned sequence number.
func Key(interactionId string, sequence uint64) string {
	return fmt.Sprintf("%s-evt-%d", interactionId, sequence)
}
