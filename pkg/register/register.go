// Package register holds the most recently received sample.
//
// A Register has a single writer (the link receiver) and a single reader
// (the output task). Loads and stores are atomic so the reader never
// observes a partially written value.
package register

import (
	"sync/atomic"

	"github.com/robotalks/ecgrx/pkg/link"
)

// Register is the shared current sample. The zero value holds 0.
type Register struct {
	value int32
}

// Store implements link.SampleWriter.
func (r *Register) Store(s link.Sample) {
	atomic.StoreInt32(&r.value, int32(s))
}

// Load gets the current sample.
func (r *Register) Load() link.Sample {
	return link.Sample(atomic.LoadInt32(&r.value))
}

// Int gets the current sample widened to int.
func (r *Register) Int() int {
	return r.Load().Int()
}
