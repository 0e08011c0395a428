// Package output drives an analog output from the current sample.
package output

import (
	"time"

	"github.com/robotalks/ecgrx/pkg/link"
)

// FullScale is the range of the sender's 11-bit ADC. A sample of FullScale
// maps to an output of 1.0.
const FullScale = 2048.0

// Voltage scales a sample to the normalized output range. Samples outside
// [0, FullScale] are not clamped.
func Voltage(s link.Sample) float64 {
	return float64(s) / FullScale
}

// Reading is one value written to an output.
type Reading struct {
	Time    time.Time
	Sample  link.Sample
	Voltage float64
}

// NewReading creates a Reading for sample s taken at t.
func NewReading(t time.Time, s link.Sample) Reading {
	return Reading{Time: t, Sample: s, Voltage: Voltage(s)}
}

// AnalogOut is an analog output channel. Its own range decides how values
// outside [0, 1] are rendered.
type AnalogOut interface {
	Write(Reading) error
}

// AnalogOutFunc is func type of AnalogOut.
type AnalogOutFunc func(Reading) error

// Write implements AnalogOut.
func (f AnalogOutFunc) Write(r Reading) error {
	return f(r)
}

// SampleSource provides the current sample.
type SampleSource interface {
	Load() link.Sample
}
