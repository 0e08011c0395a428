package output

import (
	fx "github.com/robotalks/ecgrx/pkg/framework"
)

// Mux writes every reading to all outputs.
type Mux struct {
	Outs []AnalogOut
}

// Write implements AnalogOut.
func (m *Mux) Write(r Reading) error {
	var errs fx.AggregatedError
	for _, out := range m.Outs {
		errs.Add(out.Write(r))
	}
	return errs.Aggregate()
}

// Add adds more outputs.
func (m *Mux) Add(outs ...AnalogOut) {
	m.Outs = append(m.Outs, outs...)
}

// Len is the number of outputs.
func (m *Mux) Len() int {
	return len(m.Outs)
}
