package output

import (
	fx "github.com/robotalks/ecgrx/pkg/framework"
)

// Task writes the current sample to an AnalogOut on every loop tick.
type Task struct {
	Source SampleSource
	Out    AnalogOut
}

// NewTask creates a Task.
func NewTask(src SampleSource, out AnalogOut) *Task {
	return &Task{Source: src, Out: out}
}

// Control implements framework.Controller.
func (t *Task) Control(cc fx.ControlContext) error {
	return t.Out.Write(NewReading(cc.Time(), t.Source.Load()))
}

// AddToLoop implements framework.LoopAdder.
func (t *Task) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvAcuate, t)
}
