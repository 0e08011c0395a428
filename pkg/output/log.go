package output

import "github.com/golang/glog"

// LogOut logs readings. At the default verbosity nothing is printed.
type LogOut struct {
	Verbosity glog.Level
}

// Write implements AnalogOut.
func (o *LogOut) Write(r Reading) error {
	if glog.V(o.Verbosity) {
		glog.Infof("sample %d voltage %.6f", r.Sample, r.Voltage)
	}
	return nil
}
