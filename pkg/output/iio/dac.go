// Package iio writes readings to a DAC channel exposed by the Linux
// Industrial I/O subsystem.
package iio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/robotalks/ecgrx/pkg/output"
)

// DefaultBits is the resolution of the DAC when not specified.
const DefaultBits = 12

// ChannelPath is the sysfs attribute of a raw DAC output channel.
func ChannelPath(device, channel int) string {
	return filepath.Join("/sys/bus/iio/devices",
		fmt.Sprintf("iio:device%d", device),
		fmt.Sprintf("out_voltage%d_raw", channel))
}

// DAC is an output.AnalogOut writing raw codes into a sysfs attribute.
// The normalized range [0, 1] spans all codes; values outside the range
// saturate at the rails like the hardware does.
type DAC struct {
	file *os.File
	max  int
	buf  []byte
}

// Open opens the raw channel attribute at path for a DAC of the given
// resolution.
func Open(path string, bits int) (*DAC, error) {
	if bits <= 0 {
		bits = DefaultBits
	}
	if bits > 30 {
		return nil, fmt.Errorf("iio: unsupported resolution %d bits", bits)
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("iio: open %s: %v", path, err)
	}
	return &DAC{file: f, max: 1<<uint(bits) - 1, buf: make([]byte, 0, 16)}, nil
}

// Code converts a normalized voltage into a DAC code.
func (d *DAC) Code(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return d.max
	}
	return int(math.Round(v * float64(d.max)))
}

// Write implements output.AnalogOut.
func (d *DAC) Write(r output.Reading) error {
	d.buf = strconv.AppendInt(d.buf[:0], int64(d.Code(r.Voltage)), 10)
	d.buf = append(d.buf, '\n')
	_, err := d.file.WriteAt(d.buf, 0)
	return err
}

// Close implements io.Closer.
func (d *DAC) Close() error {
	return d.file.Close()
}
