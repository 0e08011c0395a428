// Package serialport opens the byte channel the samples arrive on.
package serialport

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is the line rate of the sender.
const DefaultBaud = 115200

// ErrNoDevice indicates no serial device is configured.
var ErrNoDevice = errors.New("no serial device")

// Config defines a serial port. Framing is always 8N1.
type Config struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	// ReadTimeout makes reads return periodically without data.
	// Zero blocks until a byte arrives.
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// SerialConfig converts to tarm/serial configuration.
func (c Config) SerialConfig() *serial.Config {
	baud := c.Baud
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &serial.Config{
		Name:        c.Device,
		Baud:        baud,
		ReadTimeout: c.ReadTimeout,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}
}

// Open opens the serial port.
func Open(c Config) (io.ReadWriteCloser, error) {
	if c.Device == "" {
		return nil, ErrNoDevice
	}
	port, err := serial.OpenPort(c.SerialConfig())
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %v", c.Device, err)
	}
	return port, nil
}

// OpenReplay opens a capture of raw wire bytes to be used in place of the
// serial port. When baud is positive, bytes are delivered no faster than the
// line would carry them (10 bits per byte with 8N1). Reading ends with io.EOF.
func OpenReplay(path string, baud int) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %v", err)
	}
	if baud <= 0 {
		return f, nil
	}
	return &pacedReader{
		file:     f,
		byteTime: time.Second * 10 / time.Duration(baud),
	}, nil
}

type pacedReader struct {
	file     *os.File
	byteTime time.Duration
	start    time.Time
	count    int64
}

func (r *pacedReader) Read(p []byte) (int, error) {
	if r.start.IsZero() {
		r.start = time.Now()
	}
	due := r.start.Add(time.Duration(r.count) * r.byteTime)
	if ahead := time.Until(due); ahead > time.Millisecond {
		time.Sleep(ahead)
	}
	n, err := r.file.Read(p)
	r.count += int64(n)
	return n, err
}

func (r *pacedReader) Close() error {
	return r.file.Close()
}
