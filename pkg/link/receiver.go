package link

import (
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/golang/glog"
)

// ErrNoReader indicates the Receiver has nothing to read from.
var ErrNoReader = errors.New("no reader")

// SampleWriter accepts completed samples.
type SampleWriter interface {
	Store(Sample)
}

// FrameHandler is called when a frame is received, after the sample
// is stored.
type FrameHandler interface {
	HandleFrame(context.Context, Sample)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, Sample)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, s Sample) {
	f(ctx, s)
}

// Stats are counters of received bytes.
type Stats struct {
	// Bytes is the total number of bytes read.
	Bytes uint64
	// Frames is the number of terminated frames.
	Frames uint64
	// Dropped is the number of bytes discarded while the buffer was full.
	Dropped uint64
}

// Receiver reads the byte stream and publishes every completed sample.
type Receiver struct {
	bytes   uint64
	frames  uint64
	dropped uint64

	Reader   io.Reader
	Register SampleWriter
	Handler  FrameHandler
	// ReadTimeout is set to true if Reader returns periodically without
	// data (a port opened with a read timeout). Reads are then done inline
	// and the context is checked between them.
	ReadTimeout bool

	parser Reassembler
}

// NewReceiver creates a Receiver publishing into w.
func NewReceiver(r io.Reader, w SampleWriter) *Receiver {
	return &Receiver{Reader: r, Register: w}
}

// Name implements framework.Named.
func (r *Receiver) Name() string {
	return "receiver"
}

// Stats gets a snapshot of the counters.
func (r *Receiver) Stats() Stats {
	return Stats{
		Bytes:   atomic.LoadUint64(&r.bytes),
		Frames:  atomic.LoadUint64(&r.frames),
		Dropped: atomic.LoadUint64(&r.dropped),
	}
}

// Run reads and reassembles bytes until ctx is done or the Reader fails.
// A byte returned together with an error is consumed before the error.
func (r *Receiver) Run(ctx context.Context) error {
	if r.Reader == nil {
		return ErrNoReader
	}
	if r.ReadTimeout {
		buf := make([]byte, 1)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			n, err := r.Reader.Read(buf)
			if n > 0 {
				r.consume(ctx, buf[0])
			}
			if err != nil && !isTimeout(err) {
				return err
			}
		}
	}

	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case b := <-byteCh:
			r.consume(ctx, b)
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Receiver) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		n, err := r.Reader.Read(buf)
		if n > 0 {
			select {
			case byteCh <- buf[0]:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func (r *Receiver) consume(ctx context.Context, b byte) {
	atomic.AddUint64(&r.bytes, 1)
	pr := r.parser.Parse(b)
	switch pr.Action {
	case ActionFrame:
		atomic.AddUint64(&r.frames, 1)
		if w := r.Register; w != nil {
			w.Store(pr.Sample)
		}
		if h := r.Handler; h != nil {
			h.HandleFrame(ctx, pr.Sample)
		}
	case ActionDropped:
		atomic.AddUint64(&r.dropped, 1)
		glog.V(3).Infof("byte %#02x dropped, buffer full", b)
	}
}

func isTimeout(err error) bool {
	// tarm/serial reports an expired read timeout as io.EOF.
	return err == io.EOF || os.IsTimeout(err)
}
