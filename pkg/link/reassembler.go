package link

// Action is what the Reassembler did with a byte.
type Action int

const (
	// ActionBuffered means the byte was stored as data.
	ActionBuffered Action = iota
	// ActionFrame means the byte terminated a frame and Sample is valid.
	ActionFrame
	// ActionDropped means the buffer was full and the byte was not a
	// terminator. The receiver is out of step with the sender.
	ActionDropped
)

// String implements fmt.Stringer.
func (a Action) String() string {
	switch a {
	case ActionBuffered:
		return "buffered"
	case ActionFrame:
		return "frame"
	case ActionDropped:
		return "dropped"
	}
	return "unknown"
}

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	Action Action
	Sample Sample
}

// Reassembler accumulates data bytes until a terminator completes a frame.
// The zero value is an empty buffer.
type Reassembler struct {
	buf  [SampleSize]byte
	fill int
}

// Fill is the number of data bytes buffered, always in [0, SampleSize].
func (r *Reassembler) Fill() int {
	return r.fill
}

// Reset discards buffered bytes.
func (r *Reassembler) Reset() {
	r.fill = 0
}

// Parse consumes one byte.
func (r *Reassembler) Parse(b byte) (pr ParseResult) {
	switch {
	case b == Terminator && r.fill >= SampleSize:
		r.fill = 0
		pr.Action, pr.Sample = ActionFrame, DecodeSample(r.buf[0], r.buf[1])
	case r.fill < SampleSize:
		r.buf[r.fill] = b
		r.fill++
		pr.Action = ActionBuffered
	default:
		pr.Action = ActionDropped
	}
	return
}
