package link

const (
	// Terminator ends every frame.
	Terminator byte = 0x00
	// SampleSize is the number of data bytes in a frame.
	SampleSize = 2
	// FrameSize is the number of bytes of a frame on the wire.
	FrameSize = SampleSize + 1
)

// Sample is one reconstructed value from the sender's acquisition hardware.
// The sender's ADC produces values in [0, 2047] but the transport carries
// the full int16 range.
type Sample int16

// DecodeSample builds a Sample from its two wire bytes, low byte first.
func DecodeSample(b0, b1 byte) Sample {
	return Sample(int16(uint16(b1)<<8 | uint16(b0)))
}

// Int widens the sample.
func (s Sample) Int() int {
	return int(s)
}

// Bytes returns the two data bytes, low byte first.
func (s Sample) Bytes() [SampleSize]byte {
	return [SampleSize]byte{byte(uint16(s)), byte(uint16(s) >> 8)}
}

// Frame returns the encoded frame as sent over the wire.
func (s Sample) Frame() []byte {
	b := s.Bytes()
	return []byte{b[0], b[1], Terminator}
}
