package link

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type parseStep struct {
	in     byte
	action Action
	sample Sample
	fill   int
}

func TestReassembler(t *testing.T) {
	testCases := []struct {
		name  string
		steps []parseStep
	}{
		{
			name: "single frame",
			steps: []parseStep{
				{0x00, ActionBuffered, 0, 1},
				{0x04, ActionBuffered, 0, 2},
				{0x00, ActionFrame, 1024, 0},
			},
		},
		{
			name: "negative sample",
			steps: []parseStep{
				{0xfe, ActionBuffered, 0, 1},
				{0xff, ActionBuffered, 0, 2},
				{0x00, ActionFrame, -2, 0},
			},
		},
		{
			name: "bytes dropped while full",
			steps: []parseStep{
				{0x01, ActionBuffered, 0, 1},
				{0x02, ActionBuffered, 0, 2},
				{0x03, ActionDropped, 0, 2},
				{0xff, ActionDropped, 0, 2},
				{0x00, ActionFrame, 0x0201, 0},
			},
		},
		{
			name: "zero bytes stored while not full",
			steps: []parseStep{
				{0x00, ActionBuffered, 0, 1},
				{0x00, ActionBuffered, 0, 2},
				{0x00, ActionFrame, 0, 0},
			},
		},
		{
			// byte0=5, then two zeros: the first zero is data because
			// only one byte is buffered.
			name: "stray terminator",
			steps: []parseStep{
				{0x05, ActionBuffered, 0, 1},
				{0x00, ActionBuffered, 0, 2},
				{0x00, ActionFrame, 5, 0},
				{0x10, ActionBuffered, 0, 1},
				{0x02, ActionBuffered, 0, 2},
				{0x00, ActionFrame, 0x0210, 0},
			},
		},
		{
			// a stray byte shifts the frame; the zero data byte of 0x0100
			// is taken as data, its high byte is dropped and its terminator
			// closes a glitched frame. The next frame is aligned again.
			name: "desync glitch",
			steps: []parseStep{
				{0x07, ActionBuffered, 0, 1},
				{0x00, ActionBuffered, 0, 2},
				{0x01, ActionDropped, 0, 2},
				{0x00, ActionFrame, 7, 0},
				{0x34, ActionBuffered, 0, 1},
				{0x12, ActionBuffered, 0, 2},
				{0x00, ActionFrame, 0x1234, 0},
			},
		},
		{
			// two stray bytes fill the buffer so the zero low byte of the
			// next sample terminates early.
			name: "false terminator",
			steps: []parseStep{
				{0xaa, ActionBuffered, 0, 1},
				{0xbb, ActionBuffered, 0, 2},
				{0x00, ActionFrame, Sample(-17494), 0},
				{0x08, ActionBuffered, 0, 1},
				{0x00, ActionBuffered, 0, 2},
				{0x00, ActionFrame, 8, 0},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var r Reassembler
			for n, s := range tc.steps {
				pr := r.Parse(s.in)
				require.Equalf(t, s.action, pr.Action, "step[%d] action mismatch", n)
				if s.action == ActionFrame {
					require.Equalf(t, s.sample, pr.Sample, "step[%d] sample mismatch", n)
				}
				require.Equalf(t, s.fill, r.Fill(), "step[%d] fill mismatch", n)
			}
		})
	}
}

func TestReassemblerFillBounded(t *testing.T) {
	var r Reassembler
	for i := 0; i < 1024; i++ {
		r.Parse(byte(i * 7))
		require.True(t, r.Fill() >= 0 && r.Fill() <= SampleSize)
	}
}

func TestReassemblerReset(t *testing.T) {
	var r Reassembler
	r.Parse(0x01)
	r.Parse(0x02)
	require.Equal(t, 2, r.Fill())
	r.Reset()
	require.Equal(t, 0, r.Fill())
	require.Equal(t, ActionBuffered, r.Parse(0x00).Action)
}

func TestReassemblerRoundTrip(t *testing.T) {
	var r Reassembler
	for v := -32768; v <= 32767; v++ {
		var pr ParseResult
		for _, b := range Sample(v).Frame() {
			pr = r.Parse(b)
		}
		if pr.Action != ActionFrame || pr.Sample != Sample(v) {
			t.Fatalf("sample %d: got %v %d", v, pr.Action, pr.Sample)
		}
	}
}

func TestActionString(t *testing.T) {
	require.Equal(t, "buffered", ActionBuffered.String())
	require.Equal(t, "frame", ActionFrame.String())
	require.Equal(t, "dropped", ActionDropped.String())
	require.Equal(t, "unknown", Action(42).String())
}
