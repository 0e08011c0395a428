package link

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeSample(t *testing.T) {
	testCases := []struct {
		b0, b1 byte
		expect Sample
	}{
		{0x00, 0x00, 0},
		{0x00, 0x04, 1024},
		{0xff, 0x07, 2047},
		{0x00, 0x08, 2048},
		{0xff, 0x7f, 32767},
		{0x00, 0x80, -32768},
		{0xff, 0xff, -1},
	}
	for _, tc := range testCases {
		require.Equalf(t, tc.expect, DecodeSample(tc.b0, tc.b1), "% x", []byte{tc.b0, tc.b1})
	}
}

func TestSampleFrame(t *testing.T) {
	require.Equal(t, []byte{0x00, 0x04, Terminator}, Sample(1024).Frame())
	require.Equal(t, []byte{0xff, 0xff, Terminator}, Sample(-1).Frame())
	require.Len(t, Sample(0).Frame(), FrameSize)
	require.Equal(t, -1, Sample(-1).Int())
}
