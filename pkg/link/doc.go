// Package link implements the receiving side of the sample link.
package link

// The sender transmits every sample as two raw bytes (little-endian int16)
// followed by a single 0x00 terminator:
//
//	[low][high][0x00] [low][high][0x00] ...
//
// There is no length field, no escaping and no checksum. Frame boundaries are
// found from the terminator combined with the number of bytes already
// buffered: a 0x00 is a terminator only when two data bytes are buffered,
// otherwise it is stored as data. A non-zero byte arriving with a full buffer
// is dropped.
//
// The scheme cannot tell a 0x00 data byte from a terminator when the buffer
// is already full, and it has no resynchronization beyond waiting for the
// next 0x00 that coincides with a full buffer. Streams that desynchronize
// degrade silently into stale or glitched samples; nothing is reported to
// the caller except the counters in Stats.
//
// Producer: sender firmware
// Consumer: Receiver
