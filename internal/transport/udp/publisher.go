// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"lightbox/internal/frame"
	"lightbox/internal/log"
	"lightbox/internal/transport"
	"time"
)

/*
Frame Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Magic             | [4]byte        | 4            | "LBX1"                  |
| Sequence Number   | uint32         | 4            | Commit sequence (low 32)|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Width             | uint16         | 2            | Grid columns            |
| Height            | uint16         | 2            | Grid rows               |
| Pixels            | []byte         | W * H * 3    | Row-major R,G,B         |
+-----------------------------------------------------------------------------+
*/

const (
	// Magic prefixes every frame packet.
	Magic = "LBX1"
	// HeaderSize is the packet size before the pixel payload.
	HeaderSize = 20
	// MaxPacketSize is the largest IPv4 UDP payload.
	MaxPacketSize = 65507
)

var (
	ErrPacketTooLarge = errors.New("udp: frame does not fit in one datagram")
	ErrBadPacket      = errors.New("udp: malformed frame packet")
)

// EncodeFrame appends the packet for f to dst.
func EncodeFrame(dst []byte, f frame.Frame) ([]byte, error) {
	if f.Width < 0 || f.Height < 0 || f.Width > 0xFFFF || f.Height > 0xFFFF {
		return dst, fmt.Errorf("%w: %dx%d", ErrPacketTooLarge, f.Width, f.Height)
	}
	if size := HeaderSize + len(f.Pixels)*3; size > MaxPacketSize {
		return dst, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, size)
	}

	var ts int64
	if !f.Time.IsZero() {
		ts = f.Time.UnixNano()
	}

	dst = append(dst, Magic...)
	dst = binary.BigEndian.AppendUint32(dst, uint32(f.Seq))
	dst = binary.BigEndian.AppendUint64(dst, uint64(ts))
	dst = binary.BigEndian.AppendUint16(dst, uint16(f.Width))
	dst = binary.BigEndian.AppendUint16(dst, uint16(f.Height))
	return f.AppendRGB(dst), nil
}

// DecodeFrame parses a packet produced by EncodeFrame.
func DecodeFrame(packet []byte) (frame.Frame, error) {
	if len(packet) < HeaderSize || string(packet[:4]) != Magic {
		return frame.Frame{}, ErrBadPacket
	}

	seq := binary.BigEndian.Uint32(packet[4:8])
	ts := int64(binary.BigEndian.Uint64(packet[8:16]))
	w := int(binary.BigEndian.Uint16(packet[16:18]))
	h := int(binary.BigEndian.Uint16(packet[18:20]))

	payload := packet[HeaderSize:]
	if len(payload) != w*h*3 {
		return frame.Frame{}, fmt.Errorf("%w: payload %d bytes for %dx%d", ErrBadPacket, len(payload), w, h)
	}

	f := frame.Frame{
		Seq:    uint64(seq),
		Width:  w,
		Height: h,
		Pixels: make([]frame.Color, w*h),
	}
	if ts != 0 {
		f.Time = time.Unix(0, ts)
	}
	for i := range f.Pixels {
		f.Pixels[i] = frame.Color{R: payload[i*3], G: payload[i*3+1], B: payload[i*3+2]}
	}
	return f, nil
}

// Publisher encodes each committed frame into one datagram.
type Publisher struct {
	sender *Sender
	packet []byte // Reused between sends; only the render goroutine calls Send.
	sent   uint64
}

// NewPublisher wraps sender. The publisher owns the sender from here on.
func NewPublisher(sender *Sender) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	log.Infof("UDPPublisher: Initializing")
	return &Publisher{sender: sender}, nil
}

// Send encodes and transmits f.
func (p *Publisher) Send(f frame.Frame) error {
	packet, err := EncodeFrame(p.packet[:0], f)
	if err != nil {
		return err
	}
	p.packet = packet

	if err := p.sender.Send(packet); err != nil {
		return err
	}
	p.sent++
	log.Debugf("UDPPublisher: Sent frame %d (%d bytes)", f.Seq, len(packet))
	return nil
}

// Close closes the underlying sender.
func (p *Publisher) Close() error {
	log.Debugf("UDPPublisher: Close called after %d packets", p.sent)
	return p.sender.Close()
}

var _ transport.Sink = (*Publisher)(nil)
