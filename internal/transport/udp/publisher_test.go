// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"errors"
	"lightbox/internal/frame"
	"net"
	"testing"
	"time"
)

func testFrame() frame.Frame {
	return frame.Frame{
		Seq:    7,
		Time:   time.Unix(0, 1_700_000_000_123_456_789),
		Width:  2,
		Height: 1,
		Pixels: []frame.Color{{R: 255}, {R: 1, G: 2, B: 3}},
	}
}

func TestEncodeFrameLayout(t *testing.T) {
	packet, err := EncodeFrame(nil, testFrame())
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	want := []byte{
		'L', 'B', 'X', '1',
		0, 0, 0, 7,
		0x17, 0x97, 0x9c, 0xfe, 0x3d, 0x85, 0xcd, 0x15,
		0, 2,
		0, 1,
		255, 0, 0, 1, 2, 3,
	}
	if !bytes.Equal(packet, want) {
		t.Errorf("packet = % x\nwant     % x", packet, want)
	}
}

func TestDecodeFrame(t *testing.T) {
	in := testFrame()
	packet, err := EncodeFrame(nil, in)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}

	got, err := DecodeFrame(packet)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.Seq != in.Seq || got.Width != in.Width || got.Height != in.Height || !got.Time.Equal(in.Time) {
		t.Errorf("header = %+v, want %+v", got, in)
	}
	for i := range in.Pixels {
		if got.Pixels[i] != in.Pixels[i] {
			t.Errorf("pixel %d = %v, want %v", i, got.Pixels[i], in.Pixels[i])
		}
	}

	bad := [][]byte{
		nil,
		[]byte("XXXX0000000000000000"),
		packet[:len(packet)-1],
	}
	for i, p := range bad {
		if _, err := DecodeFrame(p); !errors.Is(err, ErrBadPacket) {
			t.Errorf("case %d: err = %v, want ErrBadPacket", i, err)
		}
	}
}

func TestEncodeFrameTooLarge(t *testing.T) {
	f := frame.Frame{Width: 200, Height: 200, Pixels: make([]frame.Color, 200*200)}
	if _, err := EncodeFrame(nil, f); !errors.Is(err, ErrPacketTooLarge) {
		t.Errorf("err = %v, want ErrPacketTooLarge", err)
	}
}

func TestPublisherLoopback(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer conn.Close()

	sender, err := NewSender(conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	pub, err := NewPublisher(sender)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	if err := pub.Send(testFrame()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, MaxPacketSize)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	got, err := DecodeFrame(buf[:n])
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if got.Seq != 7 || got.Pixels[1] != (frame.Color{R: 1, G: 2, B: 3}) {
		t.Errorf("received %+v", got)
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := pub.Send(testFrame()); !errors.Is(err, ErrSenderClosed) {
		t.Errorf("Send after Close = %v, want ErrSenderClosed", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestNewSenderBadAddress(t *testing.T) {
	if _, err := NewSender("not-an-address"); err == nil {
		t.Error("expected error for address without port")
	}
	if _, err := NewPublisher(nil); err == nil {
		t.Error("expected error for nil sender")
	}
}

func BenchmarkEncodeFrame(b *testing.B) {
	f := frame.Frame{Seq: 1, Width: 16, Height: 16, Pixels: make([]frame.Color, 256)}
	buf := make([]byte, 0, HeaderSize+256*3)

	b.ReportAllocs()
	for b.Loop() {
		buf, _ = EncodeFrame(buf[:0], f)
	}
}
