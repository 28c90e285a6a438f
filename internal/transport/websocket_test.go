// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"errors"
	"lightbox/internal/frame"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketSinkBroadcast(t *testing.T) {
	sink, err := NewWebSocketSink("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketSink: %v", err)
	}
	defer sink.Close()

	url := "ws://" + sink.Addr().String() + FramesPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return sink.Clients() == 1 })

	f := frame.Frame{
		Seq:    3,
		Width:  2,
		Height: 1,
		Pixels: []frame.Color{{R: 10, G: 20, B: 30}, {B: 255}},
	}
	if err := sink.Send(f); err != nil {
		t.Fatalf("Send: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if raw["pixels"] != "ChQeAAD/" {
		t.Errorf("pixels = %v, want base64 of the RGB bytes", raw["pixels"])
	}

	var msg frameMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.Seq != 3 || msg.Width != 2 || msg.Height != 1 {
		t.Errorf("header = %+v", msg)
	}
	want := []byte{10, 20, 30, 0, 0, 255}
	if string(msg.Pixels) != string(want) {
		t.Errorf("pixels = %v, want %v", msg.Pixels, want)
	}
}

func TestWebSocketSinkClientDisconnect(t *testing.T) {
	sink, err := NewWebSocketSink("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketSink: %v", err)
	}
	defer sink.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+sink.Addr().String()+FramesPath, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	waitFor(t, func() bool { return sink.Clients() == 1 })

	conn.Close()
	waitFor(t, func() bool { return sink.Clients() == 0 })
}

func TestWebSocketSinkDropsWithoutBlocking(t *testing.T) {
	sink, err := NewWebSocketSink("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketSink: %v", err)
	}
	defer sink.Close()

	f := frame.Frame{Width: 1, Height: 1, Pixels: []frame.Color{{}}}
	done := make(chan struct{})
	go func() {
		for range 10 * broadcastQueue {
			sink.Send(f)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked")
	}
}

func TestWebSocketSinkClose(t *testing.T) {
	sink, err := NewWebSocketSink("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketSink: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+sink.Addr().String()+FramesPath, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return sink.Clients() == 1 })

	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if got := sink.Clients(); got != 0 {
		t.Errorf("Clients() = %d after Close", got)
	}
	if err := sink.Send(frame.Frame{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after Close = %v, want ErrClosed", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("client connection still open after Close")
	}
}

func TestLoggingSink(t *testing.T) {
	sink := NewLoggingSink()
	for i := range 3 {
		if err := sink.Send(frame.Frame{Seq: uint64(i + 1)}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if got := sink.Frames(); got != 3 {
		t.Errorf("Frames() = %d, want 3", got)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
