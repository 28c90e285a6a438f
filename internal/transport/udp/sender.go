// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"fmt"
	"lightbox/internal/log"
	"net"
	"sync"
)

// ErrSenderClosed is returned by Send after Close.
var ErrSenderClosed = errors.New("udp: sender is closed")

// Sender writes datagrams to a single target address.
type Sender struct {
	conn   *net.UDPConn
	mu     sync.Mutex // Protects conn during Close
	closed bool
}

// NewSender creates a Sender targeting the "host:port" address.
func NewSender(targetAddress string) (*Sender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	log.Infof("UDP Sender: Connection established to %s", conn.RemoteAddr())
	return &Sender{conn: conn}, nil
}

// Send transmits data as one datagram. It is safe for concurrent use.
func (s *Sender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSenderClosed
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	return nil
}

// Close closes the underlying connection. Repeated calls are no-ops.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	log.Infof("UDP Sender: Closing connection to %s", s.conn.RemoteAddr())
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}

var _ interface{ Close() error } = (*Sender)(nil)
