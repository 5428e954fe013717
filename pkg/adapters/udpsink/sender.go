// Package udpsink sends keypoint records to a UDP peer.
package udpsink

import (
	"fmt"
	"net"

	"github.com/user/posestream/pkg/ports"
)

// MaxDatagram is the largest payload a single IPv4 UDP datagram carries.
const MaxDatagram = 65507

// Sender implements ports.DatagramSender over a connected UDP socket.
type Sender struct {
	conn *net.UDPConn
}

// Dial resolves addr (host:port) and connects a UDP socket to it.
func Dial(addr string) (*Sender, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Sender{conn: conn}, nil
}

// Send transmits data as one datagram.
func (s *Sender) Send(data []byte) error {
	if len(data) > MaxDatagram {
		return fmt.Errorf("datagram of %d bytes exceeds %d", len(data), MaxDatagram)
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("send datagram: %w", err)
	}
	return nil
}

// Close closes the socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}

var _ ports.DatagramSender = (*Sender)(nil)
