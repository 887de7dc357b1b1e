// Package link carries UID frames between hosts over UDP broadcast, standing
// in for the ESP-NOW peer link the microcontrollers use.
package link

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/itohio/badgelab/pkg/message"
)

const (
	// DefaultPort is the UDP port used when none is configured.
	DefaultPort = 4210
	// DefaultBufferSize is the default size of the packets channel.
	DefaultBufferSize = 32
)

// Packet is a frame received from a peer.
type Packet struct {
	Frame    message.Frame
	From     string // Peer address (ip:port)
	Received time.Time
}

// Broadcaster sends frames to a broadcast (or unicast) UDP address.
type Broadcaster struct {
	conn *net.UDPConn
	addr *net.UDPAddr
}

// NewBroadcaster opens a UDP socket for sending to addr, e.g.
// "255.255.255.255:4210".
func NewBroadcaster(addr string) (*Broadcaster, error) {
	raddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open udp socket: %w", err)
	}
	return &Broadcaster{conn: conn, addr: raddr}, nil
}

// Send transmits one frame. The context deadline, if any, bounds the write.
func (b *Broadcaster) Send(ctx context.Context, f message.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set deadline: %w", err)
		}
	} else if err := b.conn.SetWriteDeadline(time.Time{}); err != nil {
		return fmt.Errorf("failed to clear deadline: %w", err)
	}

	if _, err := b.conn.WriteToUDP(message.Marshal(f), b.addr); err != nil {
		return fmt.Errorf("failed to send frame: %w", err)
	}
	return nil
}

// Close releases the socket.
func (b *Broadcaster) Close() error {
	return b.conn.Close()
}

// Listener receives frames on a UDP address and publishes them on a channel.
type Listener struct {
	conn    *net.UDPConn
	packets chan Packet
	done    chan struct{}
	once    sync.Once
}

// Listen binds addr (e.g. ":4210") and starts receiving. The listener stops
// when ctx is cancelled or Close is called; the packets channel is closed
// after the receive loop exits.
func Listen(ctx context.Context, addr string, bufSize int) (*Listener, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	laddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	l := &Listener{
		conn:    conn,
		packets: make(chan Packet, bufSize),
		done:    make(chan struct{}),
	}

	go l.receive()
	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-l.done:
		}
	}()

	return l, nil
}

// Addr returns the bound local address.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Packets returns the channel of received packets.
func (l *Listener) Packets() <-chan Packet {
	return l.packets
}

// Close stops the listener. It is safe to call more than once.
func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		err = l.conn.Close()
	})
	return err
}

func (l *Listener) receive() {
	defer close(l.done)
	defer close(l.packets)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in link receive: %v", r)
		}
	}()

	buf := make([]byte, 512)
	for {
		n, from, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Printf("Error reading from link: %v", err)
			}
			return
		}

		frame, err := message.Unmarshal(buf[:n])
		if err != nil {
			log.Printf("Dropping frame from %s: %v", from, err)
			continue
		}

		select {
		case l.packets <- Packet{Frame: frame, From: from.String(), Received: time.Now()}:
		default:
			log.Printf("Packets channel full, dropping frame from %s", from)
		}
	}
}
