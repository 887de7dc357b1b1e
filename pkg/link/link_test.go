package link

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/itohio/badgelab/pkg/access"
	"github.com/itohio/badgelab/pkg/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSendAndReceive(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := Listen(ctx, "127.0.0.1:0", 4)
	require.NoError(t, err)
	defer l.Close()

	b, err := NewBroadcaster(l.Addr().String())
	require.NoError(t, err)
	defer b.Close()

	want := message.Frame{UID: "0496DA753E6180", Level: access.Granted, HasLevel: true}
	require.NoError(t, b.Send(ctx, want))

	select {
	case p := <-l.Packets():
		assert.Equal(t, want, p.Frame)
		assert.NotEmpty(t, p.From)
		assert.False(t, p.Received.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no packet received")
	}
}

func TestListener_DropsInvalidFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := Listen(ctx, "127.0.0.1:0", 4)
	require.NoError(t, err)
	defer l.Close()

	conn, err := net.Dial("udp4", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(make([]byte, message.MaxSize+5))
	require.NoError(t, err)
	_, err = conn.Write([]byte("5da85a06"))
	require.NoError(t, err)

	select {
	case p := <-l.Packets():
		assert.Equal(t, "5DA85A06", p.Frame.UID)
	case <-time.After(2 * time.Second):
		t.Fatal("no packet received")
	}
}

func TestListener_ContextCancelClosesChannel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	l, err := Listen(ctx, "127.0.0.1:0", 4)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-l.Packets():
		assert.False(t, ok, "channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("packets channel did not close")
	}

	assert.NoError(t, l.Close(), "second close should be a no-op")
}

func TestBroadcaster_CancelledContext(t *testing.T) {
	b, err := NewBroadcaster("127.0.0.1:9")
	require.NoError(t, err)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Send(ctx, message.Frame{UID: "AA"}), context.Canceled)
}

func TestNewBroadcaster_BadAddress(t *testing.T) {
	_, err := NewBroadcaster("not-an-address")
	assert.Error(t, err)
}
