package realtime_test

import (
	"testing"
	"time"

	"github.com/igniter-hq/igniter-go/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, conn *realtime.Connection) realtime.Frame {
	t.Helper()
	select {
	case f := <-conn.Frames():
		return f
	case <-time.After(time.Second):
		t.Fatal("expected a frame")
		return realtime.Frame{}
	}
}

func TestBusDeliversRevalidateToMatchingScope(t *testing.T) {
	bus := realtime.NewBus(realtime.Options{QueueSize: 4, Heartbeat: time.Hour})
	inScope := bus.Connect([]string{"tenant:acme"}, nil, "")
	defer inScope.Close()
	outOfScope := bus.Connect([]string{"tenant:other"}, nil, "")
	defer outOfScope.Close()

	bus.PublishRevalidate([]string{"notes:list"}, []string{"tenant:acme"})

	frame := drain(t, inScope)
	assert.Equal(t, "revalidate", frame.Event)

	select {
	case <-outOfScope.Frames():
		t.Fatal("connection outside the published scope should not receive a frame")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusDeliversRevalidateToEveryoneWhenScopeEmpty(t *testing.T) {
	bus := realtime.NewBus(realtime.Options{QueueSize: 4, Heartbeat: time.Hour})
	a := bus.Connect([]string{"tenant:acme"}, nil, "")
	defer a.Close()
	b := bus.Connect([]string{"tenant:other"}, nil, "")
	defer b.Close()

	bus.PublishRevalidate([]string{"notes:list"}, nil)

	assert.Equal(t, "revalidate", drain(t, a).Event)
	assert.Equal(t, "revalidate", drain(t, b).Event)
}

func TestBusPublishToChannelFansOutToSubscribers(t *testing.T) {
	bus := realtime.NewBus(realtime.Options{QueueSize: 4, Heartbeat: time.Hour})
	subscribed := bus.Connect(nil, []string{"notes"}, "")
	defer subscribed.Close()
	unsubscribed := bus.Connect(nil, []string{"other"}, "")
	defer unsubscribed.Close()

	bus.PublishToChannel("notes", realtime.Frame{Event: "ready"})

	assert.Equal(t, "ready", drain(t, subscribed).Event)
	select {
	case <-unsubscribed.Frames():
		t.Fatal("connection not subscribed to the channel should not receive the frame")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusConnectWithLastEventIDEnqueuesReconnectFrame(t *testing.T) {
	bus := realtime.NewBus(realtime.Options{QueueSize: 4, Heartbeat: time.Hour})
	conn := bus.Connect(nil, nil, "42")
	defer conn.Close()

	frame := drain(t, conn)
	assert.Equal(t, "reconnect", frame.Event)
}

func TestConnectionCloseRunsOnCloseCallbacksExactlyOnce(t *testing.T) {
	bus := realtime.NewBus(realtime.Options{QueueSize: 4, Heartbeat: time.Hour})
	conn := bus.Connect(nil, nil, "")

	calls := 0
	conn.OnClose(func() { calls++ })

	conn.Close()
	conn.Close()
	assert.Equal(t, 1, calls)

	require.Equal(t, 0, bus.ConnectionCount())
}

func TestConnectionDropOldestOverflowPolicy(t *testing.T) {
	bus := realtime.NewBus(realtime.Options{QueueSize: 1, OverflowPolicy: realtime.DropOldest, Heartbeat: time.Hour})
	conn := bus.Connect(nil, nil, "")
	defer conn.Close()

	conn.Enqueue(realtime.Frame{Event: "first"})
	conn.Enqueue(realtime.Frame{Event: "second"})

	frame := drain(t, conn)
	assert.Equal(t, "second", frame.Event)
	assert.Equal(t, int64(1), conn.DroppedFrames())
}

func TestBusShutdownClosesAllConnections(t *testing.T) {
	bus := realtime.NewBus(realtime.Options{QueueSize: 4, Heartbeat: time.Hour})
	a := bus.Connect(nil, nil, "")
	b := bus.Connect(nil, nil, "")

	bus.Shutdown()

	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("expected connection a to be closed on shutdown")
	}
	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("expected connection b to be closed on shutdown")
	}
}
