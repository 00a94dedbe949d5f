// Package realtime implements the Realtime Bus (spec §4.7): a
// multiplexer of Server-Sent Event connections over two logical message
// types — revalidation messages on the reserved "__revalidate__" channel,
// and custom stream frames on per-action channels.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/igniter-hq/igniter-go/internal/uid"
	"github.com/igniter-hq/igniter-go/logger"
	"github.com/igniter-hq/igniter-go/store"
)

// RevalidateChannel is the implicit channel every connected client
// listens on (spec §4.7 "Channels").
const RevalidateChannel = "__revalidate__"

// Options configures a Bus.
type Options struct {
	QueueSize      int
	OverflowPolicy OverflowPolicy
	Heartbeat      time.Duration
	// Store, if set, bridges revalidation messages across processes by
	// publishing to and subscribing from RevalidateChannel (spec §4.7,
	// §5 "Shared resources").
	Store  store.Store
	Logger logger.Logger
}

// Bus holds the connection table, channel index, and scope index
// described in spec §5 "Shared resources". All mutation happens through
// its exported methods, which are safe for concurrent use (the host
// server runs one goroutine per connection).
type Bus struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	channels    map[string]map[string]struct{} // channel -> connection ids

	opts              Options
	unsubscribeBridge func()
}

type bridgeMessage struct {
	Keys   []string `json:"keys"`
	Scopes []string `json:"scopes,omitempty"`
}

// NewBus constructs a Bus. If opts.Store is set, it subscribes to
// RevalidateChannel so revalidations published on any process are
// re-broadcast to this process's local connections.
func NewBus(opts Options) *Bus {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoop()
	}

	b := &Bus{
		connections: make(map[string]*Connection),
		channels:    make(map[string]map[string]struct{}),
		opts:        opts,
	}

	if opts.Store != nil {
		unsubscribe, err := opts.Store.Subscribe(context.Background(), RevalidateChannel, b.onBridgeMessage)
		if err != nil {
			opts.Logger.Warn("realtime: failed to subscribe to cross-process revalidation bridge", logger.Fields{"error": err.Error()})
		} else {
			b.unsubscribeBridge = unsubscribe
		}
	}

	return b
}

func (b *Bus) onBridgeMessage(payload string) {
	var msg bridgeMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return
	}
	b.deliverRevalidate(msg.Keys, msg.Scopes)
}

// Connect registers a new SSE connection with the given scope and
// channel subscriptions (spec §6.3). lastEventID is non-empty when the
// client is reconnecting; in that case the connection's first frame is a
// synthetic "reconnect" event (SPEC_FULL §12.3).
func (b *Bus) Connect(scopes, channels []string, lastEventID string) *Connection {
	id := uid.NewConnectionID()
	conn := newConnection(id, b, scopes, channels, b.opts.QueueSize, b.opts.OverflowPolicy)

	b.mu.Lock()
	b.connections[id] = conn
	for _, ch := range channels {
		set, ok := b.channels[ch]
		if !ok {
			set = make(map[string]struct{})
			b.channels[ch] = set
		}
		set[id] = struct{}{}
	}
	b.mu.Unlock()

	if lastEventID != "" {
		conn.enqueue(reconnectFrame())
	}

	go b.heartbeatLoop(conn)

	return conn
}

func (b *Bus) heartbeatLoop(conn *Connection) {
	ticker := time.NewTicker(b.opts.Heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-conn.Done():
			return
		case <-ticker.C:
			conn.enqueue(heartbeatFrame())
		}
	}
}

func (b *Bus) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.connections, id)
	for _, set := range b.channels {
		delete(set, id)
	}
}

// PublishRevalidate delivers a revalidation message to every connection
// whose scope set intersects scopes (or every connection, if scopes is
// empty), and — if a Store is configured — republishes it to
// RevalidateChannel so other processes' connections receive it too
// (spec §4.7 "Publish (revalidation)", §9 open question 1: best-effort,
// no durability guarantee across a dropped pub/sub message).
func (b *Bus) PublishRevalidate(keys []string, scopes []string) {
	if len(keys) == 0 {
		return
	}

	b.deliverRevalidate(keys, scopes)

	if b.opts.Store != nil {
		payload, err := json.Marshal(bridgeMessage{Keys: keys, Scopes: scopes})
		if err != nil {
			return
		}
		if err := b.opts.Store.Publish(context.Background(), RevalidateChannel, string(payload)); err != nil {
			b.opts.Logger.Warn("realtime: failed to publish cross-process revalidation", logger.Fields{"error": err.Error()})
		}
	}
}

func (b *Bus) deliverRevalidate(keys []string, scopes []string) {
	frame := revalidateFrame(keys)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, conn := range b.connections {
		if conn.matchesScopes(scopes) {
			conn.enqueue(frame)
		}
	}
}

// Send delivers frame to exactly one connection (spec §4.7 "Publish
// (stream frame)" — stream actions are 1:1 server→client).
func (b *Bus) Send(connID string, frame Frame) bool {
	b.mu.RLock()
	conn, ok := b.connections[connID]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	conn.enqueue(frame)
	return true
}

// PublishToChannel fans frame out to every connection subscribed to
// channel (used when a stream handler publishes via store.publish to a
// shared channel, spec §4.7).
func (b *Bus) PublishToChannel(channel string, frame Frame) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id := range b.channels[channel] {
		if conn, ok := b.connections[id]; ok {
			conn.enqueue(frame)
		}
	}
}

// ConnectionCount returns the number of currently registered connections.
func (b *Bus) ConnectionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.connections)
}

// Shutdown closes every registered connection, draining the bus (spec §5
// "Resource lifetimes").
func (b *Bus) Shutdown() {
	b.mu.RLock()
	conns := make([]*Connection, 0, len(b.connections))
	for _, c := range b.connections {
		conns = append(conns, c)
	}
	b.mu.RUnlock()

	for _, c := range conns {
		c.Close()
	}

	if b.unsubscribeBridge != nil {
		b.unsubscribeBridge()
	}
}
