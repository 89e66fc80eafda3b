package channel

import (
	"context"
	"sort"
	"sync"
)

// Messenger routes encoded messages to channels by name.
type Messenger struct {
	codec    MethodCodec
	mu       sync.RWMutex
	channels map[string]*Channel
}

// NewMessenger returns a Messenger using codec. A nil codec selects JSONMethodCodec.
func NewMessenger(codec MethodCodec) *Messenger {
	if codec == nil {
		codec = JSONMethodCodec{}
	}
	return &Messenger{
		codec:    codec,
		channels: make(map[string]*Channel),
	}
}

func (m *Messenger) Codec() MethodCodec {
	return m.codec
}

// Register attaches ch under its name, replacing a channel of the same name.
func (m *Messenger) Register(ch *Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ch.Name()] = ch
}

// Channel returns the channel registered under name.
func (m *Messenger) Channel(name string) (*Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[name]
	return ch, ok
}

// Names returns the registered channel names in sorted order.
func (m *Messenger) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Invoke calls a method on a named channel. An unknown channel yields NotImplemented.
func (m *Messenger) Invoke(ctx context.Context, name string, call MethodCall) Response {
	ch, ok := m.Channel(name)
	if !ok {
		return NotImplemented()
	}
	return ch.Invoke(ctx, call)
}

// Dispatch decodes payload as a method call for the named channel, invokes it and
// encodes the reply envelope. A nil reply means no channel is registered under name.
func (m *Messenger) Dispatch(ctx context.Context, name string, payload []byte) ([]byte, error) {
	ch, ok := m.Channel(name)
	if !ok {
		return nil, nil
	}
	call, err := m.codec.DecodeMethodCall(payload)
	if err != nil {
		return nil, err
	}
	return m.codec.EncodeEnvelope(ch.Invoke(ctx, call))
}
