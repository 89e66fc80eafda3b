package channel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessenger_Dispatch(t *testing.T) {
	ctx := context.Background()
	m := NewMessenger(nil)
	ch := New("device_id_channel")
	ch.Handle("getDeviceId", func(context.Context, MethodCall) (any, error) {
		return "abc123ef456", nil
	})
	m.Register(ch)

	t.Run("registered channel", func(t *testing.T) {
		reply, err := m.Dispatch(ctx, "device_id_channel", []byte(`{"method":"getDeviceId"}`))
		require.NoError(t, err)
		require.JSONEq(t, `["abc123ef456"]`, string(reply))
	})

	t.Run("unknown method replies empty", func(t *testing.T) {
		reply, err := m.Dispatch(ctx, "device_id_channel", []byte(`{"method":"getBatteryLevel"}`))
		require.NoError(t, err)
		require.Empty(t, reply)
	})

	t.Run("unknown channel replies nil", func(t *testing.T) {
		reply, err := m.Dispatch(ctx, "battery", []byte(`{"method":"getDeviceId"}`))
		require.NoError(t, err)
		require.Nil(t, reply)
	})

	t.Run("bad payload", func(t *testing.T) {
		_, err := m.Dispatch(ctx, "device_id_channel", []byte(`nope`))
		require.ErrorIs(t, err, ErrInvalidCall)
	})

	t.Run("invoke by name", func(t *testing.T) {
		require.Equal(t, Success("abc123ef456"), m.Invoke(ctx, "device_id_channel", MethodCall{Method: "getDeviceId"}))
		require.Equal(t, NotImplemented(), m.Invoke(ctx, "missing", MethodCall{Method: "getDeviceId"}))
	})

	require.Equal(t, []string{"device_id_channel"}, m.Names())
}
