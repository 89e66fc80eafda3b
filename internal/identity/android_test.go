package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeADBDevice struct {
	serial string
	out    string
	err    error
	cmds   [][]string
}

func (f *fakeADBDevice) Serial() string { return f.serial }

func (f *fakeADBDevice) RunShellCommand(cmd string, args ...string) (string, error) {
	f.cmds = append(f.cmds, append([]string{cmd}, args...))
	return f.out, f.err
}

func androidWith(serial string, devices ...adbDevice) *AndroidDeviceIdentity {
	return &AndroidDeviceIdentity{
		serial:  serial,
		devices: func() ([]adbDevice, error) { return devices, nil },
	}
}

func TestAndroidDeviceIdentity_GetSecureID(t *testing.T) {
	ctx := context.Background()

	t.Run("reads android_id from the only device", func(t *testing.T) {
		dev := &fakeADBDevice{serial: "emulator-5554", out: "abc123ef456\n"}
		id, err := androidWith("", dev).GetSecureID(ctx)
		require.NoError(t, err)
		require.Equal(t, "abc123ef456", id)
		require.Equal(t, [][]string{{"settings", "get", "secure", "android_id"}}, dev.cmds)
	})

	t.Run("selects device by serial", func(t *testing.T) {
		a := &fakeADBDevice{serial: "A", out: "id-a"}
		b := &fakeADBDevice{serial: "B", out: "id-b"}
		id, err := androidWith("B", a, b).GetSecureID(ctx)
		require.NoError(t, err)
		require.Equal(t, "id-b", id)
		require.Empty(t, a.cmds)
	})

	t.Run("unknown serial", func(t *testing.T) {
		_, err := androidWith("C", &fakeADBDevice{serial: "A"}).GetSecureID(ctx)
		require.ErrorIs(t, err, ErrNoDevice)
	})

	t.Run("no devices", func(t *testing.T) {
		_, err := androidWith("").GetSecureID(ctx)
		require.ErrorIs(t, err, ErrNoDevice)
	})

	t.Run("several devices without serial", func(t *testing.T) {
		_, err := androidWith("", &fakeADBDevice{serial: "A"}, &fakeADBDevice{serial: "B"}).GetSecureID(ctx)
		require.ErrorIs(t, err, ErrAmbiguousDevice)
	})

	t.Run("null setting reads as empty", func(t *testing.T) {
		d := androidWith("", &fakeADBDevice{serial: "A", out: "null\n"})
		_, err := Read(ctx, d)
		require.ErrorIs(t, err, ErrEmptyIdentifier)
	})

	t.Run("shell failure", func(t *testing.T) {
		d := androidWith("", &fakeADBDevice{serial: "A", err: errors.New("device offline")})
		_, err := d.GetSecureID(ctx)
		require.EqualError(t, err, "read android_id on A: device offline")
	})

	t.Run("adb server unreachable", func(t *testing.T) {
		d := &AndroidDeviceIdentity{devices: func() ([]adbDevice, error) {
			return nil, errors.New("connection refused")
		}}
		_, err := d.GetSecureID(ctx)
		require.EqualError(t, err, "connection refused")
	})
}

func TestNewAndroidDeviceIdentity_Defaults(t *testing.T) {
	d := NewAndroidDeviceIdentity("", 0, "")
	require.Equal(t, SourceAndroid, d.Source())
	require.NotNil(t, d.devices)
}
