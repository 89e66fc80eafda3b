package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dekho-agent/device-bridge/internal/channel"
	"github.com/dekho-agent/device-bridge/internal/identity"
	"github.com/dekho-agent/device-bridge/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type emptyError struct{}

func (emptyError) Error() string { return "" }

func newTestChannel(t *testing.T, reader identity.DeviceIdentity) (*channel.Channel, *DeviceIDPlugin, *Metrics) {
	t.Helper()
	metrics := NewMetrics(prometheus.NewRegistry())
	plugin := NewDeviceIDPlugin(reader, nil, metrics)
	return NewDeviceIDChannel("", plugin), plugin, metrics
}

func TestDeviceIDChannel_Outcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("platform read succeeds", func(t *testing.T) {
		m := identity.NewMockDeviceIdentity()
		m.SecureIDValue = "abc123ef456"
		ch, _, _ := newTestChannel(t, m)

		resp := ch.Invoke(ctx, channel.MethodCall{Method: MethodGetDeviceID})
		require.Equal(t, channel.Success("abc123ef456"), resp)
	})

	t.Run("platform read fails", func(t *testing.T) {
		m := identity.NewMockDeviceIdentity()
		m.SecureIDErr = errors.New("permission denied")
		ch, _, _ := newTestChannel(t, m)

		resp := ch.Invoke(ctx, channel.MethodCall{Method: MethodGetDeviceID})
		require.Equal(t, channel.Failure(&channel.Error{
			Code:    "DEVICE_ID_ERROR",
			Message: "Failed to get device ID",
			Details: "permission denied",
		}), resp)
	})

	t.Run("unregistered method", func(t *testing.T) {
		m := identity.NewMockDeviceIdentity()
		ch, _, _ := newTestChannel(t, m)

		resp := ch.Invoke(ctx, channel.MethodCall{Method: "getBatteryLevel"})
		require.Equal(t, channel.NotImplemented(), resp)
		require.Zero(t, m.Calls())
	})

	t.Run("platform read panics", func(t *testing.T) {
		m := identity.NewMockDeviceIdentity()
		m.SecureIDPanic = "provider crashed"
		ch, _, _ := newTestChannel(t, m)

		resp := ch.Invoke(ctx, channel.MethodCall{Method: MethodGetDeviceID})
		require.Equal(t, channel.StatusError, resp.Status)
		require.Equal(t, ErrorCodeDeviceID, resp.Error.Code)
		require.Equal(t, ErrorMessageDeviceID, resp.Error.Message)
		require.Contains(t, resp.Error.Details, "provider crashed")
		require.Equal(t, 1, m.Calls())
	})
}

func TestDeviceIDPlugin_GetDeviceID(t *testing.T) {
	ctx := context.Background()

	t.Run("fault without message has no details", func(t *testing.T) {
		m := identity.NewMockDeviceIdentity()
		m.SecureIDErr = emptyError{}
		_, plugin, _ := newTestChannel(t, m)

		_, err := plugin.GetDeviceID(ctx)
		var chErr *channel.Error
		require.ErrorAs(t, err, &chErr)
		require.Equal(t, ErrorCodeDeviceID, chErr.Code)
		require.Nil(t, chErr.Details)
	})

	t.Run("empty identifier is an error", func(t *testing.T) {
		m := identity.NewMockDeviceIdentity()
		m.SecureIDValue = ""
		_, plugin, _ := newTestChannel(t, m)

		_, err := plugin.GetDeviceID(ctx)
		var chErr *channel.Error
		require.ErrorAs(t, err, &chErr)
		require.Equal(t, identity.ErrEmptyIdentifier.Error(), chErr.Details)
	})

	t.Run("one read per call and stable value", func(t *testing.T) {
		m := identity.NewMockDeviceIdentity()
		_, plugin, _ := newTestChannel(t, m)

		id1, err := plugin.GetDeviceID(ctx)
		require.NoError(t, err)
		id2, err := plugin.GetDeviceID(ctx)
		require.NoError(t, err)
		require.Equal(t, id1, id2)
		require.Equal(t, 2, m.Calls())
	})

	t.Run("no retry after failure", func(t *testing.T) {
		m := identity.NewMockDeviceIdentity()
		m.SecureIDErr = errors.New("provider missing")
		_, plugin, _ := newTestChannel(t, m)

		_, err := plugin.GetDeviceID(ctx)
		require.Error(t, err)
		require.Equal(t, 1, m.Calls())
	})

	t.Run("reader swap", func(t *testing.T) {
		first := identity.NewMockDeviceIdentity()
		second := identity.NewMockDeviceIdentity()
		second.SecureIDValue = "second-id"
		_, plugin, _ := newTestChannel(t, first)

		plugin.SetReader(second)
		require.Same(t, second, plugin.Reader())

		id, err := plugin.GetDeviceID(ctx)
		require.NoError(t, err)
		require.Equal(t, "second-id", id)
		require.Zero(t, first.Calls())
	})
}

func TestDeviceIDPlugin_Metrics(t *testing.T) {
	ctx := context.Background()
	m := identity.NewMockDeviceIdentity()
	_, plugin, metrics := newTestChannel(t, m)

	_, err := plugin.GetDeviceID(ctx)
	require.NoError(t, err)
	m.SecureIDErr = errors.New("boom")
	_, err = plugin.GetDeviceID(ctx)
	require.Error(t, err)

	require.Equal(t, 2, testutil.CollectAndCount(metrics.readDuration))

	metrics.ObserveInvocation(ChannelName, MethodGetDeviceID, channel.StatusSuccess)
	metrics.ObserveInvocation(ChannelName, "getBatteryLevel", channel.StatusNotImplemented)
	metrics.ObserveInvocation(ChannelName, "getWifiName", channel.StatusNotImplemented)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.invocations.WithLabelValues(ChannelName, MethodGetDeviceID, "success")))
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.invocations.WithLabelValues(ChannelName, "unregistered", "not_implemented")))

	var nilMetrics *Metrics
	require.NotPanics(t, func() {
		nilMetrics.ObserveInvocation(ChannelName, MethodGetDeviceID, channel.StatusSuccess)
	})
}

func TestDeviceIDPlugin_AuditNeverContainsIdentifier(t *testing.T) {
	var buf bytes.Buffer
	logger.InitAuditLogger(&buf)
	t.Cleanup(func() { logger.InitAuditLogger(nil) })

	m := identity.NewMockDeviceIdentity()
	m.SecureIDValue = "secret-device-id"
	_, plugin, _ := newTestChannel(t, m)

	ctx := logger.WithRequest(context.Background(), logger.RequestInfo{ID: "req-42", RemoteAddr: "10.0.0.1:5555"})
	_, err := plugin.GetDeviceID(ctx)
	require.NoError(t, err)

	require.NotContains(t, buf.String(), "secret-device-id")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "req-42", entry["actor"])
	require.Equal(t, "success", entry["outcome"])
	require.Equal(t, "mock", entry["source"])
}
