package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/dekho-agent/device-bridge/internal/channel"
	"github.com/dekho-agent/device-bridge/internal/identity"
	"github.com/dekho-agent/device-bridge/internal/logger"
	"github.com/rs/zerolog"
)

const (
	ChannelName          = "device_id_channel"
	MethodGetDeviceID    = "getDeviceId"
	ErrorCodeDeviceID    = "DEVICE_ID_ERROR"
	ErrorMessageDeviceID = "Failed to get device ID"
)

// DeviceIDPlugin answers getDeviceId by reading the host's secure identifier.
// Every call performs exactly one read; nothing is cached and failures are never
// replaced with a default value.
type DeviceIDPlugin struct {
	mu      sync.RWMutex
	reader  identity.DeviceIdentity
	log     *zerolog.Logger
	metrics *Metrics
}

func NewDeviceIDPlugin(reader identity.DeviceIdentity, log *zerolog.Logger, metrics *Metrics) *DeviceIDPlugin {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &DeviceIDPlugin{
		reader:  reader,
		log:     log,
		metrics: metrics,
	}
}

// Register attaches the plugin's methods to ch.
func (p *DeviceIDPlugin) Register(ch *channel.Channel) {
	ch.Handle(MethodGetDeviceID, p.handleGetDeviceID)
}

// Reader returns the identity reader in use.
func (p *DeviceIDPlugin) Reader() identity.DeviceIdentity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reader
}

// SetReader swaps the identity reader. Calls already in flight finish on the old one.
func (p *DeviceIDPlugin) SetReader(reader identity.DeviceIdentity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reader = reader
}

// GetDeviceID reads the identifier once. On failure it returns a *channel.Error with
// code DEVICE_ID_ERROR whose details carry the underlying fault's message.
func (p *DeviceIDPlugin) GetDeviceID(ctx context.Context) (string, error) {
	reader := p.Reader()
	req := logger.RequestFromContext(ctx)

	start := time.Now()
	id, err := identity.Read(ctx, reader)
	p.metrics.observeRead(reader.Source(), time.Since(start), err)

	if err != nil {
		p.log.Warn().
			Err(err).
			Str("source", reader.Source()).
			Str("request_id", req.ID).
			Msg("Failed to read device identifier")
		logger.LogAuditEvent(logger.AuditDeviceIDRead, req.ID, req.RemoteAddr, map[string]interface{}{
			"source":  reader.Source(),
			"outcome": "error",
			"error":   err.Error(),
		})
		return "", channel.NewError(ErrorCodeDeviceID, ErrorMessageDeviceID, faultDetails(err))
	}

	p.log.Debug().
		Str("source", reader.Source()).
		Str("request_id", req.ID).
		Msg("Device identifier read")
	logger.LogAuditEvent(logger.AuditDeviceIDRead, req.ID, req.RemoteAddr, map[string]interface{}{
		"source":  reader.Source(),
		"outcome": "success",
	})
	return id, nil
}

func (p *DeviceIDPlugin) handleGetDeviceID(ctx context.Context, _ channel.MethodCall) (any, error) {
	id, err := p.GetDeviceID(ctx)
	if err != nil {
		return nil, err
	}
	return id, nil
}

// faultDetails is the fault's message, or nil when it has none.
func faultDetails(err error) any {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return nil
}
