// Package bridge wires platform plugins onto method channels.
package bridge

import (
	"github.com/dekho-agent/device-bridge/internal/channel"
)

// NewDeviceIDChannel returns a channel named name with the device id plugin attached.
func NewDeviceIDChannel(name string, plugin *DeviceIDPlugin) *channel.Channel {
	if name == "" {
		name = ChannelName
	}
	ch := channel.New(name)
	plugin.Register(ch)
	return ch
}
