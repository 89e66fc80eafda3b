package config

import (
	"github.com/dekho-agent/device-bridge/internal/identity"
)

// Default config file path, used if the user does not provide one.
const DefaultConfigPath string = "config.toml"

// Environment variables override file values: DEVICE_BRIDGE_LOG_LEVEL,
// DEVICE_BRIDGE_IDENTITY_SOURCE and so on.
const EnvPrefix string = "DEVICE_BRIDGE"

const (
	DefaultLogLevel            = "info"
	DefaultListenAddr          = ":9090"
	DefaultAPIPrefix           = "/api/v1"
	DefaultChannelName         = "device_id_channel"
	DefaultHealthProbeInterval = "@every 00h00m30s"
	DefaultIdentitySource      = identity.SourceMachineID
	DefaultADBHost             = "localhost"
	DefaultADBPort             = identity.DefaultADBPort
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"fatal": true,
	"panic": true,
}
