package config

import (
	"github.com/dekho-agent/device-bridge/internal/identity"
	servertls "github.com/dekho-agent/device-bridge/internal/tls"
)

// Threadsafe getter functions to fetch config data.

func (cm *ConfigManager) ConfigPath() string {
	return cm.configPath
}

func (cm *ConfigManager) GetLogLevel() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.LogLevel
}

func (cm *ConfigManager) IsJSONLog() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.JSONLogging
}

func (cm *ConfigManager) GetAuditLogPath() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.AuditLogPath
}

func (cm *ConfigManager) GetListenAddr() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.ListenAddr
}

func (cm *ConfigManager) GetAPIPrefix() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.APIPrefix
}

func (cm *ConfigManager) GetChannelName() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.ChannelName
}

func (cm *ConfigManager) GetHealthProbeInterval() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.HealthProbeInterval
}

func (cm *ConfigManager) GetIdentitySource() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.Identity.Source
}

func (cm *ConfigManager) GetIdentityConfig() identity.Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.IdentityReaderConfig()
}

func (cm *ConfigManager) GetTLSConfig() servertls.Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.ServerTLSConfig()
}
