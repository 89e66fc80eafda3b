package config

import (
	"fmt"
	"reflect"
	"sync"
)

type ConfigChangeType string

const (
	LogLevelChanged      ConfigChangeType = "log_level"
	IdentityChanged      ConfigChangeType = "identity"
	ProbeIntervalChanged ConfigChangeType = "health_probe_interval"
	RestartRequired      ConfigChangeType = "restart_required"
)

type ConfigChange struct {
	Type     ConfigChangeType
	OldValue interface{}
	NewValue interface{}
}

type ConfigChangeCallback func(change ConfigChange) error

type ConfigManager struct {
	config     *Config
	configPath string
	mu         sync.RWMutex
}

func NewConfigManager(configPath string, config *Config) *ConfigManager {
	return &ConfigManager{
		config:     config,
		configPath: configPath,
	}
}

// InitConfigManager loads and validates the config at configPath. A missing file
// yields the defaults plus environment overrides.
func InitConfigManager(configPath string) (*ConfigManager, []string, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	warnings, err := ValidateAndEnforceDefaults(cfg)
	if err != nil {
		return nil, warnings, fmt.Errorf("invalid config: %w", err)
	}

	return NewConfigManager(configPath, cfg), warnings, nil
}

func (cm *ConfigManager) With(mutators ...func(*Config)) *ConfigManager {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, mutate := range mutators {
		mutate(cm.config)
	}
	return cm
}

// ReloadConfig re-reads the config from disk. The running config is only replaced
// when the new one is valid.
func (cm *ConfigManager) ReloadConfig() ([]ConfigChange, []string, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	newConfig, err := Load(cm.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config from disk: %w", err)
	}

	warnings, err := ValidateAndEnforceDefaults(newConfig)
	if err != nil {
		return nil, warnings, fmt.Errorf("failed to validate reloaded config: %w", err)
	}

	changes := detectChanges(cm.config, newConfig)
	cm.config = newConfig

	return changes, warnings, nil
}

func detectChanges(oldConfig, newConfig *Config) []ConfigChange {
	var changes []ConfigChange

	if oldConfig.LogLevel != newConfig.LogLevel {
		changes = append(changes, ConfigChange{
			Type:     LogLevelChanged,
			OldValue: oldConfig.LogLevel,
			NewValue: newConfig.LogLevel,
		})
	}

	if !reflect.DeepEqual(oldConfig.Identity, newConfig.Identity) {
		changes = append(changes, ConfigChange{
			Type:     IdentityChanged,
			OldValue: oldConfig.Identity.Source,
			NewValue: newConfig.Identity.Source,
		})
	}

	if oldConfig.HealthProbeInterval != newConfig.HealthProbeInterval {
		changes = append(changes, ConfigChange{
			Type:     ProbeIntervalChanged,
			OldValue: oldConfig.HealthProbeInterval,
			NewValue: newConfig.HealthProbeInterval,
		})
	}

	if oldConfig.ListenAddr != newConfig.ListenAddr ||
		oldConfig.APIPrefix != newConfig.APIPrefix ||
		oldConfig.ChannelName != newConfig.ChannelName ||
		oldConfig.JSONLogging != newConfig.JSONLogging ||
		oldConfig.AuditLogPath != newConfig.AuditLogPath ||
		oldConfig.TLS != newConfig.TLS {
		changes = append(changes, ConfigChange{Type: RestartRequired})
	}

	return changes
}
