package hotreload

import (
	"context"
	"fmt"
	"sync"

	"github.com/dekho-agent/device-bridge/internal/bridge"
	"github.com/dekho-agent/device-bridge/internal/identity"
	"github.com/dekho-agent/device-bridge/internal/logger"
	"github.com/dekho-agent/device-bridge/internal/scheduler"
	"github.com/dekho-agent/device-bridge/pkg/config"
	"github.com/rs/zerolog"
)

// HotReloadManager applies config file changes to the running bridge.
type HotReloadManager struct {
	cm              *config.ConfigManager
	log             *zerolog.Logger
	ctx             context.Context
	plugin          *bridge.DeviceIDPlugin
	probeScheduler  *scheduler.Scheduler
	newIdentity     func(identity.Config) (identity.DeviceIdentity, error)
	changeCallbacks map[config.ConfigChangeType][]config.ConfigChangeCallback
	callbackMu      sync.RWMutex
}

func NewHotReloadManager(
	ctx context.Context,
	cm *config.ConfigManager,
	log *zerolog.Logger,
	plugin *bridge.DeviceIDPlugin,
	probeScheduler *scheduler.Scheduler,
) *HotReloadManager {
	manager := &HotReloadManager{
		cm:              cm,
		log:             log,
		ctx:             ctx,
		plugin:          plugin,
		probeScheduler:  probeScheduler,
		newIdentity:     identity.New,
		changeCallbacks: make(map[config.ConfigChangeType][]config.ConfigChangeCallback),
	}

	manager.registerCallbacks()

	return manager
}

func (hrm *HotReloadManager) registerCallbacks() {
	hrm.registerChangeCallback(config.LogLevelChanged, hrm.handleLogLevelChange)
	hrm.registerChangeCallback(config.IdentityChanged, hrm.handleIdentityChange)
	hrm.registerChangeCallback(config.ProbeIntervalChanged, hrm.handleProbeIntervalChange)
	hrm.registerChangeCallback(config.RestartRequired, hrm.handleRestartRequired)
}

func (hrm *HotReloadManager) registerChangeCallback(changeType config.ConfigChangeType, callback config.ConfigChangeCallback) {
	hrm.callbackMu.Lock()
	defer hrm.callbackMu.Unlock()

	hrm.changeCallbacks[changeType] = append(hrm.changeCallbacks[changeType], callback)
}

func (hrm *HotReloadManager) notifyChangeCallbacks(change config.ConfigChange) []error {
	hrm.callbackMu.RLock()
	defer hrm.callbackMu.RUnlock()

	var errs []error
	for _, callback := range hrm.changeCallbacks[change.Type] {
		if err := callback(change); err != nil {
			errs = append(errs, err)
			continue
		}
		hrm.log.Info().Str("change_type", string(change.Type)).Msg("Configuration change processed")
	}
	return errs
}

func (hrm *HotReloadManager) handleLogLevelChange(change config.ConfigChange) error {
	newLogLevel, ok := change.NewValue.(string)
	if !ok {
		return fmt.Errorf("invalid log level type: %T", change.NewValue)
	}
	level := logger.SetLevel(newLogLevel)
	hrm.log.Info().Str("new_level", level.String()).Msg("Log level updated successfully")
	return nil
}

func (hrm *HotReloadManager) handleIdentityChange(change config.ConfigChange) error {
	reader, err := hrm.newIdentity(hrm.cm.GetIdentityConfig())
	if err != nil {
		return fmt.Errorf("unable to build identity reader: %w", err)
	}
	hrm.plugin.SetReader(reader)
	hrm.log.Info().
		Interface("old_source", change.OldValue).
		Str("new_source", reader.Source()).
		Msg("Identity source updated")
	return nil
}

func (hrm *HotReloadManager) handleProbeIntervalChange(change config.ConfigChange) error {
	if hrm.probeScheduler == nil {
		return nil
	}
	if err := hrm.probeScheduler.ResetSchedule(hrm.ctx, hrm.cm.GetHealthProbeInterval()); err != nil {
		return fmt.Errorf("unable to reschedule identity probe: %w", err)
	}
	return nil
}

func (hrm *HotReloadManager) handleRestartRequired(config.ConfigChange) error {
	hrm.log.Warn().Msg("Listener, channel or logging output settings changed; restart to apply them")
	return nil
}

// ProcessConfigChanges runs the callbacks registered for each change.
func (hrm *HotReloadManager) ProcessConfigChanges(changes []config.ConfigChange) error {
	hrm.log.Info().Int("change_count", len(changes)).Msg("Processing configuration changes")

	var errs []error
	for _, change := range changes {
		hrm.log.Debug().
			Str("change_type", string(change.Type)).
			Interface("old_value", change.OldValue).
			Interface("new_value", change.NewValue).
			Msg("Processing configuration change")

		errs = append(errs, hrm.notifyChangeCallbacks(change)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors occurred while processing configuration changes: %v", errs)
	}
	return nil
}

// Run reloads the config each time events fires until ctx is done.
func (hrm *HotReloadManager) Run(ctx context.Context, events <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-events:
			changes, warnings, err := hrm.cm.ReloadConfig()
			for _, w := range warnings {
				hrm.log.Warn().Msg(w)
			}
			if err != nil {
				hrm.log.Error().Err(err).Msg("Failed to reload config, keeping previous configuration")
				continue
			}
			if len(changes) == 0 {
				continue
			}
			if err := hrm.ProcessConfigChanges(changes); err != nil {
				hrm.log.Error().Err(err).Msg("Failed to apply configuration changes")
			}
		}
	}
}
