package config

import (
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/dekho-agent/device-bridge/internal/identity"
	"github.com/robfig/cron/v3"
)

// ValidateAndEnforceDefaults checks cfg in place. Recoverable problems are reset to their
// defaults and reported as warnings; anything else is an error.
func ValidateAndEnforceDefaults(cfg *Config) ([]string, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	var warnings []string

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	} else if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		warnings = append(warnings, fmt.Sprintf(
			"invalid log_level '%s' provided. Valid options are: info, debug, panic, error, warn, fatal. Defaulting to 'info'.",
			cfg.LogLevel,
		))
		cfg.LogLevel = DefaultLogLevel
	} else {
		cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	}

	if !isValidCronExpression(cfg.HealthProbeInterval) {
		warnings = append(warnings, fmt.Sprintf("invalid schedule provided for health_probe_interval, using default schedule %s", DefaultHealthProbeInterval))
		cfg.HealthProbeInterval = DefaultHealthProbeInterval
	}

	if strings.TrimSpace(cfg.ChannelName) == "" {
		return warnings, fmt.Errorf("channel_name cannot be empty")
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if _, port, err := net.SplitHostPort(cfg.ListenAddr); err != nil {
		return warnings, fmt.Errorf("invalid listen_addr %q: %w", cfg.ListenAddr, err)
	} else if !isValidPort(port) {
		return warnings, fmt.Errorf("invalid listen_addr %q: bad port", cfg.ListenAddr)
	}

	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	if cfg.APIPrefix != "" && !strings.HasPrefix(cfg.APIPrefix, "/") {
		return warnings, fmt.Errorf("api_prefix must start with '/': %q", cfg.APIPrefix)
	}

	if (cfg.TLS.CertFile == "") != (cfg.TLS.KeyFile == "") {
		return warnings, fmt.Errorf("tls.cert_file and tls.key_file must be set together")
	}
	if cfg.TLS.ClientCAFile != "" && cfg.TLS.CertFile == "" {
		return warnings, fmt.Errorf("tls.client_ca_file requires tls.cert_file and tls.key_file")
	}

	if cfg.Identity.Source == "" {
		cfg.Identity.Source = DefaultIdentitySource
	}
	if !slices.Contains(identity.Sources(), cfg.Identity.Source) {
		return warnings, fmt.Errorf("%w: %q (valid: %s)", identity.ErrUnknownSource, cfg.Identity.Source, strings.Join(identity.Sources(), ", "))
	}

	if cfg.Identity.Source == identity.SourceAndroid {
		if cfg.Identity.Android.ADBHost == "" {
			cfg.Identity.Android.ADBHost = DefaultADBHost
		}
		if cfg.Identity.Android.ADBPort == 0 {
			cfg.Identity.Android.ADBPort = DefaultADBPort
		}
		if !isValidPort(strconv.Itoa(cfg.Identity.Android.ADBPort)) {
			return warnings, fmt.Errorf("invalid identity.android.adb_port %d", cfg.Identity.Android.ADBPort)
		}
	}

	if cfg.Identity.Source != identity.SourceMachineID && cfg.Identity.AppID != "" {
		warnings = append(warnings, fmt.Sprintf("identity.app_id is only used by the %s source, ignoring it", identity.SourceMachineID))
	}

	return warnings, nil
}

func isValidCronExpression(cronExpression string) bool {
	if _, err := cron.ParseStandard(cronExpression); err != nil {
		return false
	}
	return true
}

func isValidPort(port string) bool {
	p, err := strconv.Atoi(port)
	return err == nil && p >= 0 && p <= 65535
}
