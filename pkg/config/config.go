package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dekho-agent/device-bridge/internal/identity"
	servertls "github.com/dekho-agent/device-bridge/internal/tls"
	"github.com/spf13/viper"
)

type AndroidConfig struct {
	ADBHost string `mapstructure:"adb_host" toml:"adb_host" json:"adb_host"`
	ADBPort int    `mapstructure:"adb_port" toml:"adb_port" json:"adb_port"`
	Serial  string `mapstructure:"serial" toml:"serial,omitempty" json:"serial,omitempty"`
}

type TLSConfig struct {
	CertFile     string `mapstructure:"cert_file" toml:"cert_file,omitempty" json:"cert_file,omitempty"`
	KeyFile      string `mapstructure:"key_file" toml:"key_file,omitempty" json:"key_file,omitempty"`
	ClientCAFile string `mapstructure:"client_ca_file" toml:"client_ca_file,omitempty" json:"client_ca_file,omitempty"`
}

type IdentityConfig struct {
	Source    string        `mapstructure:"source" toml:"source" json:"source"`
	AppID     string        `mapstructure:"app_id" toml:"app_id,omitempty" json:"app_id,omitempty"`
	FilePaths []string      `mapstructure:"file_paths" toml:"file_paths,omitempty" json:"file_paths,omitempty"`
	Android   AndroidConfig `mapstructure:"android" toml:"android" json:"android"`
}

type Config struct {
	LogLevel            string         `mapstructure:"log_level" toml:"log_level" json:"log_level"`
	JSONLogging         bool           `mapstructure:"json_logging" toml:"json_logging" json:"json_logging"`
	AuditLogPath        string         `mapstructure:"audit_log_path" toml:"audit_log_path,omitempty" json:"audit_log_path,omitempty"`
	ListenAddr          string         `mapstructure:"listen_addr" toml:"listen_addr" json:"listen_addr"`
	APIPrefix           string         `mapstructure:"api_prefix" toml:"api_prefix" json:"api_prefix"`
	ChannelName         string         `mapstructure:"channel_name" toml:"channel_name" json:"channel_name"`
	HealthProbeInterval string         `mapstructure:"health_probe_interval" toml:"health_probe_interval" json:"health_probe_interval"`
	TLS                 TLSConfig      `mapstructure:"tls" toml:"tls" json:"tls"`
	Identity            IdentityConfig `mapstructure:"identity" toml:"identity" json:"identity"`
}

// DefaultConfig returns the configuration used when no file or environment overrides are present.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:            DefaultLogLevel,
		ListenAddr:          DefaultListenAddr,
		APIPrefix:           DefaultAPIPrefix,
		ChannelName:         DefaultChannelName,
		HealthProbeInterval: DefaultHealthProbeInterval,
		Identity: IdentityConfig{
			Source: DefaultIdentitySource,
			Android: AndroidConfig{
				ADBHost: DefaultADBHost,
				ADBPort: DefaultADBPort,
			},
		},
	}
}

// IdentityReaderConfig converts the identity section for identity.New.
func (c *Config) IdentityReaderConfig() identity.Config {
	return identity.Config{
		Source:    c.Identity.Source,
		AppID:     c.Identity.AppID,
		FilePaths: append([]string(nil), c.Identity.FilePaths...),
		Android: identity.AndroidConfig{
			ADBHost: c.Identity.Android.ADBHost,
			ADBPort: c.Identity.Android.ADBPort,
			Serial:  c.Identity.Android.Serial,
		},
	}
}

// ServerTLSConfig converts the tls section for the server.
func (c *Config) ServerTLSConfig() servertls.Config {
	return servertls.Config{
		CertFile:     c.TLS.CertFile,
		KeyFile:      c.TLS.KeyFile,
		ClientCAFile: c.TLS.ClientCAFile,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("json_logging", d.JSONLogging)
	v.SetDefault("audit_log_path", d.AuditLogPath)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("api_prefix", d.APIPrefix)
	v.SetDefault("channel_name", d.ChannelName)
	v.SetDefault("health_probe_interval", d.HealthProbeInterval)
	v.SetDefault("tls.cert_file", d.TLS.CertFile)
	v.SetDefault("tls.key_file", d.TLS.KeyFile)
	v.SetDefault("tls.client_ca_file", d.TLS.ClientCAFile)
	v.SetDefault("identity.source", d.Identity.Source)
	v.SetDefault("identity.app_id", d.Identity.AppID)
	v.SetDefault("identity.file_paths", []string{})
	v.SetDefault("identity.android.adb_host", d.Identity.Android.ADBHost)
	v.SetDefault("identity.android.adb_port", d.Identity.Android.ADBPort)
	v.SetDefault("identity.android.serial", d.Identity.Android.Serial)
}

// Load reads the config file at path, if present, and applies DEVICE_BRIDGE_* environment
// overrides on top of the defaults. The file format follows its extension.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(filepath.Clean(path))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// WriteDefault writes DefaultConfig as TOML to path. An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(filepath.Clean(path), flags, 0o600)
	if err != nil {
		return fmt.Errorf("create config %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(DefaultConfig()); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
