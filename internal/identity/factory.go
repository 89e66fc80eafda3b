package identity

import "fmt"

// Config selects and parameterises a DeviceIdentity.
type Config struct {
	Source    string
	AppID     string
	FilePaths []string
	Android   AndroidConfig
}

type AndroidConfig struct {
	ADBHost string
	ADBPort int
	Serial  string
}

// New builds the DeviceIdentity named by cfg.Source.
func New(cfg Config) (DeviceIdentity, error) {
	switch cfg.Source {
	case SourceFile:
		return NewFileDeviceIdentity(cfg.FilePaths...), nil
	case SourceHost:
		return NewHostDeviceIdentity(), nil
	case SourceMachineID, "":
		return NewMachineIDIdentity(cfg.AppID), nil
	case SourceAndroid:
		return NewAndroidDeviceIdentity(cfg.Android.ADBHost, cfg.Android.ADBPort, cfg.Android.Serial), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}

// Sources lists the accepted values of Config.Source.
func Sources() []string {
	return []string{SourceAndroid, SourceFile, SourceHost, SourceMachineID}
}
