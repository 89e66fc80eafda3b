package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/electricbubble/gadb"
)

var (
	ErrNoDevice        = errors.New("no android device attached")
	ErrAmbiguousDevice = errors.New("multiple android devices attached, serial required")
)

const DefaultADBPort = 5037

// adbDevice is the part of gadb.Device used here.
type adbDevice interface {
	Serial() string
	RunShellCommand(cmd string, args ...string) (string, error)
}

// AndroidDeviceIdentity reads Settings.Secure.ANDROID_ID from a device over ADB.
type AndroidDeviceIdentity struct {
	serial  string
	devices func() ([]adbDevice, error)
}

// NewAndroidDeviceIdentity talks to the adb server at host:port. An empty serial selects
// the only attached device.
func NewAndroidDeviceIdentity(host string, port int, serial string) *AndroidDeviceIdentity {
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = DefaultADBPort
	}
	return &AndroidDeviceIdentity{
		serial: serial,
		devices: func() ([]adbDevice, error) {
			client, err := gadb.NewClientWith(host, port)
			if err != nil {
				return nil, fmt.Errorf("connect adb server %s:%d: %w", host, port, err)
			}
			list, err := client.DeviceList()
			if err != nil {
				return nil, fmt.Errorf("list adb devices: %w", err)
			}
			devices := make([]adbDevice, 0, len(list))
			for _, d := range list {
				devices = append(devices, d)
			}
			return devices, nil
		},
	}
}

func (d *AndroidDeviceIdentity) Source() string {
	return SourceAndroid
}

func (d *AndroidDeviceIdentity) GetSecureID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dev, err := d.selectDevice()
	if err != nil {
		return "", err
	}

	out, err := dev.RunShellCommand("settings", "get", "secure", "android_id")
	if err != nil {
		return "", fmt.Errorf("read android_id on %s: %w", dev.Serial(), err)
	}

	id := strings.TrimSpace(out)
	// settings prints the literal "null" for an unset key
	if id == "null" {
		return "", nil
	}
	return id, nil
}

func (d *AndroidDeviceIdentity) selectDevice() (adbDevice, error) {
	devices, err := d.devices()
	if err != nil {
		return nil, err
	}

	if d.serial != "" {
		for _, dev := range devices {
			if dev.Serial() == d.serial {
				return dev, nil
			}
		}
		return nil, fmt.Errorf("%w: serial %s", ErrNoDevice, d.serial)
	}

	switch len(devices) {
	case 0:
		return nil, ErrNoDevice
	case 1:
		return devices[0], nil
	default:
		return nil, ErrAmbiguousDevice
	}
}
