package identity

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/host"
)

// HostDeviceIdentity reads the host UUID reported by gopsutil.
type HostDeviceIdentity struct {
	hostID func(ctx context.Context) (string, error)
}

func NewHostDeviceIdentity() *HostDeviceIdentity {
	return &HostDeviceIdentity{hostID: host.HostIDWithContext}
}

func (d *HostDeviceIdentity) Source() string {
	return SourceHost
}

func (d *HostDeviceIdentity) GetSecureID(ctx context.Context) (string, error) {
	id, err := d.hostID(ctx)
	if err != nil {
		return "", fmt.Errorf("read host id: %w", err)
	}
	return id, nil
}
