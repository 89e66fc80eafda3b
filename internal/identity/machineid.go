package identity

import (
	"context"

	"github.com/denisbrodbeck/machineid"
)

// MachineIDIdentity reads the OS installation id. With an app id set, the value is
// HMAC-SHA256(appID) keyed by the machine id, so the raw id never leaves the host.
type MachineIDIdentity struct {
	appID       string
	id          func() (string, error)
	protectedID func(appID string) (string, error)
}

func NewMachineIDIdentity(appID string) *MachineIDIdentity {
	return &MachineIDIdentity{
		appID:       appID,
		id:          machineid.ID,
		protectedID: machineid.ProtectedID,
	}
}

func (d *MachineIDIdentity) Source() string {
	return SourceMachineID
}

// GetSecureID returns the machine id. The library already prefixes its errors with "machineid:".
func (d *MachineIDIdentity) GetSecureID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d.appID != "" {
		return d.protectedID(d.appID)
	}
	return d.id()
}
