package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dekho-agent/device-bridge/internal/identity"
)

const IdentityProbeName = "identity_probe"

// ProbeStatus is the outcome of the latest identity probe. It never holds the identifier.
type ProbeStatus struct {
	Source    string    `json:"source"`
	Healthy   bool      `json:"healthy"`
	LastProbe *time.Time `json:"last_probe,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Probes    uint64    `json:"probes"`
}

// IdentityProbe checks that the configured identity source can be read.
type IdentityProbe struct {
	reader func() identity.DeviceIdentity
	now    func() time.Time
	mu     sync.RWMutex
	status ProbeStatus
}

// NewIdentityProbe probes whatever reader returns at execution time, so a swapped
// reader is picked up on the next run.
func NewIdentityProbe(reader func() identity.DeviceIdentity) *IdentityProbe {
	return &IdentityProbe{reader: reader, now: time.Now}
}

func (p *IdentityProbe) Name() string {
	return IdentityProbeName
}

// Execute performs one read and records its outcome.
func (p *IdentityProbe) Execute(ctx context.Context) error {
	reader := p.reader()
	_, err := identity.Read(ctx, reader)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Source = reader.Source()
	probedAt := p.now().UTC()
	p.status.LastProbe = &probedAt
	p.status.Probes++
	p.status.Healthy = err == nil
	p.status.LastError = ""
	if err != nil {
		p.status.LastError = err.Error()
	}
	return err
}

// Status returns the latest probe outcome. Before the first probe Healthy is false
// and LastProbe is nil.
func (p *IdentityProbe) Status() ProbeStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}
