package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrComponentUnavailable = errors.New("identity component unavailable")
	ErrEmptyIdentifier      = errors.New("device identifier is empty")
	ErrUnknownSource        = errors.New("unknown identity source")
	ErrReaderPanic          = errors.New("identity reader panicked")
)

// Identity sources.
const (
	SourceFile      = "file"
	SourceHost      = "host"
	SourceMachineID = "machine-id"
	SourceAndroid   = "android"
)

// DeviceIdentity reads the host's secure device identifier.
// The value is owned and persisted by the host; implementations never create or cache it.
type DeviceIdentity interface {
	// Source names the facility the identifier is read from.
	Source() string

	// GetSecureID performs one read of the identifier.
	GetSecureID(ctx context.Context) (string, error)
}

// Read performs a single read through d and rejects an empty identifier,
// so a successful read always yields a non-empty string. A panic in the reader
// is returned as ErrReaderPanic.
func Read(ctx context.Context, d DeviceIdentity) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			id, err = "", fmt.Errorf("%w: %v", ErrReaderPanic, r)
		}
	}()

	id, err = d.GetSecureID(ctx)
	if err != nil {
		return "", err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrEmptyIdentifier
	}
	return id, nil
}
