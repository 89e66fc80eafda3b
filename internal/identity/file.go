package identity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileDeviceIdentity reads a machine-id style file. Paths are tried in order and the
// first non-empty value wins.
type FileDeviceIdentity struct {
	paths []string
}

// NewFileDeviceIdentity creates a FileDeviceIdentity. With no paths the platform defaults are used.
func NewFileDeviceIdentity(paths ...string) *FileDeviceIdentity {
	if len(paths) == 0 {
		paths = defaultIDPaths
	}
	return &FileDeviceIdentity{paths: paths}
}

func (d *FileDeviceIdentity) Source() string {
	return SourceFile
}

// GetSecureID returns the first non-empty identifier found in the configured paths.
func (d *FileDeviceIdentity) GetSecureID(ctx context.Context) (string, error) {
	if len(d.paths) == 0 {
		return "", ErrComponentUnavailable
	}

	var lastErr error
	for _, path := range d.paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			lastErr = fmt.Errorf("read %s: %w", path, err)
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
		lastErr = fmt.Errorf("read %s: %w", path, ErrEmptyIdentifier)
	}
	return "", lastErr
}
