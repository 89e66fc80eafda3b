//go:build linux

package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileDeviceIdentity_Defaults(t *testing.T) {
	d := NewFileDeviceIdentity()
	require.Equal(t, defaultIDPaths, d.paths)

	t.Run("reads host machine id", func(t *testing.T) {
		id, err := d.GetSecureID(context.Background())
		if err != nil {
			t.Skip("machine-id not available")
		}
		require.NotEmpty(t, id)

		again, err := d.GetSecureID(context.Background())
		require.NoError(t, err)
		require.Equal(t, id, again)
	})
}
