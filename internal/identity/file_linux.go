//go:build linux

package identity

// see https://0pointer.de/blog/projects/ids.html
var defaultIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
}
