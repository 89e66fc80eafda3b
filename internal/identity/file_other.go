//go:build !linux

package identity

var defaultIDPaths []string
