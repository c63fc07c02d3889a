//go:build windows

package dictfile

// Windows has no umask; file modes are advisory there anyway.
func restrictUmask() {}
