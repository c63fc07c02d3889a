//go:build unix || linux || darwin || freebsd || openbsd || netbsd

package dictfile

import "golang.org/x/sys/unix"

// restrictUmask drops group/other write bits from the process file-creation
// mask before the staging directory is created, so dictionary files are
// never born group- or world-writable.
//
// The mask is process-wide and deliberately not restored: callers creating
// unrelated files concurrently with a flush inherit the narrowed mask. This
// is documented behavior of the flush protocol.
func restrictUmask() {
	unix.Umask(unix.S_IWGRP | unix.S_IWOTH)
}
