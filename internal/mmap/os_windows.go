//go:build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMap(f *os.File, size int, writable bool) ([]byte, func([]byte) error, func([]byte) error, error) {
	prot := uint32(windows.PAGE_READONLY)
	view := uint32(windows.FILE_MAP_READ)
	if writable {
		prot = windows.PAGE_READWRITE
		view = windows.FILE_MAP_WRITE
	}

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, prot, 0, 0, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	// The view holds a reference; the handle can be closed immediately.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, view, 0, 0, uintptr(size))
	if err != nil {
		return nil, nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	unmapFunc := func(b []byte) error {
		return windows.UnmapViewOfFile(addr)
	}
	syncFunc := func(b []byte) error {
		return windows.FlushViewOfFile(addr, uintptr(size))
	}
	return data, unmapFunc, syncFunc, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	// Windows has no direct madvise equivalent; the page cache still
	// handles sequential and random access reasonably.
	_ = data
	_ = pattern
	return nil
}
