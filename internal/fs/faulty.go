package fs

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Fault defines specific failure behavior.
type Fault struct {
	FailAfterBytes int64 // Fail writes after this many bytes written TO THIS FILE. -1 to disable.
	FailOnSync     bool
	FailOnClose    bool
	Err            error
}

// FaultyFS is a FileSystem wrapper that can inject errors.
type FaultyFS struct {
	FS FileSystem

	mu      sync.Mutex
	rules   map[string]Fault // Filename pattern -> Fault
	Default Fault            // Fallback

	// Directory-level faults, matched by path substring.
	failRemoveAll map[string]error
	failMkdir     map[string]error
	failRename    map[string]error

	Err error
}

// NewFaultyFS creates a new FaultyFS wrapping the provided FS (or Default if nil).
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{
		FS:            fsys,
		rules:         make(map[string]Fault),
		failRemoveAll: make(map[string]error),
		failMkdir:     make(map[string]error),
		failRename:    make(map[string]error),
		Default: Fault{
			FailAfterBytes: -1, // No limit
		},
		Err: fmt.Errorf("injected fault error"),
	}
}

// AddRule adds a fault injection rule for a specific file pattern.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// FailRemoveAll makes RemoveAll fail for paths containing pattern.
func (f *FaultyFS) FailRemoveAll(pattern string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = f.Err
	}
	f.failRemoveAll[pattern] = err
}

// FailMkdir makes Mkdir fail for paths containing pattern.
func (f *FaultyFS) FailMkdir(pattern string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = f.Err
	}
	f.failMkdir[pattern] = err
}

// FailRename makes Rename fail when either path contains pattern.
func (f *FaultyFS) FailRename(pattern string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = f.Err
	}
	f.failRename[pattern] = err
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	fault := f.Default
	// Match pattern (last winning match)
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			fault = rule
		}
	}
	if fault.Err == nil {
		fault.Err = f.Err
	}
	f.mu.Unlock()

	return &faultyFile{File: file, fault: fault}, nil
}

func (f *FaultyFS) Remove(name string) error {
	return f.FS.Remove(name)
}

func (f *FaultyFS) RemoveAll(path string) error {
	f.mu.Lock()
	for pattern, err := range f.failRemoveAll {
		if strings.Contains(path, pattern) {
			f.mu.Unlock()
			return err
		}
	}
	f.mu.Unlock()
	return f.FS.RemoveAll(path)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	f.mu.Lock()
	for pattern, err := range f.failRename {
		if strings.Contains(oldpath, pattern) || strings.Contains(newpath, pattern) {
			f.mu.Unlock()
			return err
		}
	}
	f.mu.Unlock()
	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) {
	return f.FS.Stat(name)
}

func (f *FaultyFS) Mkdir(path string, perm os.FileMode) error {
	f.mu.Lock()
	for pattern, err := range f.failMkdir {
		if strings.Contains(path, pattern) {
			f.mu.Unlock()
			return err
		}
	}
	f.mu.Unlock()
	return f.FS.Mkdir(path, perm)
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.FS.MkdirAll(path, perm)
}

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) {
	return f.FS.ReadDir(name)
}

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (n int, err error) {
	if ff.fault.FailAfterBytes >= 0 {
		if ff.written+int64(len(p)) > ff.fault.FailAfterBytes {
			return 0, ff.fault.Err
		}
	}

	n, err = ff.File.Write(p)
	if n > 0 {
		ff.written += int64(n)
	}
	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.Err
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailOnClose {
		ff.File.Close()
		return ff.fault.Err
	}
	return ff.File.Close()
}
