package lexdict

import "github.com/textinput/lexdict/internal/fs"

type options struct {
	fsys   fs.FileSystem
	logger *Logger
}

// Option configures Buffers construction.
type Option func(*options)

// WithLogger configures structured logging. If nil is passed, logging is
// disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// withFileSystem swaps the file system implementation. Unexported: only the
// package's own tests inject a FaultyFS.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		fsys:   fs.Default,
		logger: NoopLogger(),
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}
