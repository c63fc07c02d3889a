// Package archive packs a dictionary directory into a single compressed
// stream and unpacks such a stream back into a directory.
//
// The wire format is a tar archive holding the dictionary's files under
// their bare names, compressed as one zstd or lz4 frame. Unpack stages the
// extracted files next to the target directory and installs them with the
// same rename-based commit a flush uses, so a half-transferred archive can
// never corrupt an existing dictionary.
package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/textinput/lexdict/format"
	"github.com/textinput/lexdict/internal/dictfile"
	"github.com/textinput/lexdict/internal/fs"
)

// Codec selects the compression applied around the tar stream.
type Codec int

const (
	// CodecZstd is the default codec.
	CodecZstd Codec = iota
	// CodecLZ4 trades compression ratio for speed.
	CodecLZ4
)

var (
	// ErrNotDictionary is returned when the source directory or the archive
	// does not contain a dictionary header file.
	ErrNotDictionary = errors.New("archive: no dictionary header found")
	// ErrBadEntry is returned when an archive entry has a path component or
	// an unknown file suffix.
	ErrBadEntry = errors.New("archive: invalid entry name")
	// ErrUnknownCodec is returned when the stream starts with neither a
	// zstd nor an lz4 frame magic.
	ErrUnknownCodec = errors.New("archive: unrecognized compression format")
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// fileSuffixes is the pack order, same as the flush serialization order.
var fileSuffixes = []string{
	format.HeaderFileSuffix,
	format.TrieFileSuffix,
	format.TerminalFileSuffix,
	format.ProbabilityFileSuffix,
	format.BigramFileSuffix,
	format.ShortcutFileSuffix,
}

type options struct {
	codec Codec
	fsys  fs.FileSystem
}

// Option configures Pack and Unpack.
type Option func(*options)

// WithCodec selects the compression codec for Pack. Unpack detects the
// codec from the stream and ignores this option.
func WithCodec(c Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec: CodecZstd,
		fsys:  fs.Default,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Pack writes the dictionary in dictDir to w as a compressed tar stream.
// Only the dictionary's own files are packed; anything else in the
// directory is skipped.
func Pack(w io.Writer, dictDir string, optFns ...Option) error {
	opts := applyOptions(optFns)

	base := filepath.Base(dictDir)
	if _, err := os.Stat(filepath.Join(dictDir, base+format.HeaderFileSuffix)); err != nil {
		return fmt.Errorf("%w: %s", ErrNotDictionary, dictDir)
	}

	cw, err := newCompressor(w, opts.codec)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)

	for _, suffix := range fileSuffixes {
		name := base + suffix
		if err := packFile(tw, filepath.Join(dictDir, name), name); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("archive: finalize tar: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("archive: finalize compressor: %w", err)
	}
	return nil
}

func packFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Content sections may be absent for minimal dictionaries.
			return nil
		}
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("archive: stat %s: %w", path, err)
	}
	hdr := &tar.Header{
		Name: name,
		Mode: 0o600,
		Size: info.Size(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("archive: write header for %s: %w", name, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("archive: write %s: %w", name, err)
	}
	return nil
}

// Unpack reads a compressed dictionary archive from r and installs it as
// dictDir, replacing any existing dictionary there atomically. The files
// are renamed to match dictDir's base name, so an archive may be unpacked
// under a different dictionary name than it was packed from.
func Unpack(r io.Reader, dictDir string, optFns ...Option) error {
	opts := applyOptions(optFns)

	cr, err := newDecompressor(r)
	if err != nil {
		return err
	}
	tr := tar.NewReader(cr)

	w := dictfile.NewWriter(opts.fsys)
	return w.Commit(dictDir, func(basePath string) error {
		sawHeader := false
		for {
			hdr, err := tr.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("read tar entry: %w", err)
			}
			suffix, err := entrySuffix(hdr.Name)
			if err != nil {
				return err
			}
			if suffix == format.HeaderFileSuffix {
				sawHeader = true
			}
			if err := extractFile(opts.fsys, tr, basePath+suffix); err != nil {
				return err
			}
		}
		if !sawHeader {
			return ErrNotDictionary
		}
		return nil
	})
}

// entrySuffix validates an archive entry name and returns its dictionary
// file suffix. Entries must be bare file names with a known suffix.
func entrySuffix(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrBadEntry, name)
	}
	for _, suffix := range fileSuffixes {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return suffix, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrBadEntry, name)
}

func extractFile(fsys fs.FileSystem, r io.Reader, path string) error {
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("extract %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func newCompressor(w io.Writer, codec Codec) (io.WriteCloser, error) {
	switch codec {
	case CodecZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("archive: init zstd: %w", err)
		}
		return enc, nil
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: codec %d", ErrUnknownCodec, codec)
	}
}

// newDecompressor sniffs the frame magic and wraps r in the matching
// decoder.
func newDecompressor(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("archive: read magic: %w", err)
	}
	switch {
	case bytes.Equal(magic, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("archive: init zstd: %w", err)
		}
		return dec.IOReadCloser(), nil
	case bytes.Equal(magic, lz4Magic):
		return lz4.NewReader(br), nil
	default:
		return nil, ErrUnknownCodec
	}
}
