// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"rivaas.dev/confnode"
)

const (
	// DefaultFilePermissions represents the default file permissions for saved configuration files.
	// Files are created with read/write permissions for the owner and read permissions for group and others (0644).
	DefaultFilePermissions = 0o644
)

// HeaderMode controls how a [Loader] treats the comment block at the top of a document.
type HeaderMode int

const (
	// HeaderPreserve reads the header into the node options on load and
	// writes the node header on save.
	HeaderPreserve HeaderMode = iota
	// HeaderPreset ignores the header of the document and always writes the
	// header of the loader default options.
	HeaderPreset
	// HeaderNone neither keeps nor writes a header.
	HeaderNone
)

// String returns the name of the mode.
func (m HeaderMode) String() string {
	switch m {
	case HeaderPreserve:
		return "preserve"
	case HeaderPreset:
		return "preset"
	case HeaderNone:
		return "none"
	}
	return fmt.Sprintf("HeaderMode(%d)", int(m))
}

// Option is a functional option used to configure a [Loader].
type Option func(l *Loader) error

// Loader reads and writes node trees in one [Format] from a file, an
// in-memory document or a stream.
//
// A Loader is safe for concurrent use when its source and sink are files or
// in-memory content. Readers and writers passed with [WithReader] and
// [WithWriter] are consumed by the first call.
type Loader struct {
	format      Format
	path        string
	content     []byte
	hasContent  bool
	reader      io.Reader
	writer      io.Writer
	defaults    *confnode.Options
	optionFns   []confnode.Option
	headerMode  HeaderMode
	permissions os.FileMode
	logger      *slog.Logger
}

// WithPath sets the file the loader reads from and saves to.
// Environment variables in path are expanded.
func WithPath(path string) Option {
	return func(l *Loader) error {
		if path == "" {
			return errors.New("path cannot be empty")
		}
		l.path = os.ExpandEnv(path)
		return nil
	}
}

// WithContent makes the loader read from an in-memory document.
func WithContent(content []byte) Option {
	return func(l *Loader) error {
		l.content = content
		l.hasContent = true
		return nil
	}
}

// WithReader makes the loader read from r.
func WithReader(r io.Reader) Option {
	return func(l *Loader) error {
		if r == nil {
			return errors.New("reader cannot be nil")
		}
		l.reader = r
		return nil
	}
}

// WithWriter makes the loader save to w.
func WithWriter(w io.Writer) Option {
	return func(l *Loader) error {
		if w == nil {
			return errors.New("writer cannot be nil")
		}
		l.writer = w
		return nil
	}
}

// WithDefaultOptions sets the node options used for loaded and created trees.
func WithDefaultOptions(opts ...confnode.Option) Option {
	return func(l *Loader) error {
		l.optionFns = append(l.optionFns, opts...)
		return nil
	}
}

// WithHeaderMode sets how headers are read and written.
func WithHeaderMode(mode HeaderMode) Option {
	return func(l *Loader) error {
		if mode < HeaderPreserve || mode > HeaderNone {
			return fmt.Errorf("invalid header mode %d", int(mode))
		}
		l.headerMode = mode
		return nil
	}
}

// WithPermissions sets the permissions of saved files.
// Use this when you need more restrictive permissions (e.g., 0600 for sensitive configuration).
func WithPermissions(perm os.FileMode) Option {
	return func(l *Loader) error {
		l.permissions = perm
		return nil
	}
}

// WithLogger sets the logger used by the loader.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		l.logger = logger
		return nil
	}
}

// New creates a loader for format. All option errors are joined and
// returned together.
func New(format Format, opts ...Option) (*Loader, error) {
	if format == nil {
		return nil, errors.New("loader: format cannot be nil")
	}
	l := &Loader{
		format:      format,
		permissions: DefaultFilePermissions,
		logger:      slog.New(slog.DiscardHandler),
	}

	var errs error
	for _, opt := range opts {
		if err := opt(l); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("loader: %w", errs)
	}

	var nodeOpts []confnode.Option
	if nt, ok := format.(NativeTyper); ok {
		nodeOpts = append(nodeOpts, confnode.WithNativeTypes(nt.NativeTypes()...))
	}
	nodeOpts = append(nodeOpts, l.optionFns...)
	defaults, err := confnode.NewOptions(nodeOpts...)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	l.defaults = defaults
	return l, nil
}

// MustNew creates a loader or panics if an option fails.
// Use this in main() or initialization code where panic is acceptable.
func MustNew(format Format, opts ...Option) *Loader {
	l, err := New(format, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// NewForPath creates a loader for the file at path, detecting the format
// from its extension.
func NewForPath(path string, opts ...Option) (*Loader, error) {
	format, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return New(format, append([]Option{WithPath(path)}, opts...)...)
}

// Format returns the format of the loader.
func (l *Loader) Format() Format {
	return l.format
}

// Path returns the file path of the loader, or "" if it has none.
func (l *Loader) Path() string {
	return l.path
}

// DefaultOptions returns the node options of trees created by the loader.
func (l *Loader) DefaultOptions() *confnode.Options {
	return l.defaults
}

// CanLoad reports whether the loader has a source.
func (l *Loader) CanLoad() bool {
	return l.path != "" || l.hasContent || l.reader != nil
}

// CanSave reports whether the loader has a destination.
func (l *Loader) CanSave() bool {
	return l.path != "" || l.writer != nil
}

// CreateNode returns an empty root using the loader defaults with opts applied.
func (l *Loader) CreateNode(opts ...confnode.Option) (*confnode.Node, error) {
	o, err := l.defaults.With(opts...)
	if err != nil {
		return nil, err
	}
	return confnode.Root(o), nil
}

// Load reads the document into a new root node. The node options are the
// loader defaults with opts applied. A missing file yields an empty root.
//
// Errors:
//   - Returns error if the loader has no source
//   - Returns error if reading fails
//   - Returns a [confnode.Error] wrapping [confnode.ErrMalformed] if the document cannot be parsed
func (l *Loader) Load(ctx context.Context, opts ...confnode.Option) (*confnode.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o, err := l.defaults.With(opts...)
	if err != nil {
		return nil, err
	}

	data, err := l.read()
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("configuration file not found, using empty root", "path", l.path)
		return confnode.Root(o), nil
	}
	if err != nil {
		return nil, confnode.NewError("load", err)
	}

	if prefix := l.format.CommentPrefix(); prefix != "" {
		header, body := splitHeader(data, prefix)
		data = body
		if header != "" && l.headerMode == HeaderPreserve {
			if o, err = o.With(confnode.WithHeader(header)); err != nil {
				return nil, err
			}
		}
	}

	root := confnode.Root(o)
	if len(bytes.TrimSpace(data)) == 0 {
		return root, nil
	}
	if err := l.format.Decode(bytes.NewReader(data), root); err != nil {
		var cerr *confnode.Error
		if errors.As(err, &cerr) {
			return nil, err
		}
		return nil, confnode.NewError("load", fmt.Errorf("%w: %s: %w", confnode.ErrMalformed, l.format.Name(), err))
	}
	l.logger.Debug("configuration loaded", "format", l.format.Name(), "path", l.path)
	return root, nil
}

func (l *Loader) read() ([]byte, error) {
	switch {
	case l.hasContent:
		return l.content, nil
	case l.reader != nil:
		return io.ReadAll(l.reader)
	case l.path != "":
		return os.ReadFile(l.path)
	}
	return nil, errors.New("loader has no source")
}

// Save writes node to the destination of the loader: the header (according
// to the header mode) followed by a blank line and the body. Files are
// written atomically.
//
// Errors:
//   - Returns error if the loader has no destination
//   - Returns error if encoding fails
//   - Returns error if writing fails
func (l *Loader) Save(ctx context.Context, node *confnode.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !l.CanSave() {
		return confnode.NewError("save", errors.New("loader has no destination"))
	}

	var buf bytes.Buffer
	if prefix := l.format.CommentPrefix(); prefix != "" {
		writeHeader(&buf, prefix, l.header(node))
	}
	if err := l.format.Encode(&buf, node); err != nil {
		return confnode.NewError("save", fmt.Errorf("failed to encode values: %w", err))
	}

	if l.path == "" {
		if _, err := l.writer.Write(buf.Bytes()); err != nil {
			return confnode.NewError("save", fmt.Errorf("failed to write: %w", err))
		}
		return nil
	}
	if err := writeFileAtomic(l.path, buf.Bytes(), l.permissions); err != nil {
		return confnode.NewError("save", fmt.Errorf("failed to write file: %w", err))
	}
	l.logger.Debug("configuration saved", "format", l.format.Name(), "path", l.path)
	return nil
}

func (l *Loader) header(node *confnode.Node) string {
	switch l.headerMode {
	case HeaderPreserve:
		if h := node.Options().Header(); h != "" {
			return h
		}
		return l.defaults.Header()
	case HeaderPreset:
		return l.defaults.Header()
	}
	return ""
}

// splitHeader separates the leading comment block of data from the body.
// The block is a header only if it is followed by a blank line or the end
// of the document; a comment directly above content belongs to that content.
func splitHeader(data []byte, prefix string) (string, []byte) {
	var lines []string
	rest := data
	for len(rest) > 0 {
		raw, next, _ := bytes.Cut(rest, []byte("\n"))
		line := strings.TrimSpace(string(raw))
		if line == "" {
			if len(lines) == 0 {
				return "", data
			}
			return strings.Join(lines, "\n"), next
		}
		if !strings.HasPrefix(line, prefix) {
			return "", data
		}
		lines = append(lines, strings.TrimPrefix(strings.TrimPrefix(line, prefix), " "))
		rest = next
	}
	return strings.Join(lines, "\n"), nil
}

func writeHeader(buf *bytes.Buffer, prefix, header string) {
	if header == "" {
		return
	}
	for line := range strings.SplitSeq(header, "\n") {
		buf.WriteString(prefix)
		if line != "" {
			buf.WriteByte(' ')
			buf.WriteString(line)
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it over path, so readers never observe a partially written file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}
