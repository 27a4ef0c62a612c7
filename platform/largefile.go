package platform

import (
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
)

// LargeFile is a file opened for sequential reading or writing. Paths may
// name any storage supported by grailbio/base/file.
type LargeFile struct {
	ctx context.Context
	f   file.File
	r   io.ReadSeeker
	w   io.Writer
}

// OpenLargeFile opens path for reading (mode 'r') or creates it for writing
// (mode 'w').
func OpenLargeFile(ctx context.Context, path string, mode byte) (*LargeFile, error) {
	switch mode {
	case 'r':
		f, err := file.Open(ctx, path)
		if err != nil {
			return nil, errors.E(err, "open", path)
		}
		return &LargeFile{ctx: ctx, f: f, r: f.Reader(ctx)}, nil
	case 'w':
		f, err := file.Create(ctx, path)
		if err != nil {
			return nil, errors.E(err, "create", path)
		}
		return &LargeFile{ctx: ctx, f: f, w: f.Writer(ctx)}, nil
	}
	return nil, errors.E(errors.Invalid, "invalid large file mode:", string(mode))
}

// Read implements io.Reader.
func (l *LargeFile) Read(p []byte) (int, error) {
	if l.r == nil {
		return 0, errors.E(errors.NotSupported, l.f.Name(), "is not open for reading")
	}
	return l.r.Read(p)
}

// Write implements io.Writer.
func (l *LargeFile) Write(p []byte) (int, error) {
	if l.w == nil {
		return 0, errors.E(errors.NotSupported, l.f.Name(), "is not open for writing")
	}
	return l.w.Write(p)
}

// Seek implements io.Seeker for files open for reading.
func (l *LargeFile) Seek(offset int64, whence int) (int64, error) {
	if l.r == nil {
		return 0, errors.E(errors.NotSupported, l.f.Name(), "is not open for reading")
	}
	return l.r.Seek(offset, whence)
}

// Name returns the path of the file.
func (l *LargeFile) Name() string { return l.f.Name() }

// Close closes the file. For files open for writing, it commits the contents.
func (l *LargeFile) Close() error {
	return l.f.Close(l.ctx)
}

// QueryFileSize returns the size of the file at path.
func QueryFileSize(ctx context.Context, path string) (int64, error) {
	info, err := file.Stat(ctx, path)
	if err != nil {
		return 0, errors.E(err, "stat", path)
	}
	return info.Size(), nil
}
