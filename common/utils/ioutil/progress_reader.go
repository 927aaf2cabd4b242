package ioutil

import (
	"errors"
	"io"
	"sync/atomic"
)

var _ io.Reader = (*ProgressReader)(nil)

// ProgressReader wraps an io.Reader and tracks read progress
type ProgressReader struct {
	reader     io.Reader
	total      int64
	read       atomic.Int64
	err        atomic.Pointer[error]
	onProgress func(read int64, total int64)
}

// NewProgressReader creates a new ProgressReader. total may be negative when unknown.
func NewProgressReader(r io.Reader, total int64, onProgress func(read int64, total int64)) *ProgressReader {
	return &ProgressReader{
		reader:     r,
		total:      total,
		onProgress: onProgress,
	}
}

// Read implements io.Reader
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		read := pr.read.Add(int64(n))
		if pr.onProgress != nil {
			pr.onProgress(read, pr.total)
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		pr.err.Store(&err)
	}
	return n, err
}

func (pr *ProgressReader) BytesRead() int64 {
	return pr.read.Load()
}

// Err returns the last non-EOF error returned by the underlying reader.
func (pr *ProgressReader) Err() error {
	if err := pr.err.Load(); err != nil {
		return *err
	}
	return nil
}
