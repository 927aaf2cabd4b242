package hrbox

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/hrbox-pull/hrbox-pull/common/utils/fsutil"
	"github.com/hrbox-pull/hrbox-pull/common/utils/ioutil"
	"github.com/hrbox-pull/hrbox-pull/pkg/enums/ctxkey"
)

// DefaultExt is the extension of the only content type the service hands out.
const DefaultExt = "pdf"

const sniffLen = 3072

// fallbackStem names documents whose name and FILE_INDEX normalize to nothing.
const fallbackStem = "document"

// Saver persists a stream under a storage path. Implementations must not
// make a partially written file visible under that path.
type Saver interface {
	Save(ctx context.Context, r io.Reader, storagePath string) error
}

// Target resolves a document to its destination.
type Target struct {
	Document Document
	Dir      string
	Ext      string
}

func (t Target) FileName() string {
	ext := strings.TrimPrefix(t.Ext, ".")
	if ext == "" {
		ext = DefaultExt
	}
	name := fsutil.NormalizePathname(t.Document.Name)
	if name == "" {
		name = fsutil.NormalizePathname(t.Document.FileIndex)
	}
	if name == "" {
		name = fallbackStem
		if t.Document.FileIndex != "" {
			name = fmt.Sprintf("%s-%x", fallbackStem, t.Document.FileIndex)
		}
	}
	return name + "." + ext
}

func (t Target) Path() string {
	return path.Join(t.Dir, t.FileName())
}

// ContentPath is the API path serving the binary content of a document.
func ContentPath(fileIndex string) string {
	return DocumentsPath + "/" + url.PathEscape(fileIndex) + "/pdf"
}

// Download fetches the content of target.Document and saves it to dst under
// target.Path(). Nothing is written when the request fails.
// It returns the number of bytes saved.
func Download(ctx context.Context, s *Session, target Target, dst Saver) (int64, error) {
	return DownloadWithProgress(ctx, s, target, dst, nil)
}

// DownloadWithProgress is Download reporting bytes read so far to
// onProgress. total is -1 when the server sent no content length.
func DownloadWithProgress(ctx context.Context, s *Session, target Target, dst Saver, onProgress func(read, total int64)) (int64, error) {
	doc := target.Document
	if doc.FileIndex == "" {
		return 0, fmt.Errorf("download %q: %w", doc.Name,
			&ProtocolError{Op: "download", Err: fmt.Errorf("%w: empty FILE_INDEX", ErrMalformedPage)})
	}
	storagePath := target.Path()
	contentPath := ContentPath(doc.FileIndex)
	s.logger.Debug("Downloading document", "name", doc.Name, "url", s.url(contentPath))

	body, size, err := s.Stream(ctx, contentPath)
	if err != nil {
		return 0, fmt.Errorf("download %q: %w", doc.Name, err)
	}
	defer body.Close()

	br := bufio.NewReaderSize(body, sniffLen)
	if head, _ := br.Peek(sniffLen); len(head) > 0 {
		detected := mimetype.Detect(head)
		if want := "." + strings.TrimPrefix(path.Ext(storagePath), "."); detected.Extension() != want {
			s.logger.Warn("Content does not look like the configured file type",
				"name", doc.Name, "detected", detected.String(), "extension", want)
		}
	}

	reader := ioutil.NewProgressReader(br, size, onProgress)
	if size >= 0 {
		ctx = context.WithValue(ctx, ctxkey.ContentLength, size)
	}
	s.logger.Info("Saving document", "name", doc.Name, "path", storagePath)
	if err := dst.Save(ctx, reader, storagePath); err != nil {
		if readErr := reader.Err(); readErr != nil {
			return 0, fmt.Errorf("download %q: %w", doc.Name,
				&HTTPError{Method: http.MethodGet, URL: s.url(contentPath), Err: readErr})
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("download %q: %w", doc.Name, err)
		}
		return 0, fmt.Errorf("download %q: %w", doc.Name, &IOError{Path: storagePath, Err: err})
	}
	n := reader.BytesRead()
	s.logger.Info("Saved document", "name", doc.Name, "size", humanize.Bytes(uint64(n)))
	return n, nil
}
