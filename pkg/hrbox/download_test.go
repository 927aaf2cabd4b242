package hrbox_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hrbox-pull/hrbox-pull/common/utils/fsutil"
	"github.com/hrbox-pull/hrbox-pull/pkg/enums/ctxkey"
	"github.com/hrbox-pull/hrbox-pull/pkg/hrbox"
	"github.com/hrbox-pull/hrbox-pull/pkg/hrbox/hrboxtest"
)

type dirSaver struct {
	root   string
	length int64
}

func (d *dirSaver) Save(ctx context.Context, r io.Reader, storagePath string) error {
	if l, ok := ctx.Value(ctxkey.ContentLength).(int64); ok {
		d.length = l
	}
	_, err := fsutil.WriteFileAtomic(filepath.Join(d.root, filepath.FromSlash(storagePath)), r)
	return err
}

type failingSaver struct{}

func (failingSaver) Save(context.Context, io.Reader, string) error {
	return errors.New("disk full")
}

func TestTargetFileName(t *testing.T) {
	tests := []struct {
		doc  hrbox.Document
		ext  string
		want string
	}{
		{doc: hrbox.Document{Name: "Payslip_2024_01", FileIndex: "123"}, want: "Payslip_2024_01.pdf"},
		{doc: hrbox.Document{Name: "Payslip_2024_01", FileIndex: "123"}, ext: ".PDF", want: "Payslip_2024_01.PDF"},
		{doc: hrbox.Document{Name: "2024/01 Lohn", FileIndex: "7"}, want: "2024_01 Lohn.pdf"},
		{doc: hrbox.Document{Name: "  ", FileIndex: "42"}, want: "42.pdf"},
		{doc: hrbox.Document{Name: "../secret", FileIndex: "1"}, want: ".._secret.pdf"},
		{doc: hrbox.Document{Name: "..", FileIndex: ".."}, want: "document-2e2e.pdf"},
		{doc: hrbox.Document{Name: ". ", FileIndex: ""}, want: "document.pdf"},
	}
	for _, tc := range tests {
		target := hrbox.Target{Document: tc.doc, Ext: tc.ext}
		if got := target.FileName(); got != tc.want {
			t.Errorf("FileName(%+v) = %q, want %q", tc.doc, got, tc.want)
		}
	}

	target := hrbox.Target{Document: hrbox.Document{Name: "a"}, Dir: "out/docs"}
	if got := target.Path(); got != "out/docs/a.pdf" {
		t.Errorf("Path() = %q", got)
	}
}

func TestContentPath(t *testing.T) {
	if got := hrbox.ContentPath("123"); got != "/api/v1/internal/documents/123/pdf" {
		t.Fatalf("ContentPath = %s", got)
	}
}

func TestDownload(t *testing.T) {
	srv := newServer(t)
	content := hrboxtest.PDF("january")
	srv.Contents["123"] = content
	s := newLoggedInSession(t, srv)

	dir := t.TempDir()
	saver := &dirSaver{root: dir}
	doc := hrbox.Document{Name: "Payslip_2024_01", FileIndex: "123"}
	n, err := hrbox.Download(newTestContext(t), s, hrbox.Target{Document: doc}, saver)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if n != int64(len(content)) {
		t.Fatalf("returned %d bytes, want %d", n, len(content))
	}
	if saver.length != int64(len(content)) {
		t.Fatalf("content length in context = %d", saver.length)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Payslip_2024_01.pdf"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != string(content) {
		t.Fatalf("content mismatch: %q", data)
	}
	if got := srv.Count("/api/v1/internal/documents/123/pdf"); got != 1 {
		t.Fatalf("expected one content request, got %d", got)
	}
}

func TestDownloadNotFoundKeepsExistingFile(t *testing.T) {
	srv := newServer(t)
	s := newLoggedInSession(t, srv)

	dir := t.TempDir()
	existing := filepath.Join(dir, "Payslip_2024_02.pdf")
	if err := os.WriteFile(existing, []byte("previous run"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := hrbox.Document{Name: "Payslip_2024_02", FileIndex: "999"}
	_, err := hrbox.Download(newTestContext(t), s, hrbox.Target{Document: doc}, &dirSaver{root: dir})
	var httpErr *hrbox.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
	if !strings.Contains(err.Error(), "Payslip_2024_02") {
		t.Fatalf("error does not name the document: %v", err)
	}

	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous run" {
		t.Fatalf("existing file modified: %q", data)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("unexpected files created: %d entries", len(entries))
	}
}

func TestDownloadSaveFailure(t *testing.T) {
	srv := newServer(t)
	srv.Contents["5"] = hrboxtest.PDF("x")
	s := newLoggedInSession(t, srv)

	doc := hrbox.Document{Name: "doc", FileIndex: "5"}
	_, err := hrbox.Download(newTestContext(t), s, hrbox.Target{Document: doc, Dir: "out"}, failingSaver{})
	var ioErr *hrbox.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if ioErr.Path != "out/doc.pdf" {
		t.Fatalf("IOError path = %q", ioErr.Path)
	}
}

func TestDownloadEmptyFileIndex(t *testing.T) {
	srv := newServer(t)
	s := newLoggedInSession(t, srv)

	_, err := hrbox.Download(newTestContext(t), s, hrbox.Target{Document: hrbox.Document{Name: "x"}}, &dirSaver{root: t.TempDir()})
	var protoErr *hrbox.ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if got := srv.CountPrefix(hrbox.DocumentsPath + "/"); got != 0 {
		t.Fatalf("expected no content request, got %d", got)
	}
}

func TestDownloadNonPDFStillSaved(t *testing.T) {
	srv := newServer(t)
	srv.Contents["8"] = []byte("plain text body")
	s := newLoggedInSession(t, srv)

	dir := t.TempDir()
	doc := hrbox.Document{Name: "notice", FileIndex: "8"}
	if _, err := hrbox.Download(newTestContext(t), s, hrbox.Target{Document: doc}, &dirSaver{root: dir}); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "notice.pdf")); err != nil {
		t.Fatalf("file not saved: %v", err)
	}
}

func TestDownloadWithProgress(t *testing.T) {
	srv := newServer(t)
	content := hrboxtest.PDF(strings.Repeat("x", 10000))
	srv.Contents["9"] = content
	s := newLoggedInSession(t, srv)

	var last, lastTotal int64
	calls := 0
	onProgress := func(read, total int64) {
		if read < last {
			t.Errorf("progress went backwards: %d after %d", read, last)
		}
		last, lastTotal = read, total
		calls++
	}
	doc := hrbox.Document{Name: "big", FileIndex: "9"}
	n, err := hrbox.DownloadWithProgress(newTestContext(t), s, hrbox.Target{Document: doc}, &dirSaver{root: t.TempDir()}, onProgress)
	if err != nil {
		t.Fatalf("DownloadWithProgress failed: %v", err)
	}
	if calls == 0 {
		t.Fatal("progress callback never called")
	}
	if last != n || lastTotal != int64(len(content)) {
		t.Fatalf("last progress %d/%d, want %d/%d", last, lastTotal, n, len(content))
	}
}
