package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/rs/xid"
	"golang.org/x/text/unicode/norm"
)

const invalidPathChars = `<>:"/\|?*`

// NormalizePathname turns an arbitrary display name into a single safe path
// element: separators, reserved and control characters become '_', trailing
// dots and spaces are dropped. The result is NFC normalized.
func NormalizePathname(name string) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(name) {
		if unicode.IsControl(r) || strings.ContainsRune(invalidPathChars, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(strings.TrimSpace(b.String()), " .")
}

type File struct {
	*os.File
}

func (f *File) Remove() error {
	return os.Remove(f.Name())
}

func (f *File) CloseAndRemove() error {
	if err := f.Close(); err != nil {
		f.Remove()
		return err
	}
	return f.Remove()
}

// CreateTemp creates a hidden temporary file next to fp, creating the
// directory if needed.
func CreateTemp(fp string) (*File, error) {
	dir := filepath.Dir(fp)
	if err := fileutil.CreateDir(dir + string(filepath.Separator)); err != nil {
		return nil, err
	}
	name := fmt.Sprintf(".%s.%s.part", filepath.Base(fp), xid.New().String())
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, err
	}
	return &File{File: file}, nil
}

// WriteFileAtomic copies r to fp. The content becomes visible under fp only
// once it has been fully written, an existing file is replaced.
func WriteFileAtomic(fp string, r io.Reader) (int64, error) {
	tmp, err := CreateTemp(fp)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.CloseAndRemove()
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.CloseAndRemove()
		return 0, err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.CloseAndRemove()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		tmp.Remove()
		return 0, err
	}
	if err := os.Rename(tmp.Name(), fp); err != nil {
		tmp.Remove()
		return 0, err
	}
	return n, nil
}
