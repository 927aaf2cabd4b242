package webdav

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/xid"

	config "github.com/hrbox-pull/hrbox-pull/config/storage"
	storenum "github.com/hrbox-pull/hrbox-pull/pkg/enums/storage"
)

var (
	ErrFailedToCreateDirectory = errors.New("webdav: failed to create directory")
	ErrFailedToWriteFile       = errors.New("webdav: failed to write file")
)

const cleanupTimeout = 30 * time.Second

type Webdav struct {
	config config.WebdavStorageConfig
	client *Client
	logger *log.Logger
}

func (w *Webdav) Init(ctx context.Context, cfg config.StorageConfig) error {
	webdavConfig, ok := cfg.(*config.WebdavStorageConfig)
	if !ok {
		return fmt.Errorf("failed to cast webdav config")
	}
	if err := webdavConfig.Validate(); err != nil {
		return err
	}
	w.config = *webdavConfig
	w.config.BasePath = strings.Trim(w.config.BasePath, "/")
	w.client = NewClient(w.config.URL, w.config.Username, w.config.Password, &http.Client{})
	w.logger = log.FromContext(ctx).WithPrefix(fmt.Sprintf("webdav[%s]", w.config.Name))
	return nil
}

func (w *Webdav) Type() storenum.StorageType {
	return storenum.Webdav
}

func (w *Webdav) Name() string {
	return w.config.Name
}

func (w *Webdav) JoinStoragePath(p string) string {
	return path.Join(w.config.BasePath, p)
}

// Save uploads to a hidden sibling first and moves it over storagePath
// once the upload succeeded.
func (w *Webdav) Save(ctx context.Context, r io.Reader, storagePath string) error {
	storagePath = strings.TrimPrefix(storagePath, "/")
	dir := path.Dir(storagePath)
	if err := w.client.MkDir(ctx, dir); err != nil {
		w.logger.Errorf("Failed to create directory %s: %v", dir, err)
		return fmt.Errorf("%w: %w", ErrFailedToCreateDirectory, err)
	}

	tmpPath := path.Join(dir, fmt.Sprintf(".%s.%s.part", path.Base(storagePath), xid.New().String()))
	w.logger.Debugf("Uploading %s via %s", storagePath, tmpPath)
	if err := w.client.WriteFile(ctx, tmpPath, r); err != nil {
		w.cleanup(tmpPath)
		return fmt.Errorf("%w: %w", ErrFailedToWriteFile, err)
	}
	if err := w.client.Move(ctx, tmpPath, storagePath); err != nil {
		w.cleanup(tmpPath)
		return fmt.Errorf("%w: %w", ErrFailedToWriteFile, err)
	}
	return nil
}

func (w *Webdav) Exists(ctx context.Context, storagePath string) bool {
	exists, err := w.client.Exists(ctx, storagePath)
	if err != nil {
		w.logger.Warnf("Failed to check %s: %v", storagePath, err)
		return false
	}
	return exists
}

// cleanup runs detached from the save context, which may already be canceled.
func (w *Webdav) cleanup(tmpPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if err := w.client.Delete(ctx, tmpPath); err != nil {
		w.logger.Warnf("Failed to remove %s: %v", tmpPath, err)
	}
}
