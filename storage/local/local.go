package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/hrbox-pull/hrbox-pull/common/utils/fsutil"
	config "github.com/hrbox-pull/hrbox-pull/config/storage"
	storenum "github.com/hrbox-pull/hrbox-pull/pkg/enums/storage"
)

type Local struct {
	config config.LocalStorageConfig
	logger *log.Logger
}

func (l *Local) Init(ctx context.Context, cfg config.StorageConfig) error {
	localConfig, ok := cfg.(*config.LocalStorageConfig)
	if !ok {
		return fmt.Errorf("failed to cast local config")
	}
	if err := localConfig.Validate(); err != nil {
		return err
	}
	l.config = *localConfig
	l.logger = log.FromContext(ctx).WithPrefix(fmt.Sprintf("local[%s]", l.config.Name))
	if !fileutil.IsExist(localConfig.BasePath) {
		if err := os.MkdirAll(localConfig.BasePath, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create local storage directory: %w", err)
		}
	}
	return nil
}

func (l *Local) Type() storenum.StorageType {
	return storenum.Local
}

func (l *Local) Name() string {
	return l.config.Name
}

func (l *Local) JoinStoragePath(p string) string {
	return filepath.Join(l.config.BasePath, filepath.FromSlash(p))
}

// Save writes r to storagePath through a temporary sibling file, replacing
// any existing file only once the content is complete.
func (l *Local) Save(ctx context.Context, r io.Reader, storagePath string) error {
	l.logger.Debugf("Saving file to %s", storagePath)
	absPath, err := filepath.Abs(storagePath)
	if err != nil {
		return err
	}
	n, err := fsutil.WriteFileAtomic(absPath, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		return err
	}
	l.logger.Debugf("Wrote %d bytes to %s", n, absPath)
	return nil
}

func (l *Local) Exists(ctx context.Context, storagePath string) bool {
	absPath, err := filepath.Abs(storagePath)
	if err != nil {
		return false
	}
	return fileutil.IsExist(absPath)
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
