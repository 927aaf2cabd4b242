package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/hrbox-pull/hrbox-pull/config"
	sc "github.com/hrbox-pull/hrbox-pull/config/storage"
	storenum "github.com/hrbox-pull/hrbox-pull/pkg/enums/storage"
	"github.com/hrbox-pull/hrbox-pull/storage/local"
	"github.com/hrbox-pull/hrbox-pull/storage/minio"
	"github.com/hrbox-pull/hrbox-pull/storage/webdav"
)

const DefaultName = config.DefaultStorageName

type Storage interface {
	Init(ctx context.Context, cfg sc.StorageConfig) error
	Type() storenum.StorageType
	Name() string
	// JoinStoragePath maps a relative document path into the storage.
	JoinStoragePath(p string) string
	// Save must not leave a partial object under storagePath.
	Save(ctx context.Context, r io.Reader, storagePath string) error
	Exists(ctx context.Context, storagePath string) bool
}

var ErrStorageNameEmpty = errors.New("storage name is empty")

type StorageConstructor func() Storage

var storageConstructors = map[storenum.StorageType]StorageConstructor{
	storenum.Local:  func() Storage { return new(local.Local) },
	storenum.Webdav: func() Storage { return new(webdav.Webdav) },
	storenum.Minio:  func() Storage { return new(minio.Minio) },
}

func NewStorage(ctx context.Context, cfg sc.StorageConfig) (Storage, error) {
	constructor, ok := storageConstructors[cfg.GetType()]
	if !ok {
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.GetType())
	}

	storage := constructor()
	if err := storage.Init(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to init %s storage: %w", cfg.GetName(), err)
	}

	return storage, nil
}

var (
	mu       sync.Mutex
	Storages = make(map[string]Storage)
)

// GetStorageByName returns a configured storage, creating it on first use.
func GetStorageByName(ctx context.Context, name string) (Storage, error) {
	if name == "" {
		return nil, ErrStorageNameEmpty
	}
	mu.Lock()
	defer mu.Unlock()

	if storage, ok := Storages[name]; ok {
		return storage, nil
	}
	cfg := config.C().GetStorageByName(name)
	if cfg == nil {
		return nil, fmt.Errorf("storage %s not found", name)
	}

	storage, err := NewStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	Storages[name] = storage
	return storage, nil
}

// Resolve picks the storage documents are saved to. An empty name selects
// the configured default, and without one a local storage at the output
// directory.
func Resolve(ctx context.Context, name string) (Storage, error) {
	if name == "" {
		name = config.C().Storage
	}
	if name != "" && (name != DefaultName || config.C().GetStorageByName(name) != nil) {
		return GetStorageByName(ctx, name)
	}

	log.FromContext(ctx).Debug("Using output directory", "path", config.C().Output)
	return NewStorage(ctx, &sc.LocalStorageConfig{
		BaseConfig: sc.BaseConfig{
			Name:   DefaultName,
			Type:   storenum.Local.String(),
			Enable: true,
		},
		BasePath: config.C().Output,
	})
}
