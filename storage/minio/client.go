package minio

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	config "github.com/hrbox-pull/hrbox-pull/config/storage"
	"github.com/hrbox-pull/hrbox-pull/pkg/enums/ctxkey"
	storenum "github.com/hrbox-pull/hrbox-pull/pkg/enums/storage"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Minio struct {
	config config.MinioStorageConfig
	client *minio.Client
	logger *log.Logger
}

func (m *Minio) Init(ctx context.Context, cfg config.StorageConfig) error {
	minioConfig, ok := cfg.(*config.MinioStorageConfig)
	if !ok {
		return fmt.Errorf("failed to cast minio config")
	}
	if err := minioConfig.Validate(); err != nil {
		return err
	}
	m.config = *minioConfig
	m.config.BasePath = strings.Trim(m.config.BasePath, "/")
	m.logger = log.FromContext(ctx).WithPrefix(fmt.Sprintf("minio[%s]", m.config.Name))

	client, err := minio.New(m.config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(m.config.AccessKeyID, m.config.SecretAccessKey, ""),
		Secure: m.config.UseSSL,
		Region: m.config.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, m.config.BucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", m.config.BucketName)
	}

	m.client = client
	return nil
}

func (m *Minio) Type() storenum.StorageType {
	return storenum.Minio
}

func (m *Minio) Name() string {
	return m.config.Name
}

func (m *Minio) JoinStoragePath(p string) string {
	return path.Join(m.config.BasePath, p)
}

// Save replaces the object at storagePath. The object only becomes visible
// when the upload completes.
func (m *Minio) Save(ctx context.Context, r io.Reader, storagePath string) error {
	storagePath = strings.TrimPrefix(storagePath, "/")
	size := int64(-1)
	if length, ok := ctx.Value(ctxkey.ContentLength).(int64); ok && length >= 0 {
		size = length
	}
	m.logger.Debugf("Uploading %s (size %d)", storagePath, size)

	info, err := m.client.PutObject(ctx, m.config.BucketName, storagePath, r, size, minio.PutObjectOptions{
		ContentType: contentType(storagePath),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to minio: %w", err)
	}
	m.logger.Debugf("Uploaded %d bytes to %s", info.Size, storagePath)
	return nil
}

func (m *Minio) Exists(ctx context.Context, storagePath string) bool {
	m.logger.Debugf("Checking if file exists at %s", storagePath)
	_, err := m.client.StatObject(ctx, m.config.BucketName, strings.TrimPrefix(storagePath, "/"), minio.StatObjectOptions{})
	return err == nil
}

func contentType(storagePath string) string {
	if strings.EqualFold(path.Ext(storagePath), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}
