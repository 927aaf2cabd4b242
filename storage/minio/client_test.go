package minio

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	storconfig "github.com/hrbox-pull/hrbox-pull/config/storage"
	"github.com/hrbox-pull/hrbox-pull/pkg/enums/ctxkey"
	"github.com/minio/minio-go/v7"
)

func newTestContext(t *testing.T) context.Context {
	t.Helper()
	logger := log.NewWithOptions(nil, log.Options{ReportTimestamp: false})
	return log.WithContext(context.Background(), logger)
}

func newFakeMinio(t *testing.T) *Minio {
	t.Helper()

	backend := s3mem.New()
	fakeSrv := gofakes3.New(backend)
	ts := httptest.NewServer(fakeSrv.Server())
	t.Cleanup(ts.Close)

	if err := backend.CreateBucket("test-bucket"); err != nil {
		t.Fatalf("failed to create fake bucket: %v", err)
	}

	cfg := &storconfig.MinioStorageConfig{
		BaseConfig: storconfig.BaseConfig{
			Name:   "test-minio",
			Type:   "minio",
			Enable: true,
		},
		Endpoint:        strings.TrimPrefix(ts.URL, "http://"),
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret",
		BucketName:      "test-bucket",
		BasePath:        "/payslips/",
		Region:          "us-east-1",
	}

	m := &Minio{}
	if err := m.Init(newTestContext(t), cfg); err != nil {
		t.Fatalf("init minio failed: %v", err)
	}
	return m
}

func save(t *testing.T, m *Minio, content, key string) {
	t.Helper()
	ctx := context.WithValue(newTestContext(t), ctxkey.ContentLength, int64(len(content)))
	if err := m.Save(ctx, strings.NewReader(content), key); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}

func TestMinio_SaveOverwrites(t *testing.T) {
	m := newFakeMinio(t)
	key := m.JoinStoragePath("Payslip_2024_01.pdf")
	if key != "payslips/Payslip_2024_01.pdf" {
		t.Fatalf("unexpected key %s", key)
	}

	save(t, m, "%PDF-1.4 first", key)
	save(t, m, "%PDF-1.4 second", key)

	ctx := context.Background()
	if !m.Exists(ctx, key) {
		t.Fatalf("Exists should return true for saved key")
	}
	obj, err := m.client.GetObject(ctx, "test-bucket", key, minio.GetObjectOptions{})
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		t.Fatalf("read object failed: %v", err)
	}
	if string(data) != "%PDF-1.4 second" {
		t.Fatalf("content mismatch: %q", data)
	}

	count := 0
	for info := range m.client.ListObjects(ctx, "test-bucket", minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			t.Fatalf("ListObjects failed: %v", info.Err)
		}
		count++
	}
	if count != 1 {
		t.Fatalf("expected a single object, got %d", count)
	}
}

func TestMinio_ExistsMissing(t *testing.T) {
	m := newFakeMinio(t)
	if m.Exists(context.Background(), "payslips/missing.pdf") {
		t.Fatal("Exists should return false for missing key")
	}
}

func TestMinio_InitMissingBucket(t *testing.T) {
	backend := s3mem.New()
	ts := httptest.NewServer(gofakes3.New(backend).Server())
	defer ts.Close()

	m := &Minio{}
	err := m.Init(newTestContext(t), &storconfig.MinioStorageConfig{
		BaseConfig:      storconfig.BaseConfig{Name: "test-minio", Type: "minio", Enable: true},
		Endpoint:        strings.TrimPrefix(ts.URL, "http://"),
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret",
		BucketName:      "absent",
		Region:          "us-east-1",
	})
	if err == nil {
		t.Fatal("expected error for missing bucket")
	}
}
