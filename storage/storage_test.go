package storage_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/hrbox-pull/hrbox-pull/config"
	storenum "github.com/hrbox-pull/hrbox-pull/pkg/enums/storage"
	"github.com/hrbox-pull/hrbox-pull/storage"
	"github.com/spf13/viper"
)

func initConfig(t *testing.T, output, archive string) context.Context {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	fp := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf(`subdomain = "acme"
username = "alice"
password = "secret"
output = %q

[[storages]]
name = "archive"
type = "local"
enable = true
base_path = %q
`, output, archive)
	if err := os.WriteFile(fp, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := log.WithContext(context.Background(), log.NewWithOptions(nil, log.Options{}))
	if err := config.Init(ctx, fp); err != nil {
		t.Fatalf("config.Init failed: %v", err)
	}
	return ctx
}

func TestResolve(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out")
	archive := filepath.Join(t.TempDir(), "archive")
	ctx := initConfig(t, output, archive)

	tests := []struct {
		name     string
		want     string
		wantBase string
	}{
		{name: "", want: storage.DefaultName, wantBase: output},
		{name: "local", want: storage.DefaultName, wantBase: output},
		{name: "archive", want: "archive", wantBase: archive},
	}
	for _, tc := range tests {
		t.Run(tc.want+"/"+tc.name, func(t *testing.T) {
			stor, err := storage.Resolve(ctx, tc.name)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tc.name, err)
			}
			if stor.Name() != tc.want || stor.Type() != storenum.Local {
				t.Fatalf("Resolve(%q) = %s (%s)", tc.name, stor.Name(), stor.Type())
			}
			if got := stor.JoinStoragePath("2024/doc.pdf"); got != filepath.Join(tc.wantBase, "2024", "doc.pdf") {
				t.Fatalf("JoinStoragePath = %q", got)
			}
			if _, err := os.Stat(tc.wantBase); err != nil {
				t.Fatalf("base dir not created: %v", err)
			}
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	ctx := initConfig(t, t.TempDir(), t.TempDir())
	if _, err := storage.Resolve(ctx, "nas"); err == nil {
		t.Fatal("expected error for unconfigured storage")
	}
}

func TestGetStorageByNameEmpty(t *testing.T) {
	if _, err := storage.GetStorageByName(context.Background(), ""); err != storage.ErrStorageNameEmpty {
		t.Fatalf("err = %v, want ErrStorageNameEmpty", err)
	}
}
