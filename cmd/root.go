package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/hrbox-pull/hrbox-pull/config"
	"github.com/hrbox-pull/hrbox-pull/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Download every document of an HR document box account",
	Long: `hrbox-pull logs into an HR document box account, lists all documents
and saves each one as <name>.pdf into the output directory or a configured storage.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              Run,
}

var (
	appLogger = log.Default()
	logCloser io.Closer
)

func init() {
	config.RegisterFlags(rootCmd)
}

// setup loads the configuration and puts the configured logger into the
// command context.
func setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := config.Init(ctx, config.GetConfigFile(cmd)); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c := config.C()
	l, closer, err := logger.New(cmd.ErrOrStderr(), logger.Options{
		Level:       c.Log.Level,
		File:        c.Log.File,
		MaxSize:     c.Log.MaxSize,
		BackupCount: c.Log.BackupCount,
	})
	if err != nil {
		return err
	}
	appLogger, logCloser = l, closer
	cmd.SetContext(log.WithContext(ctx, l))
	return nil
}

func Execute(ctx context.Context) error {
	defer func() {
		if logCloser != nil {
			logCloser.Close()
		}
	}()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		appLogger.Error("hrbox-pull failed", "error", err)
		return err
	}
	return nil
}
