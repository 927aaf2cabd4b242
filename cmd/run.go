package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/hrbox-pull/hrbox-pull/cmd/progress"
	"github.com/hrbox-pull/hrbox-pull/config"
	"github.com/hrbox-pull/hrbox-pull/core"
	"github.com/hrbox-pull/hrbox-pull/pkg/hrbox"
	"github.com/hrbox-pull/hrbox-pull/storage"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func Run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := log.FromContext(ctx)
	c := config.C()

	stor, err := storage.Resolve(ctx, c.Storage)
	if err != nil {
		return err
	}

	opts := core.PullOptions{
		Workers: c.Workers,
		Ext:     c.Extension,
	}
	if c.Progress && !term.IsTerminal(int(os.Stderr.Fd())) {
		logger.Warn("Progress bar disabled, stderr is not a terminal")
		c.Progress = false
	}
	if c.Progress {
		// the bar replaces per document info lines
		if logger.GetLevel() == log.InfoLevel {
			logger.SetLevel(log.WarnLevel)
		}
		opts.Progress = progress.New(ctx)
	}

	result, err := core.Run(ctx, sessionOptions(c), stor, opts)
	if err != nil {
		return err
	}
	logger.Info("All documents saved", "storage", stor.Name(), "result", result.String())
	return nil
}

func sessionOptions(c config.Config) core.Options {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = hrbox.BaseURL(c.Subdomain)
	}
	return core.Options{
		BaseURL: baseURL,
		Credentials: hrbox.Credentials{
			Username: c.Username,
			Password: c.Password,
		},
		Session: hrbox.Options{
			Timeout:   c.RequestTimeout(),
			Proxy:     c.Proxy,
			UserAgent: c.UserAgent,
		},
	}
}
