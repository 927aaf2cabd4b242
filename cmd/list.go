package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-yaml"
	"github.com/hrbox-pull/hrbox-pull/config"
	"github.com/hrbox-pull/hrbox-pull/core"
	"github.com/hrbox-pull/hrbox-pull/pkg/hrbox"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all documents without downloading them",
	RunE:    List,
}

func init() {
	listCmd.Flags().StringP("format", "f", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(listCmd)
}

func List(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	switch format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q, use table, json or yaml", format)
	}

	ctx, _ := core.WithRunID(cmd.Context())
	session, err := core.Connect(ctx, sessionOptions(config.C()))
	if err != nil {
		return err
	}
	catalog, err := hrbox.FetchAll(ctx, session)
	if err != nil {
		return err
	}
	return writeCatalog(cmd.OutOrStdout(), catalog, format, config.C().Extension)
}

func writeCatalog(w io.Writer, catalog *hrbox.Catalog, format, ext string) error {
	switch format {
	case "json":
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	case "yaml":
		data, err := yaml.Marshal(catalog)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "NAME", "FILE", "DATE", "FOLDER", "INDEX")
	for i, doc := range catalog.Documents {
		target := hrbox.Target{Document: doc, Ext: ext}
		t.Row(fmt.Sprint(i+1), doc.Name, target.FileName(), doc.Date, doc.Folder, doc.FileIndex)
	}
	_, err := fmt.Fprintf(w, "%s\n%d of %d documents, %d unread\n", t.Render(), catalog.Retrieved, catalog.Total, catalog.UnreadCount)
	return err
}
