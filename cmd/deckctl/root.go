package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/youruser/therapydeck/internal/cards"
	"github.com/youruser/therapydeck/internal/config"
	"github.com/youruser/therapydeck/internal/logger"
	"github.com/youruser/therapydeck/internal/util"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	keyColor  = color.New(color.FgCyan)
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "deckctl",
		Short: "Work with therapy card game files",
		Long: `deckctl resolves card game drafts, prints deck lists, removes chroma-key
backgrounds and exports print-ready PDFs without running the server.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "therapydeck.toml", "config file (missing file uses defaults)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "trace, debug, info, warn, error or fail")

	root.AddCommand(
		newResolveCmd(opts),
		newDeckListCmd(),
		newExportCmd(opts),
		newPreviewCmd(opts),
		newChromaCmd(),
		newInitConfigCmd(),
	)
	return root
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(o.configPath)
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	return slog.New(logger.NewHandler(w, logger.ParseLevel(o.logLevel)))
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := util.WriteFileAtomic(path, data, 0o644); err != nil {
		return err
	}
	okColor.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func readContent(cmd *cobra.Command, path string) (*cards.Content, error) {
	raw, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	var c cards.Content
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse content %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("content %s: %w", path, err)
	}
	return &c, nil
}
