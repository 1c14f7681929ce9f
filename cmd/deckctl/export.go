package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/youruser/therapydeck/internal/app"
	"github.com/youruser/therapydeck/internal/compositor"
	"github.com/youruser/therapydeck/internal/config"
	"github.com/youruser/therapydeck/internal/fonts"
	"github.com/youruser/therapydeck/internal/storage"
)

type renderFlags struct {
	assets       string
	cardsPerPage int
	output       string
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.assets, "assets", "a", "", "JSON object mapping asset keys to URLs (http, https, file, blob)")
	cmd.Flags().IntVarP(&f.cardsPerPage, "cards-per-page", "n", 0, "4, 6 or 9 (default from config)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
}

func (f *renderFlags) loadAssets() (map[string]string, error) {
	if f.assets == "" {
		return map[string]string{}, nil
	}
	raw, err := os.ReadFile(f.assets)
	if err != nil {
		return nil, err
	}
	m := map[string]string{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse assets %s: %w", f.assets, err)
	}
	return m, nil
}

type renderEnv struct {
	export config.ExportConfig
	loader compositor.SchemeLoader
	fonts  *fonts.Registry
	logger *slog.Logger
}

// newRenderEnv loads what rendering needs from the config. The blob store
// is attached only when its directory already exists.
func newRenderEnv(cmd *cobra.Command, root *rootOptions) (*renderEnv, error) {
	cfg, err := root.load()
	if err != nil {
		return nil, err
	}
	log := root.logger(cmd.ErrOrStderr())
	var blobs *storage.FileBlobStore
	if st, err := os.Stat(cfg.Storage.BlobDir); err == nil && st.IsDir() {
		if blobs, err = storage.NewFileBlobStore(cfg.Storage.BlobDir); err != nil {
			return nil, err
		}
	}
	reg, err := app.LoadFonts(cmd.Context(), cfg.Fonts, log)
	if err != nil {
		return nil, err
	}
	return &renderEnv{export: cfg.Export, loader: app.NewLoader(cfg.Export, blobs), fonts: reg, logger: log}, nil
}

func newExportCmd(root *rootOptions) *cobra.Command {
	var (
		f           renderFlags
		backs       bool
		noWatermark bool
		shareURL    string
	)
	cmd := &cobra.Command{
		Use:   "export [content.json]",
		Short: "Export a card game as a print-ready A4 PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args[0])
			if err != nil {
				return err
			}
			assets, err := f.loadAssets()
			if err != nil {
				return err
			}
			env, err := newRenderEnv(cmd, root)
			if err != nil {
				return err
			}

			exp := env.export
			opts := compositor.Options{
				CardsPerPage:     exp.CardsPerPage,
				IncludeCardBacks: exp.IncludeCardBacks || backs,
				Watermark:        exp.Watermark && !noWatermark,
				WatermarkText:    exp.WatermarkText,
				ShareURL:         shareURL,
			}
			if f.cardsPerPage != 0 {
				opts.CardsPerPage = f.cardsPerPage
			}
			for _, key := range content.AssetKeys() {
				if _, ok := assets[key]; !ok {
					warnColor.Fprintf(cmd.ErrOrStderr(), "warning: no asset for %s\n", key)
				}
			}

			pdf, err := compositor.Compose(cmd.Context(), content, assets, opts, env.loader, env.fonts, env.logger)
			if err != nil {
				return err
			}
			return writeOutput(cmd, f.output, pdf)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&backs, "backs", false, "interleave card back pages")
	cmd.Flags().BoolVar(&noWatermark, "no-watermark", false, "omit the watermark")
	cmd.Flags().StringVar(&shareURL, "share", "", "print a QR code linking to this URL on every front page")
	return cmd
}

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var (
		f      renderFlags
		cardID string
		scale  float64
	)
	cmd := &cobra.Command{
		Use:   "preview [content.json]",
		Short: "Render one card as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args[0])
			if err != nil {
				return err
			}
			if cardID == "" {
				if len(content.Cards) == 0 {
					return compositor.ErrEmptyDeck
				}
				cardID = content.Cards[0].ID
			}
			assets, err := f.loadAssets()
			if err != nil {
				return err
			}
			env, err := newRenderEnv(cmd, root)
			if err != nil {
				return err
			}
			opts := compositor.PreviewOptions{CardsPerPage: env.export.CardsPerPage, Scale: scale}
			if f.cardsPerPage != 0 {
				opts.CardsPerPage = f.cardsPerPage
			}
			out, err := compositor.RenderCardPNG(cmd.Context(), content, cardID, assets, opts, env.loader, env.fonts, env.logger)
			if err != nil {
				return err
			}
			return writeOutput(cmd, f.output, out)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&cardID, "card", "", "card id (default the first card)")
	cmd.Flags().Float64Var(&scale, "scale", 2, "pixels per PDF point")
	return cmd
}
