package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/youruser/therapydeck/internal/cards"
	"github.com/youruser/therapydeck/internal/deck"
)

func newResolveCmd(root *rootOptions) *cobra.Command {
	var (
		output   string
		csvInput bool
		deckName string
	)
	cmd := &cobra.Command{
		Use:   "resolve [draft.json|cards.csv]",
		Short: "Resolve a label-based draft into card game content",
		Long: `Resolve reads a draft that references backgrounds and icons by label, assigns
ids and asset keys, applies text defaults and writes the content JSON.
CSV card lists are accepted with --csv or a .csv extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var draft cards.Draft
			if csvInput || strings.EqualFold(filepath.Ext(args[0]), ".csv") {
				draft, err = cards.LoadDraftCSV(bytes.NewReader(raw))
			} else {
				draft, err = cards.ParseDraft(raw)
			}
			if err != nil {
				return err
			}
			if deckName != "" {
				draft.DeckName = deckName
			}

			content := cards.NewResolver().PostProcess(draft)
			out, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, output, append(out, '\n')); err != nil {
				return err
			}
			if len(content.Backgrounds) == 0 {
				warnColor.Fprintln(cmd.ErrOrStderr(), "warning: the deck has no backgrounds")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&csvInput, "csv", false, "treat the input as a CSV card list")
	cmd.Flags().StringVar(&deckName, "name", "", "override the deck name")
	return cmd
}

func newDeckListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decklist [content.json]",
		Short: "Print the deck list of a card game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, line := range strings.Split(deck.ExportDeckText(*content), "\n") {
				if strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "total: ") {
					keyColor.Fprintln(w, line)
					continue
				}
				if _, err := w.Write([]byte(line + "\n")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
