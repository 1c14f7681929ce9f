package main

import (
	"fmt"

	"github.com/spf13/cobra"

	imagepkg "github.com/youruser/therapydeck/internal/image"
)

func newChromaCmd() *cobra.Command {
	var (
		output        string
		tolerance     int
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "chroma [image]",
		Short: "Make the #00FF00 regions of an image transparent",
		Long: `Chroma removes the key-green background or centre of a generated frame.
With --width and --height the image is first fitted onto a green canvas of
that size, the way generated icons are.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tolerance < 0 || tolerance > 255 {
				return fmt.Errorf("tolerance must be 0-255, got %d", tolerance)
			}
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			img, err := imagepkg.Decode(raw)
			if err != nil {
				return err
			}
			if width > 0 && height > 0 {
				img = imagepkg.FitToCanvas(img, width, height)
			}
			out, err := imagepkg.EncodePNG(imagepkg.ExtractChromaKey(img, tolerance))
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG (default stdout)")
	cmd.Flags().IntVarP(&tolerance, "tolerance", "t", imagepkg.DefaultTolerance, "key colour tolerance")
	cmd.Flags().IntVar(&width, "width", 0, "fit onto a canvas this wide")
	cmd.Flags().IntVar(&height, "height", 0, "fit onto a canvas this tall")
	return cmd
}
