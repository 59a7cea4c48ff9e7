package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/menta2k/image-cropper/pkg/cropper"
)

var fitCmd = &cobra.Command{
	Use:   "fit <src-width> <src-height> <target-width> <target-height>",
	Short: "Print the cover-fit draw rectangle",
	Long: `Print where a source image is drawn so that it covers the target canvas,
centered. Negative offsets mean the image overflows and is cropped.

Example:
  image-cropper fit 1920 1080 1080 1080`,
	Args: cobra.ExactArgs(4),
	RunE: runFit,
}

func init() {
	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	var v [4]float64
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid dimension %q: %w", a, err)
		}
		v[i] = f
	}

	rect, err := cropper.CoverRect(v[0], v[1], v[2], v[3])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, rect)
	}
	fmt.Fprintf(out, "x=%g y=%g width=%g height=%g\n", rect.X, rect.Y, rect.Width, rect.Height)
	return nil
}
