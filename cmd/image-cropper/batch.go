package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/menta2k/image-cropper/internal/utils"
	"github.com/menta2k/image-cropper/pkg/batch"
)

var batchFlags targetFlags
var batchThrottle time.Duration

var batchCmd = &cobra.Command{
	Use:   "batch <file|dir>...",
	Short: "Cover-fit images to one target size",
	Long: `Export every image at the target size. Each image is scaled to cover the
target and centered; whatever overflows is cropped. Images are processed one
at a time and named batch_<n>_<original name>.

Images that fail to decode or write are reported and skipped.

Examples:
  image-cropper batch photos/ -t instagram -o out/
  image-cropper batch a.jpg b.png --width 800 --height 600 --format webp`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchFlags.register(batchCmd)
	batchCmd.Flags().DurationVar(&batchThrottle, "throttle", -1, "Pause between images (default from config)")
}

// batchSummary is the JSON form of a finished batch
type batchSummary struct {
	batch.Report
	State        string        `json:"state"`
	OutDir       string        `json:"out_dir"`
	SkippedItems []skippedItem `json:"skipped_items,omitempty"`
}

type skippedItem struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

func newBatchSummary(report batch.Report, outDir string) batchSummary {
	summary := batchSummary{Report: report, State: report.State.String(), OutDir: outDir}
	for _, e := range report.Errors {
		summary.SkippedItems = append(summary.SkippedItems, skippedItem{Index: e.Index, Name: e.Name, Error: e.Err.Error()})
	}
	return summary
}

func runBatch(cmd *cobra.Command, args []string) error {
	batchFlags.apply(cfg)
	if batchThrottle >= 0 {
		cfg.Export.Throttle = batchThrottle.String()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	target, err := resolveTarget(cfg, &batchFlags)
	if err != nil {
		return err
	}

	paths, err := utils.ExpandInputs(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ic, err := newImageCropper(cfg, target, func(res batch.ItemResult) {
		if jsonOutput {
			return
		}
		if res.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "  skip  #%d %s: %v\n", res.Index, res.Name, res.Err)
			return
		}
		size := "?"
		if info, err := os.Stat(filepath.Join(cfg.Export.OutputDir, res.Key)); err == nil {
			size = utils.FormatFileSize(info.Size())
		}
		fmt.Fprintf(out, "  ok    #%d %s (%s)\n", res.Index, res.Key, size)
	})
	if err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Fprintf(out, "Exporting %d file(s) at %s to %s\n", len(paths), target, cfg.Export.OutputDir)
	}
	start := time.Now()
	report, err := ic.ProcessFiles(cmd.Context(), paths, target, cfg.Export.OutputDir)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(out, newBatchSummary(report, cfg.Export.OutputDir))
	}

	fmt.Fprintf(out, "Done in %s: %d exported, %d skipped\n", formatDuration(time.Since(start)), report.Succeeded, report.Skipped)
	return nil
}
