package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/menta2k/image-cropper/pkg/batch"
	"github.com/menta2k/image-cropper/pkg/output"
	"github.com/menta2k/image-cropper/pkg/watch"
)

var (
	watchFlags    targetFlags
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Export images as they are added to a directory",
	Long: `Watch a directory and cover-fit every image written to it. Files that
arrive together are exported as one batch; batches run one after another.
Stop with Ctrl-C.

Example:
  image-cropper watch inbox/ -t og -o out/`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchFlags.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before a burst of files is exported")
}

func runWatch(cmd *cobra.Command, args []string) error {
	watchFlags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	target, err := resolveTarget(cfg, &watchFlags)
	if err != nil {
		return err
	}

	ic, err := newImageCropper(cfg, target, nil)
	if err != nil {
		return err
	}
	sink, err := output.NewDirSink(cfg.Export.OutputDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w, err := watch.New(args[0], ic.Processor(), ic.Runner(), sink, watch.Options{
		Target:   target,
		Prefix:   cfg.Export.BatchPrefix,
		Debounce: watchDebounce,
		OnReport: func(r batch.Report) {
			fmt.Fprintf(out, "%s: %d exported, %d skipped\n", r.JobID, r.Succeeded, r.Skipped)
		},
	}, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Watching %s, exporting at %s to %s\n", args[0], target, cfg.Export.OutputDir)
	return w.Run(ctx)
}
