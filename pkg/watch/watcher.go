// Package watch feeds images dropped into a directory to the batch runner.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/menta2k/image-cropper/internal/utils"
	"github.com/menta2k/image-cropper/pkg/batch"
	"github.com/menta2k/image-cropper/pkg/output"
	"github.com/menta2k/image-cropper/pkg/processing"
	"github.com/menta2k/image-cropper/pkg/types"
)

// DefaultDebounce is how long a burst of file events settles before it is processed
const DefaultDebounce = 500 * time.Millisecond

// Ingester validates a loaded file as an image
type Ingester interface {
	Ingest(f types.File) (types.SourceImage, error)
}

// Options configures a watcher
type Options struct {
	Target   types.TargetDimension
	Prefix   string
	Debounce time.Duration
	// OnReport is called after each burst has been exported
	OnReport func(batch.Report)
}

// Watcher exports every image written to a directory. Files that arrive together
// form one batch job; jobs run one after another.
type Watcher struct {
	ingester Ingester
	runner   *batch.Runner
	sink     output.Sink
	opts     Options
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
}

// New creates a watcher on dir
func New(dir string, ingester Ingester, runner *batch.Runner, sink output.Sink, opts Options, logger zerolog.Logger) (*Watcher, error) {
	if err := opts.Target.Validate(); err != nil {
		return nil, err
	}
	if !utils.DirExists(dir) {
		return nil, fmt.Errorf("watch %s: %w", dir, utils.ErrNotDirectory)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Prefix == "" {
		opts.Prefix = batch.DefaultPrefix
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch folder %s: %w", dir, err)
	}

	return &Watcher{
		ingester: ingester,
		runner:   runner,
		sink:     sink,
		opts:     opts,
		logger:   logger.With().Str("component", "watch").Str("dir", dir).Logger(),
		watcher:  fsWatcher,
	}, nil
}

// Run blocks until ctx is canceled or the watcher fails
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	bursts := make(chan []string)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(bursts)
		return w.collect(ctx, w.watcher.Events, w.watcher.Errors, bursts)
	})

	g.Go(func() error {
		for paths := range bursts {
			_, err := w.Process(ctx, paths)
			switch {
			case err == nil:
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, types.ErrEmptyBatch):
				w.logger.Debug().Strs("paths", paths).Msg("nothing to export")
			default:
				w.logger.Error().Err(err).Msg("batch failed")
			}
		}
		return nil
	})

	w.logger.Info().Msg("watching for images")
	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// collect groups create/write events into debounced bursts of distinct paths.
// Events keep being read while earlier bursts wait for the worker.
func (w *Watcher) collect(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, bursts chan<- []string) error {
	var pending []string
	var ready [][]string
	seen := map[string]bool{}
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		// Only offer a burst when one is ready
		var out chan<- []string
		var next []string
		if len(ready) > 0 {
			out = bursts
			next = ready[0]
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case out <- next:
			ready = ready[1:]

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			base := filepath.Base(event.Name)
			// Hidden files and our own artifacts are ignored
			if strings.HasPrefix(base, ".") || strings.HasPrefix(base, w.opts.Prefix+"_") || !utils.IsImageFile(base) {
				continue
			}
			if !seen[event.Name] {
				seen[event.Name] = true
				pending = append(pending, event.Name)
			}
			timer.Reset(w.opts.Debounce)

		case <-timer.C:
			if len(pending) > 0 {
				ready = append(ready, pending)
			}
			pending = nil
			seen = map[string]bool{}

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// Process exports the images at paths as one batch job. Unreadable or
// undecodable files are skipped before the job starts.
func (w *Watcher) Process(ctx context.Context, paths []string) (batch.Report, error) {
	items := make([]types.SourceImage, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			w.logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable file")
			continue
		}
		name := utils.SanitizeFilename(filepath.Base(path))
		src, err := w.ingester.Ingest(types.File{
			Name:     name,
			MIMEType: processing.DetectMIMEType(name, data),
			Data:     data,
		})
		if err != nil {
			w.logger.Warn().Err(err).Str("path", path).Msg("skipping undecodable file")
			continue
		}
		items = append(items, src)
	}
	if len(items) == 0 {
		return batch.Report{}, types.ErrEmptyBatch
	}

	job, err := batch.NewJob(items, w.opts.Target, w.opts.Prefix)
	if err != nil {
		return batch.Report{}, err
	}
	report, err := w.runner.Run(ctx, job, w.sink)
	if w.opts.OnReport != nil {
		w.opts.OnReport(report)
	}
	return report, err
}
