// Package batch exports a list of images to a common target size, one at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/menta2k/image-cropper/pkg/output"
	"github.com/menta2k/image-cropper/pkg/types"
)

// DefaultThrottle is the pause between items
const DefaultThrottle = 100 * time.Millisecond

// ErrJobFinished is returned when running a job that already reached a terminal state
var ErrJobFinished = errors.New("batch job already finished")

// Renderer turns one source into one artifact
type Renderer interface {
	Decode(src types.SourceImage) (image.Image, error)
	RenderCover(img image.Image, target types.TargetDimension) (*image.NRGBA, error)
	Artifact(img image.Image, name string, index int, source string) (types.Artifact, error)
}

// YieldFunc pauses between items. It must return early with ctx.Err() when ctx is done.
type YieldFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ItemResult is reported after each item
type ItemResult struct {
	JobID string
	Index int // 1-based
	Name  string
	Key   string
	Err   error
}

// Config for the runner
type Config struct {
	Throttle time.Duration
	Yield    YieldFunc
	OnItem   func(ItemResult)
}

// DefaultConfig returns the runner defaults
func DefaultConfig() Config {
	return Config{Throttle: DefaultThrottle, Yield: Sleep}
}

// Runner processes batch jobs strictly sequentially: the next item starts only
// after the previous one has been delivered and the yield has returned.
type Runner struct {
	renderer Renderer
	config   Config
	logger   zerolog.Logger
}

// NewRunner creates a runner
func NewRunner(renderer Renderer, cfg Config, logger zerolog.Logger) *Runner {
	if cfg.Yield == nil {
		cfg.Yield = Sleep
	}
	if cfg.Throttle < 0 {
		cfg.Throttle = 0
	}
	return &Runner{
		renderer: renderer,
		config:   cfg,
		logger:   logger.With().Str("component", "batch").Logger(),
	}
}

// Run drives job to a terminal state. A cancelled ctx stops the job before the
// next item starts; artifacts already delivered are left in place.
func (r *Runner) Run(ctx context.Context, job *Job, sink output.Sink) (Report, error) {
	if job.state.Terminal() {
		return job.Report(), ErrJobFinished
	}
	start := time.Now()

	for {
		more, err := r.Step(ctx, job, sink)
		if err != nil {
			return job.Report(), err
		}
		if !more {
			break
		}
		if err := r.config.Yield(ctx, r.config.Throttle); err != nil && ctx.Err() == nil {
			return job.Report(), fmt.Errorf("yield: %w", err)
		}
	}

	report := job.Report()
	r.logger.Info().
		Str("job_id", job.ID).
		Int("attempted", report.Attempted).
		Int("succeeded", report.Succeeded).
		Int("skipped", report.Skipped).
		Dur("elapsed", time.Since(start)).
		Msg("batch complete")
	return report, nil
}

// Step processes exactly one item. It reports whether more items remain. When ctx
// is done before the item starts the job becomes Cancelled and ctx.Err() is returned.
func (r *Runner) Step(ctx context.Context, job *Job, sink output.Sink) (bool, error) {
	if job.state.Terminal() {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		job.state = StateCancelled
		r.logger.Info().Str("job_id", job.ID).Int("next", job.cursor+1).Msg("batch cancelled")
		return false, err
	}
	if job.cursor >= len(job.Items) {
		job.state = StateDone
		return false, nil
	}

	job.state = StateRunning
	idx := job.cursor
	item := job.Items[idx]
	job.cursor++
	job.report.Attempted++

	key, err := r.process(ctx, job, idx+1, item, sink)
	result := ItemResult{JobID: job.ID, Index: idx + 1, Name: item.Name, Key: key, Err: err}
	if err != nil {
		job.report.Skipped++
		job.report.Errors = append(job.report.Errors, &ItemError{Index: idx + 1, Name: item.Name, Err: err})
		r.logger.Warn().Err(err).Str("job_id", job.ID).Int("index", idx+1).Str("name", item.Name).Msg("skipping item")
	} else {
		job.report.Succeeded++
		job.report.Artifacts = append(job.report.Artifacts, key)
		r.logger.Debug().Str("job_id", job.ID).Int("index", idx+1).Str("key", key).Msg("item exported")
	}
	if r.config.OnItem != nil {
		r.config.OnItem(result)
	}

	if job.cursor >= len(job.Items) {
		job.state = StateDone
		return false, nil
	}
	return true, nil
}

func (r *Runner) process(ctx context.Context, job *Job, index int, item types.SourceImage, sink output.Sink) (string, error) {
	img, err := r.renderer.Decode(item)
	if err != nil {
		return "", err
	}
	canvas, err := r.renderer.RenderCover(img, job.Target)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", item.Name, err)
	}
	name := ArtifactName(job.Prefix, index, item.Name)
	artifact, err := r.renderer.Artifact(canvas, name, index, item.Name)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	key, err := sink.Put(ctx, artifact)
	if err != nil {
		return "", fmt.Errorf("deliver %s: %w", name, err)
	}
	return key, nil
}
