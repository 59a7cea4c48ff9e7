// Package imagecropper crops and exports images at fixed target sizes.
//
// It wires the pieces under pkg/ into a ready-to-use toolkit: a processor that
// decodes and encodes images, an interactive cropper for single-image edits, and
// a sequential batch runner that cover-fits every image to one target size.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/menta2k/image-cropper"
//		"github.com/menta2k/image-cropper/pkg/cropper"
//	)
//
//	func main() {
//		ic := imagecropper.New()
//
//		// Cover-fit two photos to the square preset
//		report, err := ic.ProcessFiles(context.Background(),
//			[]string{"a.jpg", "b.png"}, cropper.Square.Target(), "out")
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Printf("exported %d of %d\n", report.Succeeded, report.Attempted)
//	}
//
// The package consists of these components:
//
//  1. Cropper (pkg/cropper): the cover-fit calculator, templates and crop handles
//  2. Processing (pkg/processing): decoding, cover rendering and encoding
//  3. Batch (pkg/batch): the sequential batch runner
//  4. Session (pkg/session): the editing state of one user
//  5. Output (pkg/output): where artifacts are delivered
package imagecropper

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/menta2k/image-cropper/internal/utils"
	"github.com/menta2k/image-cropper/pkg/batch"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/output"
	"github.com/menta2k/image-cropper/pkg/processing"
	"github.com/menta2k/image-cropper/pkg/session"
	"github.com/menta2k/image-cropper/pkg/types"
)

// Version of the image cropper library
const Version = "1.0.0"

// Config configures an ImageCropper
type Config struct {
	Output   processing.Options
	Session  session.Options
	Throttle time.Duration
	// Yield replaces the pause between batch items; nil sleeps for Throttle
	Yield  batch.YieldFunc
	OnItem func(batch.ItemResult)
	Logger zerolog.Logger
}

// DefaultConfig returns PNG output, a square target and the default throttle
func DefaultConfig() Config {
	return Config{
		Output:   processing.DefaultOptions(),
		Session:  session.DefaultOptions(),
		Throttle: batch.DefaultThrottle,
		Logger:   zerolog.Nop(),
	}
}

// ImageCropper provides a high-level interface for cropping and exporting images
type ImageCropper struct {
	config    Config
	processor *processing.Processor
	cropper   cropper.Cropper
	runner    *batch.Runner
	logger    zerolog.Logger
}

// New creates a new ImageCropper with default configuration
func New() *ImageCropper {
	ic, err := NewWithConfig(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return ic
}

// NewWithConfig creates a new ImageCropper with custom configuration
func NewWithConfig(cfg Config) (*ImageCropper, error) {
	processor, err := processing.NewProcessorWithOptions(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("output options: %w", err)
	}
	if err := cfg.Session.Target.Validate(); err != nil {
		return nil, fmt.Errorf("session target: %w", err)
	}

	runner := batch.NewRunner(processor, batch.Config{
		Throttle: cfg.Throttle,
		Yield:    cfg.Yield,
		OnItem:   cfg.OnItem,
	}, cfg.Logger)

	return &ImageCropper{
		config:    cfg,
		processor: processor,
		cropper:   cropper.New(),
		runner:    runner,
		logger:    cfg.Logger,
	}, nil
}

// Processor returns the image processor
func (ic *ImageCropper) Processor() *processing.Processor {
	return ic.processor
}

// Runner returns the batch runner
func (ic *ImageCropper) Runner() *batch.Runner {
	return ic.runner
}

// NewSession opens an empty editing session
func (ic *ImageCropper) NewSession() *session.Session {
	return ic.newSession(ic.config.Session)
}

func (ic *ImageCropper) newSession(opts session.Options) *session.Session {
	return session.New(ic.processor, ic.cropper, ic.runner, opts, ic.logger)
}

// Fit computes where a source of sw x sh is drawn to cover a tw x th canvas
func (ic *ImageCropper) Fit(sw, sh, tw, th float64) (types.DrawRect, error) {
	return cropper.CoverRect(sw, sh, tw, th)
}

// Templates returns the configured target size presets
func (ic *ImageCropper) Templates() []cropper.Template {
	return ic.config.Session.Templates
}

// Template looks up a preset by name
func (ic *ImageCropper) Template(name string) (cropper.Template, error) {
	return cropper.LookupTemplate(ic.config.Session.Templates, name)
}

// LoadFiles reads files from disk as uploads
func (ic *ImageCropper) LoadFiles(paths []string) ([]types.File, error) {
	files := make([]types.File, 0, len(paths))
	for _, path := range paths {
		f, err := ic.processor.LoadFile(path)
		if err != nil {
			return nil, err
		}
		f.Name = utils.SanitizeFilename(f.Name)
		files = append(files, f)
	}
	return files, nil
}

// ProcessFiles is a convenience function that uploads the files into a fresh
// session and batch-exports them at target into outDir
func (ic *ImageCropper) ProcessFiles(ctx context.Context, paths []string, target types.TargetDimension, outDir string) (batch.Report, error) {
	if err := target.Validate(); err != nil {
		return batch.Report{}, err
	}
	files, err := ic.LoadFiles(paths)
	if err != nil {
		return batch.Report{}, err
	}
	sink, err := output.NewDirSink(outDir)
	if err != nil {
		return batch.Report{}, err
	}

	opts := ic.config.Session
	opts.Target = target
	s := ic.newSession(opts)
	defer s.Close()

	result, err := s.Upload(ctx, files)
	if err != nil {
		return batch.Report{}, fmt.Errorf("upload failed: %w", err)
	}
	for _, f := range result.Failed {
		ic.logger.Warn().Err(f.Err).Str("name", f.Name).Msg("image skipped")
	}

	return s.ExportBatch(ctx, sink)
}

// Edit describes the changes applied to one image before it is exported
type Edit struct {
	Template  string
	Width     int
	Height    int
	KeepRatio *bool
	Rotate    int
	FlipH     bool
	FlipV     bool
	Crop      *image.Rectangle
}

// Apply runs the edit against the active image of s
func (e Edit) Apply(s *session.Session) error {
	if e.KeepRatio != nil {
		if err := s.SetKeepRatio(*e.KeepRatio); err != nil {
			return err
		}
	}
	if e.Template != "" {
		if err := s.ApplyTemplate(e.Template); err != nil {
			return err
		}
	}
	if e.Width > 0 {
		if err := s.SetWidth(e.Width); err != nil {
			return err
		}
	}
	if e.Height > 0 {
		if err := s.SetHeight(e.Height); err != nil {
			return err
		}
	}
	if e.Rotate != 0 {
		if err := s.Rotate(e.Rotate); err != nil {
			return err
		}
	}
	if e.FlipH {
		if err := s.Flip(cropper.AxisX); err != nil {
			return err
		}
	}
	if e.FlipV {
		if err := s.Flip(cropper.AxisY); err != nil {
			return err
		}
	}
	if e.Crop != nil {
		if err := s.SetCropBox(*e.Crop); err != nil {
			return err
		}
	}
	return nil
}

// ExportFile edits a single image and exports it into outDir. It returns the
// artifact and the key it was stored under.
func (ic *ImageCropper) ExportFile(ctx context.Context, path string, edit Edit, outDir string) (types.Artifact, string, error) {
	files, err := ic.LoadFiles([]string{path})
	if err != nil {
		return types.Artifact{}, "", err
	}
	sink, err := output.NewDirSink(outDir)
	if err != nil {
		return types.Artifact{}, "", err
	}

	s := ic.NewSession()
	defer s.Close()

	result, err := s.Upload(ctx, files)
	if err != nil {
		return types.Artifact{}, "", err
	}
	if len(result.Failed) > 0 {
		return types.Artifact{}, "", result.Failed[0]
	}
	if err := edit.Apply(s); err != nil {
		return types.Artifact{}, "", fmt.Errorf("edit %s: %w", path, err)
	}

	var key string
	s.SetListener(func(ev session.Event) {
		if exported, ok := ev.(session.Exported); ok {
			key = exported.Key
		}
	})
	artifact, err := s.ExportSingle(ctx, sink)
	if err != nil {
		return types.Artifact{}, "", err
	}
	return artifact, key, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
