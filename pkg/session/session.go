// Package session holds the editing state of one user: uploaded images, the
// active selection with its crop handle, and the export size.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/menta2k/image-cropper/pkg/batch"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/output"
	"github.com/menta2k/image-cropper/pkg/processing"
	"github.com/menta2k/image-cropper/pkg/types"
)

// ErrIndexOutOfRange is returned for an image index outside the working set
var ErrIndexOutOfRange = errors.New("image index out of range")

// DefaultMaxUploads caps the images accepted by one upload
const DefaultMaxUploads = 50

// Codec validates uploads and turns images into artifacts
type Codec interface {
	Ingest(f types.File) (types.SourceImage, error)
	Decode(src types.SourceImage) (image.Image, error)
	Artifact(img image.Image, name string, index int, source string) (types.Artifact, error)
}

// Options configures a session
type Options struct {
	MaxUploads   int
	Target       types.TargetDimension
	KeepRatio    bool
	Templates    []cropper.Template
	View         cropper.ViewOptions
	SinglePrefix string
	BatchPrefix  string
}

// DefaultOptions returns a square 1080 target with the ratio locked
func DefaultOptions() Options {
	return Options{
		MaxUploads:   DefaultMaxUploads,
		Target:       cropper.Square.Target(),
		KeepRatio:    true,
		Templates:    cropper.CommonTemplates(),
		View:         cropper.DefaultViewOptions(),
		SinglePrefix: "edited",
		BatchPrefix:  batch.DefaultPrefix,
	}
}

// FileError records an upload that could not be decoded
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// UploadResult describes what an upload ingested
type UploadResult struct {
	Added   []types.SourceImage
	Failed  []*FileError
	Ignored []string
}

// EditInfo describes the active image
type EditInfo struct {
	Name           string
	OriginalWidth  int
	OriginalHeight int
	Target         types.TargetDimension
	Format         string
}

// Session is the editing state of one user. Methods are safe for concurrent use;
// a batch export runs on a snapshot and does not block edits.
type Session struct {
	opts    Options
	codec   Codec
	cropper cropper.Cropper
	runner  *batch.Runner
	logger  zerolog.Logger

	mu          sync.Mutex
	listener    Listener
	pending     []Event
	images      []types.SourceImage
	current     int
	target      types.TargetDimension
	aspectRatio float64
	keepRatio   bool
	template    string
	handle      cropper.Handle
}

// New creates an empty session
func New(codec Codec, c cropper.Cropper, runner *batch.Runner, opts Options, logger zerolog.Logger) *Session {
	if opts.MaxUploads <= 0 {
		opts.MaxUploads = DefaultMaxUploads
	}
	if len(opts.Templates) == 0 {
		opts.Templates = cropper.CommonTemplates()
	}
	if opts.SinglePrefix == "" {
		opts.SinglePrefix = "edited"
	}
	if opts.BatchPrefix == "" {
		opts.BatchPrefix = batch.DefaultPrefix
	}
	if opts.Target.Validate() != nil {
		opts.Target = cropper.Square.Target()
	}
	return &Session{
		opts:        opts,
		codec:       codec,
		cropper:     c,
		runner:      runner,
		logger:      logger.With().Str("component", "session").Logger(),
		current:     -1,
		target:      opts.Target,
		aspectRatio: opts.Target.Ratio(),
		keepRatio:   opts.KeepRatio,
	}
}

// SetListener registers the event listener, replacing any previous one
func (s *Session) SetListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// do runs fn under the lock, then delivers the events it queued
func (s *Session) do(fn func() error) error {
	s.mu.Lock()
	err := fn()
	events := s.pending
	s.pending = nil
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		for _, ev := range events {
			listener(ev)
		}
	}
	return err
}

func (s *Session) queue(ev Event) {
	s.pending = append(s.pending, ev)
}

// Upload ingests image files. Non-image files are ignored; if none remain the
// upload fails with ErrInvalidFileType. More than MaxUploads images fail the whole
// upload with ErrUploadCountExceeded. Files that do not decode are skipped.
func (s *Session) Upload(ctx context.Context, files []types.File) (UploadResult, error) {
	var result UploadResult
	var valid []types.File
	for _, f := range files {
		mimeType := f.MIMEType
		if mimeType == "" {
			mimeType = processing.DetectMIMEType(f.Name, f.Data)
		}
		if !strings.HasPrefix(mimeType, "image/") {
			result.Ignored = append(result.Ignored, f.Name)
			continue
		}
		f.MIMEType = mimeType
		valid = append(valid, f)
	}

	if len(valid) == 0 {
		return UploadResult{}, fmt.Errorf("%w: no image files among %d offered", types.ErrInvalidFileType, len(files))
	}
	if len(valid) > s.opts.MaxUploads {
		return UploadResult{}, fmt.Errorf("%w: %d images offered, at most %d per upload", types.ErrUploadCountExceeded, len(valid), s.opts.MaxUploads)
	}

	for _, f := range valid {
		if err := ctx.Err(); err != nil {
			return UploadResult{}, err
		}
		src, err := s.codec.Ingest(f)
		if err != nil {
			s.logger.Warn().Err(err).Str("name", f.Name).Msg("skipping undecodable upload")
			result.Failed = append(result.Failed, &FileError{Name: f.Name, Err: err})
			continue
		}
		result.Added = append(result.Added, src)
	}

	err := s.do(func() error {
		prev, mark := len(s.images), len(s.pending)
		s.images = append(s.images, result.Added...)
		s.queue(ImagesAdded{Added: len(result.Added), Failed: len(result.Failed), Total: len(s.images)})
		if s.current < 0 && len(s.images) > 0 {
			if err := s.selectLocked(0); err != nil {
				// Nothing is ingested unless the first image can be opened
				s.images = s.images[:prev]
				s.pending = s.pending[:mark]
				return err
			}
		}
		return nil
	})
	if err != nil {
		return UploadResult{}, err
	}
	s.logger.Info().Int("added", len(result.Added)).Int("failed", len(result.Failed)).Int("ignored", len(result.Ignored)).Msg("upload complete")
	return result, nil
}

// Select makes the image at index the active one and opens a crop handle on it
func (s *Session) Select(index int) error {
	return s.do(func() error {
		return s.selectLocked(index)
	})
}

func (s *Session) selectLocked(index int) error {
	if index < 0 || index >= len(s.images) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.images))
	}
	item := s.images[index]
	img, err := s.codec.Decode(item)
	if err != nil {
		return err
	}

	ratio := math.NaN()
	if s.keepRatio {
		ratio = s.aspectRatio
	}
	handle, err := s.cropper.Open(img, ratio, s.opts.View)
	if err != nil {
		return fmt.Errorf("open cropper for %s: %w", item.Name, err)
	}
	s.destroyHandleLocked()
	s.handle = handle
	s.current = index
	s.queue(SelectionChanged{Index: index, Name: item.Name})
	return nil
}

func (s *Session) destroyHandleLocked() {
	if s.handle != nil {
		s.handle.Destroy()
		s.handle = nil
	}
}

// Remove drops the image at index. Removing the active image selects the one that
// took its place, or the new last one; removing an earlier image keeps the active
// image selected.
func (s *Session) Remove(index int) error {
	return s.do(func() error {
		if index < 0 || index >= len(s.images) {
			return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.images))
		}
		removed := s.images[index]
		s.images = append(s.images[:index:index], s.images[index+1:]...)
		s.queue(ImageRemoved{Index: index, Name: removed.Name, Total: len(s.images)})

		switch {
		case s.current == index && len(s.images) > 0:
			if err := s.selectLocked(min(index, len(s.images)-1)); err != nil {
				s.destroyHandleLocked()
				s.current = -1
				s.queue(SelectionChanged{Index: -1})
				return err
			}
		case s.current == index:
			s.destroyHandleLocked()
			s.current = -1
			s.queue(SelectionChanged{Index: -1})
		case s.current > index:
			s.current--
		}
		return nil
	})
}

// ApplyTemplate sets the export size and crop ratio from a named preset
func (s *Session) ApplyTemplate(name string) error {
	return s.do(func() error {
		tmpl, err := cropper.LookupTemplate(s.opts.Templates, name)
		if err != nil {
			return err
		}
		if err := tmpl.Target().Validate(); err != nil {
			return err
		}
		s.target = tmpl.Target()
		s.aspectRatio = tmpl.AspectRatio()
		s.template = tmpl.Name
		if s.handle != nil {
			if err := s.handle.SetAspectRatio(s.aspectRatio); err != nil {
				return err
			}
		}
		s.queue(TemplateApplied{Template: tmpl})
		s.queueTargetLocked()
		return nil
	})
}

// SetWidth sets the export width; with the ratio locked the height follows
func (s *Session) SetWidth(width int) error {
	return s.do(func() error {
		if width <= 0 {
			return fmt.Errorf("%w: width %d", types.ErrInvalidDimension, width)
		}
		s.target.Width = width
		if s.keepRatio && s.aspectRatio > 0 {
			s.target.Height = roundPositive(float64(width) / s.aspectRatio)
		}
		s.queueTargetLocked()
		return nil
	})
}

// SetHeight sets the export height; with the ratio locked the width follows
func (s *Session) SetHeight(height int) error {
	return s.do(func() error {
		if height <= 0 {
			return fmt.Errorf("%w: height %d", types.ErrInvalidDimension, height)
		}
		s.target.Height = height
		if s.keepRatio && s.aspectRatio > 0 {
			s.target.Width = roundPositive(float64(height) * s.aspectRatio)
		}
		s.queueTargetLocked()
		return nil
	})
}

// SetKeepRatio toggles the ratio lock. Turning it on relocks to the active image's
// ratio, or keeps the current one when no image is active, and recomputes the
// height. Turning it off frees the crop box.
func (s *Session) SetKeepRatio(on bool) error {
	return s.do(func() error {
		s.keepRatio = on
		if !on {
			if s.handle != nil {
				if err := s.handle.SetAspectRatio(math.NaN()); err != nil {
					return err
				}
			}
			s.queueTargetLocked()
			return nil
		}

		if s.current >= 0 && s.current < len(s.images) {
			s.aspectRatio = s.images[s.current].AspectRatio()
		}
		if s.aspectRatio > 0 {
			s.target.Height = roundPositive(float64(s.target.Width) / s.aspectRatio)
		}
		if s.handle != nil {
			if err := s.handle.SetAspectRatio(s.aspectRatio); err != nil {
				return err
			}
		}
		s.queueTargetLocked()
		return nil
	})
}

func (s *Session) queueTargetLocked() {
	s.queue(TargetChanged{Target: s.target, AspectRatio: s.aspectRatio, KeepRatio: s.keepRatio})
}

// Rotate turns the active image by degrees (clockwise, multiple of 90)
func (s *Session) Rotate(degrees int) error {
	return s.withHandle(func(h cropper.Handle) error {
		return h.Rotate(degrees)
	})
}

// Flip mirrors the active image along an axis
func (s *Session) Flip(axis cropper.Axis) error {
	return s.withHandle(func(h cropper.Handle) error {
		x, y := h.Scale()
		if axis == cropper.AxisY {
			return h.ScaleAxis(cropper.AxisY, -y)
		}
		return h.ScaleAxis(cropper.AxisX, -x)
	})
}

// ResetCrop undoes rotation, flips and crop box changes on the active image
func (s *Session) ResetCrop() error {
	return s.withHandle(func(h cropper.Handle) error {
		if err := h.Reset(); err != nil {
			return err
		}
		s.queue(CropReset{})
		return nil
	})
}

// SetCropBox moves the crop box of the active image
func (s *Session) SetCropBox(r image.Rectangle) error {
	return s.withHandle(func(h cropper.Handle) error {
		return h.SetCropBox(r)
	})
}

func (s *Session) withHandle(fn func(h cropper.Handle) error) error {
	return s.do(func() error {
		if s.handle == nil || s.current < 0 {
			return types.ErrNoActiveSelection
		}
		return fn(s.handle)
	})
}

// ExportSingle exports the active crop at the export size as edited_<name>
func (s *Session) ExportSingle(ctx context.Context, sink output.Sink) (types.Artifact, error) {
	var artifact types.Artifact
	err := s.do(func() error {
		if s.handle == nil || s.current < 0 || s.current >= len(s.images) {
			return types.ErrNoActiveSelection
		}
		if err := s.target.Validate(); err != nil {
			return err
		}
		surface, err := s.handle.CroppedSurface(cropper.ExportSurfaceOptions(s.target.Width, s.target.Height))
		if err != nil {
			return fmt.Errorf("crop surface: %w", err)
		}
		src := s.images[s.current]
		artifact, err = s.codec.Artifact(surface, s.opts.SinglePrefix+"_"+src.Name, s.current+1, src.Name)
		return err
	})
	if err != nil {
		return types.Artifact{}, err
	}

	key, err := sink.Put(ctx, artifact)
	if err != nil {
		return types.Artifact{}, fmt.Errorf("deliver %s: %w", artifact.Name, err)
	}
	s.notify(Exported{Name: artifact.Name, Key: key, Size: artifact.Size()})
	return artifact, nil
}

// ExportBatch cover-fits every image to a snapshot of the export size, one at a time
func (s *Session) ExportBatch(ctx context.Context, sink output.Sink) (batch.Report, error) {
	var job *batch.Job
	err := s.do(func() error {
		if len(s.images) == 0 {
			return types.ErrEmptyBatch
		}
		var err error
		job, err = batch.NewJob(s.images, s.target, s.opts.BatchPrefix)
		return err
	})
	if err != nil {
		return batch.Report{}, err
	}

	report, err := s.runner.Run(ctx, job, sink)
	s.notify(BatchCompleted{Report: report})
	return report, err
}

func (s *Session) notify(ev Event) {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener != nil {
		listener(ev)
	}
}

// Info describes the active image
func (s *Session) Info() (EditInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < 0 || s.current >= len(s.images) {
		return EditInfo{}, types.ErrNoActiveSelection
	}
	item := s.images[s.current]
	format := item.Format
	if i := strings.IndexByte(item.MIMEType, '/'); i >= 0 {
		format = item.MIMEType[i+1:]
	}
	return EditInfo{
		Name:           item.Name,
		OriginalWidth:  item.Width,
		OriginalHeight: item.Height,
		Target:         s.target,
		Format:         strings.ToUpper(format),
	}, nil
}

// Len returns the number of images in the working set
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// Images returns a copy of the working set
func (s *Session) Images() []types.SourceImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.SourceImage(nil), s.images...)
}

// Current returns the active index, or -1
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Target returns the export size
func (s *Session) Target() types.TargetDimension {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// AspectRatio returns the ratio used when the lock is on
func (s *Session) AspectRatio() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aspectRatio
}

// KeepRatio reports whether the ratio lock is on
func (s *Session) KeepRatio() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keepRatio
}

// Template returns the name of the last applied template
func (s *Session) Template() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.template
}

// Close releases the crop handle
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyHandleLocked()
	s.current = -1
}

func roundPositive(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	return n
}
