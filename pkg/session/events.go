package session

import (
	"github.com/menta2k/image-cropper/pkg/batch"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/types"
)

// Event is emitted after a command changes session state
type Event interface {
	Kind() string
}

// Listener receives events in the order they happened. It is called without the
// session lock held, so it may call back into the session.
type Listener func(Event)

// ImagesAdded follows a successful upload
type ImagesAdded struct {
	Added  int
	Failed int
	Total  int
}

// ImageRemoved follows Remove
type ImageRemoved struct {
	Index int
	Name  string
	Total int
}

// SelectionChanged follows a change of the active image. Index is -1 when nothing is selected.
type SelectionChanged struct {
	Index int
	Name  string
}

// TargetChanged follows any change to the export size or ratio lock
type TargetChanged struct {
	Target      types.TargetDimension
	AspectRatio float64
	KeepRatio   bool
}

// TemplateApplied follows ApplyTemplate
type TemplateApplied struct {
	Template cropper.Template
}

// CropReset follows ResetCrop
type CropReset struct{}

// Exported follows a single-image export
type Exported struct {
	Name string
	Key  string
	Size int
}

// BatchCompleted follows a batch export, cancelled or not
type BatchCompleted struct {
	Report batch.Report
}

func (ImagesAdded) Kind() string      { return "images_added" }
func (ImageRemoved) Kind() string     { return "image_removed" }
func (SelectionChanged) Kind() string { return "selection_changed" }
func (TargetChanged) Kind() string    { return "target_changed" }
func (TemplateApplied) Kind() string  { return "template_applied" }
func (CropReset) Kind() string        { return "crop_reset" }
func (Exported) Kind() string         { return "exported" }
func (BatchCompleted) Kind() string   { return "batch_completed" }
