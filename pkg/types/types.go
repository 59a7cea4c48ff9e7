package types

import (
	"fmt"
	"image"
	"math"
)

// File is an uploaded file before it has been decoded into a SourceImage
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// SourceImage is a successfully decoded upload. It is never mutated after ingestion.
type SourceImage struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Data     []byte `json:"-"`
}

// AspectRatio returns width/height of the source
func (s SourceImage) AspectRatio() float64 {
	if s.Height == 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// TargetDimension is the output canvas size requested for export
type TargetDimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate reports ErrInvalidDimension unless both sides are positive
func (t TargetDimension) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("%w: target %dx%d", ErrInvalidDimension, t.Width, t.Height)
	}
	return nil
}

// Ratio returns width/height, or 0 for an invalid dimension
func (t TargetDimension) Ratio() float64 {
	if t.Width <= 0 || t.Height <= 0 {
		return 0
	}
	return float64(t.Width) / float64(t.Height)
}

func (t TargetDimension) String() string {
	return fmt.Sprintf("%dx%d", t.Width, t.Height)
}

// DrawRect is the rectangle, in target-canvas coordinates, that a source is drawn into.
// Offsets are negative on the cropped axis.
type DrawRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds rounds the rectangle outward to whole pixels so the drawn area never
// leaves a gap at the canvas edge.
func (r DrawRect) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)),
		int(math.Ceil(r.Y+r.Height)),
	)
}

// Artifact is one encoded output image
type Artifact struct {
	Name     string `json:"name"`
	Index    int    `json:"index"`
	Source   string `json:"source"`
	Format   string `json:"format"`
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Data     []byte `json:"-"`
}

// Size returns the encoded size in bytes
func (a Artifact) Size() int {
	return len(a.Data)
}
