package cropper

//go:generate mockgen -destination=mocks/mock_cropper.go -package=mocks github.com/menta2k/image-cropper/pkg/cropper Cropper,Handle

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-cropper/pkg/types"
)

// ErrHandleDestroyed is returned by any Handle method called after Destroy
var ErrHandleDestroyed = errors.New("cropper handle destroyed")

// Axis selects the horizontal or vertical image axis
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// ViewOptions configures a freshly opened crop handle
type ViewOptions struct {
	// AutoCropArea is the share (0..1] of the image the initial crop box covers
	AutoCropArea float64
}

// DefaultViewOptions returns the options the editor opens images with
func DefaultViewOptions() ViewOptions {
	return ViewOptions{AutoCropArea: 0.8}
}

// Cropper opens interactive crop handles over decoded images
type Cropper interface {
	Open(img image.Image, aspectRatio float64, opts ViewOptions) (Handle, error)
}

// Handle is one interactive crop over one image. Rotation and flips are applied to
// the view; the crop box is expressed in view coordinates.
type Handle interface {
	// SetAspectRatio locks the crop box ratio. Zero or NaN means free.
	SetAspectRatio(ratio float64) error
	// Rotate turns the view clockwise by a multiple of 90 degrees.
	Rotate(degrees int) error
	// ScaleAxis sets the scale of one axis; -1 flips it.
	ScaleAxis(axis Axis, factor float64) error
	Scale() (x, y float64)
	SetCropBox(r image.Rectangle) error
	CropBox() image.Rectangle
	Reset() error
	CroppedSurface(opts SurfaceOptions) (image.Image, error)
	Destroy()
}

// ImagingCropper is the default Cropper, backed by disintegration/imaging
type ImagingCropper struct{}

// New creates a new ImagingCropper
func New() *ImagingCropper {
	return &ImagingCropper{}
}

// Open creates a crop handle over img
func (c *ImagingCropper) Open(img image.Image, aspectRatio float64, opts ViewOptions) (Handle, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", types.ErrNoActiveSelection)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image is %dx%d", types.ErrInvalidDimension, b.Dx(), b.Dy())
	}
	if opts.AutoCropArea <= 0 || opts.AutoCropArea > 1 {
		opts.AutoCropArea = 1
	}

	h := &imagingHandle{
		src:    img,
		opts:   opts,
		ratio:  normalizeRatio(aspectRatio),
		scaleX: 1,
		scaleY: 1,
	}
	h.render()
	h.box = h.defaultBox()
	return h, nil
}

type imagingHandle struct {
	src       image.Image
	opts      ViewOptions
	ratio     float64
	rotation  int
	scaleX    float64
	scaleY    float64
	view      *image.NRGBA
	box       image.Rectangle
	destroyed bool
}

func (h *imagingHandle) SetAspectRatio(ratio float64) error {
	if h.destroyed {
		return ErrHandleDestroyed
	}
	h.ratio = normalizeRatio(ratio)
	h.box = h.defaultBox()
	return nil
}

func (h *imagingHandle) Rotate(degrees int) error {
	if h.destroyed {
		return ErrHandleDestroyed
	}
	if degrees%90 != 0 {
		return fmt.Errorf("rotation must be a multiple of 90 degrees, got %d", degrees)
	}
	h.rotation = ((h.rotation+degrees)%360 + 360) % 360
	h.render()
	h.box = h.defaultBox()
	return nil
}

func (h *imagingHandle) ScaleAxis(axis Axis, factor float64) error {
	if h.destroyed {
		return ErrHandleDestroyed
	}
	if factor != 1 && factor != -1 {
		return fmt.Errorf("unsupported %s scale %v: only 1 and -1 are supported", axis, factor)
	}
	if axis == AxisY {
		h.scaleY = factor
	} else {
		h.scaleX = factor
	}
	// Flipping keeps the crop box where it is on the view
	h.render()
	return nil
}

func (h *imagingHandle) Scale() (float64, float64) {
	return h.scaleX, h.scaleY
}

func (h *imagingHandle) SetCropBox(r image.Rectangle) error {
	if h.destroyed {
		return ErrHandleDestroyed
	}
	r = r.Canon().Intersect(h.view.Bounds())
	if r.Empty() {
		return fmt.Errorf("%w: crop box outside image", types.ErrInvalidDimension)
	}
	if h.ratio > 0 {
		r = containRatio(r, h.ratio)
		if r.Empty() {
			return fmt.Errorf("%w: crop box too small for ratio %.4f", types.ErrInvalidDimension, h.ratio)
		}
	}
	h.box = r
	return nil
}

func (h *imagingHandle) CropBox() image.Rectangle {
	return h.box
}

func (h *imagingHandle) Reset() error {
	if h.destroyed {
		return ErrHandleDestroyed
	}
	h.rotation = 0
	h.scaleX, h.scaleY = 1, 1
	h.render()
	h.box = h.defaultBox()
	return nil
}

func (h *imagingHandle) CroppedSurface(opts SurfaceOptions) (image.Image, error) {
	if h.destroyed {
		return nil, ErrHandleDestroyed
	}
	cropped := imaging.Crop(h.view, h.box)
	w, hgt := SurfaceSize(cropped.Bounds().Dx(), cropped.Bounds().Dy(), opts)
	if w == cropped.Bounds().Dx() && hgt == cropped.Bounds().Dy() {
		return cropped, nil
	}
	return imaging.Resize(cropped, w, hgt, imaging.Lanczos), nil
}

func (h *imagingHandle) Destroy() {
	h.destroyed = true
	h.src = nil
	h.view = nil
}

// render rebuilds the view: flips first, then the clockwise rotation
func (h *imagingHandle) render() {
	var img *image.NRGBA
	switch {
	case h.scaleX < 0 && h.scaleY < 0:
		img = imaging.Rotate180(h.src)
	case h.scaleX < 0:
		img = imaging.FlipH(h.src)
	case h.scaleY < 0:
		img = imaging.FlipV(h.src)
	default:
		img = imaging.Clone(h.src)
	}

	// imaging rotates counter-clockwise
	switch h.rotation {
	case 90:
		img = imaging.Rotate270(img)
	case 180:
		img = imaging.Rotate180(img)
	case 270:
		img = imaging.Rotate90(img)
	}
	h.view = img
}

func (h *imagingHandle) defaultBox() image.Rectangle {
	b := h.view.Bounds()
	w, hgt := float64(b.Dx()), float64(b.Dy())

	bw, bh := w, hgt
	if h.ratio > 0 {
		bw, bh = adjustedSize(h.ratio, w, hgt, fitContain)
	}
	bw *= h.opts.AutoCropArea
	bh *= h.opts.AutoCropArea

	x := (w - bw) / 2
	y := (hgt - bh) / 2
	r := image.Rect(
		int(math.Round(x)),
		int(math.Round(y)),
		int(math.Round(x+bw)),
		int(math.Round(y+bh)),
	).Add(b.Min)
	if r.Empty() {
		return image.Rect(0, 0, 1, 1).Add(b.Min)
	}
	return r
}

// containRatio shrinks r around its center to the largest rectangle of the given ratio
func containRatio(r image.Rectangle, ratio float64) image.Rectangle {
	w, h := adjustedSize(ratio, float64(r.Dx()), float64(r.Dy()), fitContain)
	iw, ih := int(math.Round(w)), int(math.Round(h))
	if iw > r.Dx() {
		iw = r.Dx()
	}
	if ih > r.Dy() {
		ih = r.Dy()
	}
	x0 := r.Min.X + (r.Dx()-iw)/2
	y0 := r.Min.Y + (r.Dy()-ih)/2
	return image.Rect(x0, y0, x0+iw, y0+ih)
}

func normalizeRatio(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return 0
	}
	return r
}
