package cropper

import "math"

// SurfaceOptions controls the size of a cropped surface. Zero values mean unset.
type SurfaceOptions struct {
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int
}

// ExportSurfaceOptions returns the options used by single-image export
func ExportSurfaceOptions(width, height int) SurfaceOptions {
	return SurfaceOptions{
		Width:     width,
		Height:    height,
		MinWidth:  MinExportSize,
		MinHeight: MinExportSize,
		MaxWidth:  MaxExportSize,
		MaxHeight: MaxExportSize,
	}
}

// Export size clamps
const (
	MinExportSize = 100
	MaxExportSize = 5000
)

type fitMode int

const (
	fitContain fitMode = iota
	fitCover
)

// adjustedSize fits a box of the given ratio to width/height. Non-positive or
// infinite sides are treated as unset.
func adjustedSize(ratio, width, height float64, mode fitMode) (float64, float64) {
	validW := isPositive(width)
	validH := isPositive(height)

	switch {
	case validW && validH:
		adjustedWidth := height * ratio
		if (mode == fitContain && adjustedWidth > width) || (mode == fitCover && adjustedWidth < width) {
			height = width / ratio
		} else {
			width = adjustedWidth
		}
	case validW:
		height = width / ratio
	case validH:
		width = height * ratio
	}
	return width, height
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// SurfaceSize computes the output size for a crop box of cropW x cropH. The crop
// ratio is kept: the requested size is contained, then clamped by the min
// (cover) and max (contain) sizes.
func SurfaceSize(cropW, cropH int, opts SurfaceOptions) (int, int) {
	if cropW <= 0 || cropH <= 0 {
		return 0, 0
	}
	ratio := float64(cropW) / float64(cropH)

	maxW, maxH := math.Inf(1), math.Inf(1)
	if opts.MaxWidth > 0 {
		maxW = float64(opts.MaxWidth)
	}
	if opts.MaxHeight > 0 {
		maxH = float64(opts.MaxHeight)
	}
	maxW, maxH = adjustedSize(ratio, maxW, maxH, fitContain)
	minW, minH := adjustedSize(ratio, float64(opts.MinWidth), float64(opts.MinHeight), fitCover)

	reqW, reqH := float64(cropW), float64(cropH)
	if opts.Width > 0 {
		reqW = float64(opts.Width)
	}
	if opts.Height > 0 {
		reqH = float64(opts.Height)
	}
	if opts.Width > 0 && opts.Height <= 0 {
		reqH = 0
	}
	if opts.Height > 0 && opts.Width <= 0 {
		reqW = 0
	}
	w, h := adjustedSize(ratio, reqW, reqH, fitContain)

	w = math.Min(maxW, math.Max(minW, w))
	h = math.Min(maxH, math.Max(minH, h))

	return atLeastOne(w), atLeastOne(h)
}

func atLeastOne(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		return 1
	}
	return n
}
