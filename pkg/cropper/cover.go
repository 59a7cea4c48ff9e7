package cropper

import (
	"fmt"
	"math"

	"github.com/menta2k/image-cropper/pkg/types"
)

// CoverRect computes where a sw x sh source must be drawn on a tw x th canvas so
// that it fills the canvas completely, centered, with its aspect ratio preserved.
// The overflowing axis gets a negative offset and is clipped symmetrically.
//
// Equal ratios take the width-bound branch, which is an exact fit with zero offset.
// No rounding is applied; see types.DrawRect.Bounds for the pixel policy.
func CoverRect(sw, sh, tw, th float64) (types.DrawRect, error) {
	if err := checkDimension("source width", sw); err != nil {
		return types.DrawRect{}, err
	}
	if err := checkDimension("source height", sh); err != nil {
		return types.DrawRect{}, err
	}
	if err := checkDimension("target width", tw); err != nil {
		return types.DrawRect{}, err
	}
	if err := checkDimension("target height", th); err != nil {
		return types.DrawRect{}, err
	}

	sourceRatio := sw / sh
	targetRatio := tw / th
	if err := checkDimension("source ratio", sourceRatio); err != nil {
		return types.DrawRect{}, err
	}
	if err := checkDimension("target ratio", targetRatio); err != nil {
		return types.DrawRect{}, err
	}

	if sourceRatio > targetRatio {
		// Source is wider: bind height, overflow horizontally
		drawWidth := th * sourceRatio
		if err := checkDimension("draw width", drawWidth); err != nil {
			return types.DrawRect{}, err
		}
		return types.DrawRect{
			X:      (tw - drawWidth) / 2,
			Y:      0,
			Width:  drawWidth,
			Height: th,
		}, nil
	}

	// Source is taller or equal: bind width, overflow vertically
	drawHeight := tw / sourceRatio
	if err := checkDimension("draw height", drawHeight); err != nil {
		return types.DrawRect{}, err
	}
	return types.DrawRect{
		X:      0,
		Y:      (th - drawHeight) / 2,
		Width:  tw,
		Height: drawHeight,
	}, nil
}

// CoverRectInt is CoverRect for integer pixel sizes
func CoverRectInt(sw, sh int, target types.TargetDimension) (types.DrawRect, error) {
	return CoverRect(float64(sw), float64(sh), float64(target.Width), float64(target.Height))
}

func checkDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be a positive finite number, got %v", types.ErrInvalidDimension, name, v)
	}
	return nil
}
