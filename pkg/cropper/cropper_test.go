package cropper

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImage creates an image with a distinct color in each quadrant
func createTestImage(width, height int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, quadrantColor(x < width/2, y < height/2))
		}
	}
	return img
}

func quadrantColor(left, top bool) color.NRGBA {
	switch {
	case left && top:
		return color.NRGBA{255, 0, 0, 255}
	case !left && top:
		return color.NRGBA{0, 255, 0, 255}
	case left && !top:
		return color.NRGBA{0, 0, 255, 255}
	default:
		return color.NRGBA{255, 255, 0, 255}
	}
}

func openHandle(t *testing.T, w, h int, ratio float64) Handle {
	t.Helper()
	handle, err := New().Open(createTestImage(w, h), ratio, DefaultViewOptions())
	require.NoError(t, err)
	t.Cleanup(handle.Destroy)
	return handle
}

func TestOpenDefaultCropBox(t *testing.T) {
	handle := openHandle(t, 400, 300, math.NaN())

	// Free ratio: 80% of each side, centered
	assert.Equal(t, image.Rect(40, 30, 360, 270), handle.CropBox())

	handle = openHandle(t, 400, 300, 1)
	assert.Equal(t, image.Rect(80, 30, 320, 270), handle.CropBox())
}

func TestOpenRejectsEmptyImage(t *testing.T) {
	_, err := New().Open(image.NewNRGBA(image.Rect(0, 0, 0, 10)), 1, DefaultViewOptions())
	assert.Error(t, err)

	_, err = New().Open(nil, 1, DefaultViewOptions())
	assert.Error(t, err)
}

func TestSetAspectRatioResetsBox(t *testing.T) {
	handle := openHandle(t, 400, 300, 0)
	require.NoError(t, handle.SetAspectRatio(2))

	box := handle.CropBox()
	assert.InDelta(t, 2.0, float64(box.Dx())/float64(box.Dy()), 0.01)
}

func TestRotateSwapsView(t *testing.T) {
	handle := openHandle(t, 400, 200, 0)
	require.NoError(t, handle.Rotate(90))

	surface, err := handle.CroppedSurface(SurfaceOptions{})
	require.NoError(t, err)
	assert.Equal(t, 160, surface.Bounds().Dx())
	assert.Equal(t, 320, surface.Bounds().Dy())

	// After a clockwise turn the bottom-left quadrant is top-left
	require.NoError(t, handle.SetCropBox(image.Rect(0, 0, 200, 400)))
	surface, err = handle.CroppedSurface(SurfaceOptions{})
	require.NoError(t, err)
	assert.Equal(t, quadrantColor(true, false), color.NRGBAModel.Convert(surface.At(0, 0)))

	assert.Error(t, handle.Rotate(45))
}

func TestScaleAxisFlips(t *testing.T) {
	handle := openHandle(t, 100, 100, 0)
	require.NoError(t, handle.SetCropBox(image.Rect(0, 0, 100, 100)))
	require.NoError(t, handle.ScaleAxis(AxisX, -1))

	x, y := handle.Scale()
	assert.Equal(t, -1.0, x)
	assert.Equal(t, 1.0, y)

	surface, err := handle.CroppedSurface(SurfaceOptions{})
	require.NoError(t, err)
	assert.Equal(t, quadrantColor(false, true), color.NRGBAModel.Convert(surface.At(0, 0)))

	require.NoError(t, handle.ScaleAxis(AxisY, -1))
	surface, err = handle.CroppedSurface(SurfaceOptions{})
	require.NoError(t, err)
	assert.Equal(t, quadrantColor(false, false), color.NRGBAModel.Convert(surface.At(0, 0)))

	assert.Error(t, handle.ScaleAxis(AxisX, 2))
}

func TestSetCropBox(t *testing.T) {
	handle := openHandle(t, 400, 300, 0)

	require.NoError(t, handle.SetCropBox(image.Rect(-50, -50, 100, 100)))
	assert.Equal(t, image.Rect(0, 0, 100, 100), handle.CropBox())

	assert.Error(t, handle.SetCropBox(image.Rect(500, 500, 600, 600)))

	require.NoError(t, handle.SetAspectRatio(2))
	require.NoError(t, handle.SetCropBox(image.Rect(0, 0, 200, 200)))
	assert.Equal(t, image.Rect(0, 50, 200, 150), handle.CropBox())
}

func TestReset(t *testing.T) {
	handle := openHandle(t, 400, 300, 0)
	initial := handle.CropBox()

	require.NoError(t, handle.Rotate(-90))
	require.NoError(t, handle.ScaleAxis(AxisY, -1))
	require.NoError(t, handle.Reset())

	x, y := handle.Scale()
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 1.0, y)
	assert.Equal(t, initial, handle.CropBox())
}

func TestCroppedSurfaceResizes(t *testing.T) {
	handle := openHandle(t, 800, 600, 4.0/3.0)

	surface, err := handle.CroppedSurface(ExportSurfaceOptions(1200, 900))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1200, 900), surface.Bounds())
}

func TestDestroyedHandle(t *testing.T) {
	handle, err := New().Open(createTestImage(10, 10), 1, DefaultViewOptions())
	require.NoError(t, err)
	handle.Destroy()

	assert.ErrorIs(t, handle.Rotate(90), ErrHandleDestroyed)
	assert.ErrorIs(t, handle.Reset(), ErrHandleDestroyed)
	_, err = handle.CroppedSurface(SurfaceOptions{})
	assert.ErrorIs(t, err, ErrHandleDestroyed)
}
