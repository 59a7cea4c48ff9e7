package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/menta2k/image-cropper/pkg/batch"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/cropper/mocks"
	"github.com/menta2k/image-cropper/pkg/output"
	"github.com/menta2k/image-cropper/pkg/processing"
	"github.com/menta2k/image-cropper/pkg/types"
)

func pngFile(t *testing.T, name string, w, h int) types.File {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x), uint8(y), 64, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return types.File{Name: name, MIMEType: "image/png", Data: buf.Bytes()}
}

// flakyCodec fails to decode one named source at export time
type flakyCodec struct {
	*processing.Processor
	failDecode string
}

func (c *flakyCodec) Decode(src types.SourceImage) (image.Image, error) {
	if src.Name == c.failDecode {
		return nil, fmt.Errorf("%w: %s", types.ErrImageDecode, src.Name)
	}
	return c.Processor.Decode(src)
}

func noYield(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newSession(t *testing.T, codec *flakyCodec, c cropper.Cropper, onItem func(batch.ItemResult)) *Session {
	t.Helper()
	if codec == nil {
		codec = &flakyCodec{Processor: processing.NewProcessor()}
	}
	if c == nil {
		c = cropper.New()
	}
	runner := batch.NewRunner(codec, batch.Config{Yield: noYield, OnItem: onItem}, zerolog.Nop())
	s := New(codec, c, runner, DefaultOptions(), zerolog.Nop())
	t.Cleanup(s.Close)
	return s
}

func recordEvents(s *Session) *[]Event {
	var events []Event
	s.SetListener(func(ev Event) { events = append(events, ev) })
	return &events
}

func TestUploadCountExceeded(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	events := recordEvents(s)

	file := pngFile(t, "a.png", 4, 4)
	files := make([]types.File, 51)
	for i := range files {
		files[i] = file
	}

	result, err := s.Upload(context.Background(), files)
	require.ErrorIs(t, err, types.ErrUploadCountExceeded)
	assert.Empty(t, result.Added)
	assert.Zero(t, s.Len())
	assert.Equal(t, -1, s.Current())
	assert.Empty(t, *events)

	// Exactly at the cap is accepted
	_, err = s.Upload(context.Background(), files[:50])
	require.NoError(t, err)
	assert.Equal(t, 50, s.Len())
}

func TestUploadRejectsNonImages(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	_, err := s.Upload(context.Background(), []types.File{
		{Name: "notes.txt", Data: []byte("hello")},
		{Name: "doc.pdf", MIMEType: "application/pdf"},
	})
	require.ErrorIs(t, err, types.ErrInvalidFileType)
	assert.Zero(t, s.Len())
}

func TestUploadMixed(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	events := recordEvents(s)

	result, err := s.Upload(context.Background(), []types.File{
		pngFile(t, "a.png", 40, 20),
		{Name: "notes.txt", Data: []byte("hello")},
		{Name: "broken.png", MIMEType: "image/png", Data: []byte("nope")},
		pngFile(t, "b.png", 20, 40),
	})
	require.NoError(t, err)

	assert.Len(t, result.Added, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "broken.png", result.Failed[0].Name)
	assert.ErrorIs(t, result.Failed[0], types.ErrImageDecode)
	assert.Equal(t, []string{"notes.txt"}, result.Ignored)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 0, s.Current())

	require.Len(t, *events, 2)
	assert.Equal(t, ImagesAdded{Added: 2, Failed: 1, Total: 2}, (*events)[0])
	assert.Equal(t, SelectionChanged{Index: 0, Name: "a.png"}, (*events)[1])
}

func TestUploadCancelled(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Upload(ctx, []types.File{pngFile(t, "a.png", 4, 4)})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.Len())
}

func TestExportSingleWithoutSelection(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	sink := output.SinkFunc(func(context.Context, types.Artifact) (string, error) {
		t.Fatal("sink must not be called")
		return "", nil
	})

	_, err := s.ExportSingle(context.Background(), sink)
	assert.ErrorIs(t, err, types.ErrNoActiveSelection)
}

func TestExportSingle(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	_, err := s.Upload(context.Background(), []types.File{pngFile(t, "a.png", 400, 400)})
	require.NoError(t, err)
	require.NoError(t, s.SetWidth(600))

	sink := output.NewMemorySink()
	events := recordEvents(s)
	artifact, err := s.ExportSingle(context.Background(), sink)
	require.NoError(t, err)

	assert.Equal(t, "edited_a.png", artifact.Name)
	assert.Equal(t, 600, artifact.Width)
	assert.Equal(t, 600, artifact.Height)
	assert.Equal(t, []string{"edited_a.png"}, sink.Names())

	cfg, err := png.DecodeConfig(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)

	require.Len(t, *events, 1)
	assert.Equal(t, "exported", (*events)[0].Kind())
}

func TestExportSingleClampsSize(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	_, err := s.Upload(context.Background(), []types.File{pngFile(t, "a.png", 200, 200)})
	require.NoError(t, err)
	require.NoError(t, s.SetWidth(20))

	artifact, err := s.ExportSingle(context.Background(), output.NewMemorySink())
	require.NoError(t, err)
	assert.Equal(t, cropper.MinExportSize, artifact.Width)
	assert.Equal(t, cropper.MinExportSize, artifact.Height)
}

func TestExportBatchSkipsAndKeepsIndices(t *testing.T) {
	codec := &flakyCodec{Processor: processing.NewProcessor(), failDecode: "b.png"}
	s := newSession(t, codec, nil, nil)
	_, err := s.Upload(context.Background(), []types.File{
		pngFile(t, "a.png", 30, 20),
		pngFile(t, "b.png", 30, 20),
		pngFile(t, "c.png", 20, 30),
	})
	require.NoError(t, err)
	require.NoError(t, s.ApplyTemplate("og"))

	events := recordEvents(s)
	sink := output.NewMemorySink()
	report, err := s.ExportBatch(context.Background(), sink)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, batch.StateDone, report.State)
	assert.Equal(t, []string{"batch_1_a.png", "batch_3_c.png"}, sink.Names())
	for _, a := range sink.Artifacts() {
		assert.Equal(t, 1200, a.Width)
		assert.Equal(t, 630, a.Height)
	}

	require.Len(t, *events, 1)
	assert.Equal(t, BatchCompleted{Report: report}, (*events)[0])
}

func TestExportBatchUsesTargetSnapshot(t *testing.T) {
	var s *Session
	s = newSession(t, nil, nil, func(batch.ItemResult) {
		require.NoError(t, s.SetWidth(50))
	})
	_, err := s.Upload(context.Background(), []types.File{pngFile(t, "a.png", 10, 10), pngFile(t, "b.png", 10, 10)})
	require.NoError(t, err)
	require.NoError(t, s.SetKeepRatio(false))
	require.NoError(t, s.SetWidth(80))
	require.NoError(t, s.SetHeight(60))

	sink := output.NewMemorySink()
	_, err = s.ExportBatch(context.Background(), sink)
	require.NoError(t, err)

	for _, a := range sink.Artifacts() {
		assert.Equal(t, 80, a.Width)
		assert.Equal(t, 60, a.Height)
	}
	assert.Equal(t, 50, s.Target().Width)
}

func TestExportBatchEmpty(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	_, err := s.ExportBatch(context.Background(), output.NewMemorySink())
	assert.ErrorIs(t, err, types.ErrEmptyBatch)
}

func TestRemoveShiftsSelection(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	_, err := s.Upload(context.Background(), []types.File{
		pngFile(t, "a.png", 8, 8), pngFile(t, "b.png", 8, 8), pngFile(t, "c.png", 8, 8),
	})
	require.NoError(t, err)
	require.NoError(t, s.Select(1))

	// Earlier image removed: the same image stays active
	require.NoError(t, s.Remove(0))
	assert.Equal(t, 0, s.Current())
	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, "b.png", info.Name)

	// Active image removed: its successor takes over
	require.NoError(t, s.Remove(0))
	assert.Equal(t, 0, s.Current())
	info, err = s.Info()
	require.NoError(t, err)
	assert.Equal(t, "c.png", info.Name)

	require.NoError(t, s.Remove(0))
	assert.Equal(t, -1, s.Current())
	assert.ErrorIs(t, s.Rotate(90), types.ErrNoActiveSelection)

	assert.ErrorIs(t, s.Remove(0), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Select(3), ErrIndexOutOfRange)
}

func TestRemoveLastSelectsNewLast(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	_, err := s.Upload(context.Background(), []types.File{pngFile(t, "a.png", 8, 8), pngFile(t, "b.png", 8, 8)})
	require.NoError(t, err)
	require.NoError(t, s.Select(1))

	require.NoError(t, s.Remove(1))
	assert.Equal(t, 0, s.Current())
}

func TestRatioLockedDimensions(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	require.NoError(t, s.ApplyTemplate("widescreen"))
	assert.Equal(t, types.TargetDimension{Width: 1920, Height: 1080}, s.Target())
	assert.Equal(t, "widescreen", s.Template())

	require.NoError(t, s.SetWidth(1280))
	assert.Equal(t, types.TargetDimension{Width: 1280, Height: 720}, s.Target())

	require.NoError(t, s.SetHeight(1000))
	assert.Equal(t, types.TargetDimension{Width: 1778, Height: 1000}, s.Target())

	assert.ErrorIs(t, s.SetWidth(0), types.ErrInvalidDimension)
	assert.ErrorIs(t, s.SetHeight(-5), types.ErrInvalidDimension)
	assert.Equal(t, types.TargetDimension{Width: 1778, Height: 1000}, s.Target())

	assert.ErrorIs(t, s.ApplyTemplate("nope"), cropper.ErrUnknownTemplate)
}

func TestRatioLockInvariant(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	require.NoError(t, s.ApplyTemplate("og"))
	ratio := s.AspectRatio()

	for _, w := range []int{1, 7, 99, 640, 1199, 4321} {
		require.NoError(t, s.SetWidth(w))
		got := s.Target()
		// Height is the nearest integer to width/ratio
		assert.LessOrEqual(t, math.Abs(float64(got.Height)-float64(w)/ratio), 0.5+1e-9, "width %d", w)
	}
}

func TestSetKeepRatioRelocksToImage(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	_, err := s.Upload(context.Background(), []types.File{pngFile(t, "wide.png", 400, 200)})
	require.NoError(t, err)

	require.NoError(t, s.SetKeepRatio(false))
	require.NoError(t, s.SetHeight(900))
	assert.Equal(t, types.TargetDimension{Width: 1080, Height: 900}, s.Target())
	assert.False(t, s.KeepRatio())

	require.NoError(t, s.SetKeepRatio(true))
	assert.Equal(t, 2.0, s.AspectRatio())
	assert.Equal(t, types.TargetDimension{Width: 1080, Height: 540}, s.Target())
}

func TestSetKeepRatioWithoutImage(t *testing.T) {
	s := newSession(t, nil, nil, nil)

	require.NoError(t, s.SetKeepRatio(false))
	require.NoError(t, s.SetWidth(500))
	assert.Equal(t, types.TargetDimension{Width: 500, Height: 1080}, s.Target())

	require.NoError(t, s.SetKeepRatio(true))
	assert.Equal(t, 1.0, s.AspectRatio())
	assert.Equal(t, types.TargetDimension{Width: 500, Height: 500}, s.Target())

	require.NoError(t, s.ApplyTemplate("og"))
	require.NoError(t, s.SetKeepRatio(false))
	require.NoError(t, s.SetHeight(100))
	require.NoError(t, s.SetKeepRatio(true))
	assert.Equal(t, types.TargetDimension{Width: 1200, Height: 630}, s.Target())
}

func TestUploadRollsBackWhenOpenFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mocks.NewMockCropper(ctrl)
	c.EXPECT().Open(gomock.Any(), 1.0, cropper.DefaultViewOptions()).Return(nil, errors.New("boom"))

	s := newSession(t, nil, c, nil)
	events := recordEvents(s)

	result, err := s.Upload(context.Background(), []types.File{pngFile(t, "a.png", 10, 10)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, result.Added)
	assert.Zero(t, s.Len())
	assert.Equal(t, -1, s.Current())
	assert.Empty(t, *events)

	_, err = s.ExportBatch(context.Background(), output.NewMemorySink())
	assert.ErrorIs(t, err, types.ErrEmptyBatch)
}

func TestHandleCommands(t *testing.T) {
	ctrl := gomock.NewController(t)
	handle := mocks.NewMockHandle(ctrl)
	c := mocks.NewMockCropper(ctrl)

	c.EXPECT().Open(gomock.Any(), 1.0, cropper.DefaultViewOptions()).Return(handle, nil)
	s := newSession(t, nil, c, nil)

	_, err := s.Upload(context.Background(), []types.File{pngFile(t, "a.png", 10, 10)})
	require.NoError(t, err)

	gomock.InOrder(
		handle.EXPECT().Rotate(-90).Return(nil),
		handle.EXPECT().Scale().Return(1.0, 1.0),
		handle.EXPECT().ScaleAxis(cropper.AxisX, -1.0).Return(nil),
		handle.EXPECT().Scale().Return(-1.0, 1.0),
		handle.EXPECT().ScaleAxis(cropper.AxisY, -1.0).Return(nil),
		handle.EXPECT().SetAspectRatio(9.0/16.0).Return(nil),
		handle.EXPECT().SetCropBox(image.Rect(0, 0, 5, 5)).Return(nil),
		handle.EXPECT().Reset().Return(nil),
		handle.EXPECT().SetAspectRatio(gomock.Cond(func(x any) bool { r, ok := x.(float64); return ok && math.IsNaN(r) })).Return(nil),
		handle.EXPECT().Destroy(),
	)

	require.NoError(t, s.Rotate(-90))
	require.NoError(t, s.Flip(cropper.AxisX))
	require.NoError(t, s.Flip(cropper.AxisY))
	require.NoError(t, s.ApplyTemplate("story"))
	require.NoError(t, s.SetCropBox(image.Rect(0, 0, 5, 5)))

	events := recordEvents(s)
	require.NoError(t, s.ResetCrop())
	assert.Equal(t, []Event{CropReset{}}, *events)

	require.NoError(t, s.SetKeepRatio(false))
	require.NoError(t, s.Remove(0))
}

func TestSelectDecodeFailureKeepsSelection(t *testing.T) {
	codec := &flakyCodec{Processor: processing.NewProcessor(), failDecode: "b.png"}
	s := newSession(t, codec, nil, nil)
	_, err := s.Upload(context.Background(), []types.File{pngFile(t, "a.png", 8, 8), pngFile(t, "b.png", 8, 8)})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Select(1), types.ErrImageDecode)
	assert.Equal(t, 0, s.Current())
	assert.NoError(t, s.Rotate(90))
}

func TestInfo(t *testing.T) {
	s := newSession(t, nil, nil, nil)
	_, err := s.Info()
	assert.ErrorIs(t, err, types.ErrNoActiveSelection)

	_, err = s.Upload(context.Background(), []types.File{pngFile(t, "a.png", 30, 20)})
	require.NoError(t, err)

	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, EditInfo{Name: "a.png", OriginalWidth: 30, OriginalHeight: 20, Target: types.TargetDimension{Width: 1080, Height: 1080}, Format: "PNG"}, info)
}
