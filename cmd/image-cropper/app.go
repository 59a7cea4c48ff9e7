package main

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	imagecropper "github.com/menta2k/image-cropper"
	"github.com/menta2k/image-cropper/internal/config"
	"github.com/menta2k/image-cropper/pkg/batch"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/processing"
	"github.com/menta2k/image-cropper/pkg/session"
	"github.com/menta2k/image-cropper/pkg/types"
)

// targetFlags are shared by commands that export at a target size
type targetFlags struct {
	width    int
	height   int
	template string
	format   string
	quality  int
	outDir   string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.width, "width", 0, "Target width in pixels")
	cmd.Flags().IntVar(&f.height, "height", 0, "Target height in pixels")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Target size preset (see 'templates')")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: png, jpeg or webp")
	cmd.Flags().IntVar(&f.quality, "quality", 0, "JPEG/WebP quality (1-100)")
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "", "Output directory")
}

// apply layers the flags over the loaded config. Width and height are left to
// resolveTarget.
func (f *targetFlags) apply(c *config.Config) {
	if f.template != "" {
		c.Target.Template = f.template
	}
	if f.format != "" {
		c.Export.Format = f.format
	}
	if f.quality > 0 {
		c.Export.Quality = f.quality
	}
	if f.outDir != "" {
		c.Export.OutputDir = f.outDir
	}
}

// resolveTarget picks the export size: a template sets both sides, explicit
// width or height flags then override it. With the ratio locked a single side
// flag scales the other one.
func resolveTarget(c *config.Config, f *targetFlags) (types.TargetDimension, error) {
	target := types.TargetDimension{Width: c.Target.Width, Height: c.Target.Height}
	if c.Target.Template != "" {
		tmpl, err := cropper.LookupTemplate(c.AllTemplates(), c.Target.Template)
		if err != nil {
			return types.TargetDimension{}, err
		}
		target = tmpl.Target()
	}
	if f != nil {
		ratio := target.Ratio()
		switch {
		case f.width > 0 && f.height > 0:
			target = types.TargetDimension{Width: f.width, Height: f.height}
		case f.width > 0:
			target.Width = f.width
			if c.Target.KeepRatio && ratio > 0 {
				target.Height = int(math.Round(float64(f.width) / ratio))
			}
		case f.height > 0:
			target.Height = f.height
			if c.Target.KeepRatio && ratio > 0 {
				target.Width = int(math.Round(float64(f.height) * ratio))
			}
		}
	}
	if err := target.Validate(); err != nil {
		return types.TargetDimension{}, err
	}
	return target, nil
}

// newImageCropper wires the library from the config
func newImageCropper(c *config.Config, target types.TargetDimension, onItem func(batch.ItemResult)) (*imagecropper.ImageCropper, error) {
	throttle, err := c.ThrottleDuration()
	if err != nil {
		return nil, err
	}

	opts := session.DefaultOptions()
	opts.MaxUploads = c.Upload.MaxFiles
	opts.Target = target
	opts.KeepRatio = c.Target.KeepRatio
	opts.Templates = c.AllTemplates()
	opts.View = cropper.ViewOptions{AutoCropArea: c.Crop.AutoCropArea}
	opts.SinglePrefix = c.Export.SinglePrefix
	opts.BatchPrefix = c.Export.BatchPrefix

	return imagecropper.NewWithConfig(imagecropper.Config{
		Output: processing.Options{
			Format:   c.Export.Format,
			Quality:  c.Export.Quality,
			Lossless: c.Export.Lossless,
		},
		Session:  opts,
		Throttle: throttle,
		OnItem:   onItem,
		Logger:   logger,
	})
}

// parseCrop parses "x,y,w,h" into a rectangle
func parseCrop(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("crop must be x,y,w,h, got %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("crop value %q: %w", p, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: crop size %dx%d", types.ErrInvalidDimension, v[2], v[3])
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
