package processing

import (
	"bytes"
	"fmt"
	"image"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/types"
)

// Output formats
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
)

// Options controls how rendered canvases are encoded
type Options struct {
	Format   string
	Quality  int
	Lossless bool
}

// DefaultOptions returns PNG output
func DefaultOptions() Options {
	return Options{Format: FormatPNG, Quality: 90}
}

// Processor decodes sources, renders cover-fit canvases and encodes them
type Processor struct {
	opts Options
}

// NewProcessor creates a new image processor with default options
func NewProcessor() *Processor {
	return &Processor{opts: DefaultOptions()}
}

// NewProcessorWithOptions creates a processor with a specific output encoding
func NewProcessorWithOptions(opts Options) (*Processor, error) {
	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	opts.Format = format
	if opts.Quality < 1 || opts.Quality > 100 {
		return nil, fmt.Errorf("quality must be between 1 and 100, got %d", opts.Quality)
	}
	return &Processor{opts: opts}, nil
}

// ParseFormat normalizes an output format name. Empty means png.
func ParseFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// Format returns the output format
func (p *Processor) Format() string {
	return p.opts.Format
}

// MIMEType returns the MIME type of encoded output
func (p *Processor) MIMEType() string {
	return "image/" + p.opts.Format
}

// LoadFile reads a file from disk as an upload
func (p *Processor) LoadFile(path string) (types.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := filepath.Base(path)
	return types.File{
		Name:     name,
		MIMEType: DetectMIMEType(name, data),
		Data:     data,
	}, nil
}

// DetectMIMEType guesses a file's MIME type from its extension, then its content
func DetectMIMEType(name string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		if i := strings.IndexByte(byExt, ';'); i >= 0 {
			byExt = byExt[:i]
		}
		return byExt
	}
	if len(data) == 0 {
		return ""
	}
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}

// Ingest decodes an uploaded file once to validate it and record its size
func (p *Processor) Ingest(f types.File) (types.SourceImage, error) {
	img, format, err := p.decodeImageFromBytes(f.Data)
	if err != nil {
		return types.SourceImage{}, fmt.Errorf("%w: %s: %v", types.ErrImageDecode, f.Name, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return types.SourceImage{}, fmt.Errorf("%w: %s is %dx%d", types.ErrImageDecode, f.Name, b.Dx(), b.Dy())
	}
	mimeType := f.MIMEType
	if mimeType == "" {
		mimeType = "image/" + format
	}
	return types.SourceImage{
		Name:     filepath.Base(f.Name),
		MIMEType: mimeType,
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Data:     f.Data,
	}, nil
}

// Decode turns a source into a renderable image
func (p *Processor) Decode(src types.SourceImage) (image.Image, error) {
	img, _, err := p.decodeImageFromBytes(src.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrImageDecode, src.Name, err)
	}
	return img, nil
}

// decodeImageFromBytes decodes with EXIF orientation applied, falling back to WebP
func (p *Processor) decodeImageFromBytes(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}

	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true)); err == nil {
			return img, format, nil
		}
	}

	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, FormatWebP, nil
	}

	return nil, "", fmt.Errorf("image: unknown or unsupported format")
}

// RenderCover draws img into a fresh canvas of exactly the target size so that it
// covers the canvas, centered, with overflow clipped.
func (p *Processor) RenderCover(img image.Image, target types.TargetDimension) (*image.NRGBA, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	rect, err := cropper.CoverRectInt(bounds.Dx(), bounds.Dy(), target)
	if err != nil {
		return nil, err
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, target.Width, target.Height))
	xdraw.CatmullRom.Scale(canvas, rect.Bounds(), img, bounds, xdraw.Src, nil)
	return canvas, nil
}

// Encode encodes img in the configured output format
func (p *Processor) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	switch p.opts.Format {
	case FormatWebP:
		opts := &webp.Options{Lossless: p.opts.Lossless, Quality: float32(p.opts.Quality)}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("failed to encode webp: %w", err)
		}
	case FormatJPEG:
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.opts.Quality)); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
	default:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Artifact encodes img into a named artifact
func (p *Processor) Artifact(img image.Image, name string, index int, source string) (types.Artifact, error) {
	data, err := p.Encode(img)
	if err != nil {
		return types.Artifact{}, err
	}
	b := img.Bounds()
	return types.Artifact{
		Name:     name,
		Index:    index,
		Source:   source,
		Format:   p.opts.Format,
		MIMEType: p.MIMEType(),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Data:     data,
	}, nil
}
