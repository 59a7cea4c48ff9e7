package cropper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/menta2k/image-cropper/pkg/types"
)

// ErrUnknownTemplate is returned when a template name does not match any preset
var ErrUnknownTemplate = errors.New("unknown template")

// Template is a named target size preset
type Template struct {
	Name   string `json:"name" toml:"name" yaml:"name"`
	Title  string `json:"title" toml:"title" yaml:"title"`
	Width  int    `json:"width" toml:"width" yaml:"width"`
	Height int    `json:"height" toml:"height" yaml:"height"`
}

// Common templates
var (
	Square     = Template{Name: "square", Title: "Square 1:1", Width: 1080, Height: 1080}
	Portrait   = Template{Name: "portrait", Title: "Portrait 3:4", Width: 1080, Height: 1440}
	Landscape  = Template{Name: "landscape", Title: "Landscape 4:3", Width: 1440, Height: 1080}
	Widescreen = Template{Name: "widescreen", Title: "Widescreen 16:9", Width: 1920, Height: 1080}
	Instagram  = Template{Name: "instagram", Title: "Instagram 4:5", Width: 1080, Height: 1350}
	Story      = Template{Name: "story", Title: "Story 9:16", Width: 1080, Height: 1920}
	OpenGraph  = Template{Name: "og", Title: "Open Graph 1.91:1", Width: 1200, Height: 630}
)

// CommonTemplates returns the built-in presets
func CommonTemplates() []Template {
	return []Template{Square, Portrait, Landscape, Widescreen, Instagram, Story, OpenGraph}
}

// AspectRatio returns width/height
func (t Template) AspectRatio() float64 {
	if t.Height == 0 {
		return 0
	}
	return float64(t.Width) / float64(t.Height)
}

// Target returns the template as a target dimension
func (t Template) Target() types.TargetDimension {
	return types.TargetDimension{Width: t.Width, Height: t.Height}
}

func (t Template) String() string {
	return fmt.Sprintf("%s (%dx%d)", t.Name, t.Width, t.Height)
}

// LookupTemplate finds a template by case-insensitive name. Unknown names fail with
// ErrUnknownTemplate and, when one is close enough, a suggestion.
func LookupTemplate(templates []Template, name string) (Template, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	names := make([]string, 0, len(templates))
	for _, t := range templates {
		if strings.ToLower(t.Name) == want {
			return t, nil
		}
		names = append(names, strings.ToLower(t.Name))
	}

	if suggestion := suggest(want, names); suggestion != "" {
		return Template{}, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownTemplate, name, suggestion)
	}
	return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
}

func suggest(name string, names []string) string {
	if name == "" || len(names) == 0 {
		return ""
	}
	match, err := edlib.FuzzySearchThreshold(name, names, 0.5, edlib.Levenshtein)
	if err != nil {
		return ""
	}
	return match
}
