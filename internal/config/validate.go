package config

import (
	"fmt"
	"strings"

	"github.com/menta2k/image-cropper/internal/logging"
	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/processing"
)

// ValidationError aggregates configuration problems
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	parts := []string{"invalid configuration:"}
	for _, msg := range e.Errors {
		parts = append(parts, "  - "+msg)
	}
	return strings.Join(parts, "\n")
}

// HasErrors returns true if any problem was recorded
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// Validate checks if the configuration is valid. The returned error is a
// *ValidationError listing every problem found.
func (c *Config) Validate() error {
	verr := &ValidationError{}

	if c.Target.Width < 1 {
		verr.add("target.width: must be positive, got %d", c.Target.Width)
	}
	if c.Target.Height < 1 {
		verr.add("target.height: must be positive, got %d", c.Target.Height)
	}

	templates := c.AllTemplates()
	for _, t := range c.Templates {
		if strings.TrimSpace(t.Name) == "" {
			verr.add("templates: name is required")
		}
		if t.Width < 1 || t.Height < 1 {
			verr.add("templates.%s: size must be positive, got %dx%d", t.Name, t.Width, t.Height)
		}
	}
	if c.Target.Template != "" {
		if _, err := cropper.LookupTemplate(templates, c.Target.Template); err != nil {
			verr.add("target.template: %v", err)
		}
	}

	if c.Upload.MaxFiles < 1 {
		verr.add("upload.max_files: must be positive, got %d", c.Upload.MaxFiles)
	}

	if _, err := processing.ParseFormat(c.Export.Format); err != nil {
		verr.add("export.format: %v", err)
	}
	if c.Export.Quality < 1 || c.Export.Quality > 100 {
		verr.add("export.quality: must be between 1 and 100, got %d", c.Export.Quality)
	}
	if d, err := c.ThrottleDuration(); err != nil {
		verr.add("%v", err)
	} else if d < 0 {
		verr.add("export.throttle: must not be negative, got %s", d)
	}

	if c.Crop.AutoCropArea <= 0 || c.Crop.AutoCropArea > 1 {
		verr.add("crop.auto_crop_area: must be in (0, 1], got %g", c.Crop.AutoCropArea)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		verr.add("log.level: %v", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		verr.add("log.format: must be console or json, got %q", c.Log.Format)
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
