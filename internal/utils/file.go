package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/unicode/norm"
)

var imageExts = []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "webp"}

// ErrNotDirectory is returned when a path that must be a directory is a file
var ErrNotDirectory = errors.New("not a directory")

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return os.MkdirAll(dir, 0755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	return slices.Contains(imageExts, GetFileExtension(filename))
}

// ListImageFiles recursively lists all image files in a directory, in lexical order
func ListImageFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// ExpandInputs turns a mix of files and directories into the list of files to
// process. Directories contribute their image files; files are kept as given so
// that non-images are reported by the upload filter.
func ExpandInputs(inputs []string) ([]string, error) {
	var files []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in, err)
		}
		if !info.IsDir() {
			files = append(files, in)
			continue
		}
		found, err := ListImageFiles(in)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", in, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	return err == nil && info.IsDir()
}

// SanitizeFilename normalizes a filename to NFC and replaces characters that are
// invalid in filenames with underscores
func SanitizeFilename(filename string) string {
	result := norm.NFC.String(filename)

	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}

	// Remove leading/trailing spaces and dots
	return strings.Trim(result, " .")
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}
