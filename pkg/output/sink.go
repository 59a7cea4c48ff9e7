// Package output delivers encoded artifacts to their destination.
package output

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/menta2k/image-cropper/internal/utils"
	"github.com/menta2k/image-cropper/pkg/types"
)

// Sink receives artifacts as they are produced. Put returns the key the artifact
// was stored under.
type Sink interface {
	Put(ctx context.Context, a types.Artifact) (string, error)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, a types.Artifact) (string, error)

// Put calls f
func (f SinkFunc) Put(ctx context.Context, a types.Artifact) (string, error) {
	return f(ctx, a)
}

// DirSink writes artifacts as files under a root directory
type DirSink struct {
	basePath string
}

// NewDirSink initializes a DirSink rooted at basePath, creating it if needed
func NewDirSink(basePath string) (*DirSink, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("output: base path is required")
	}
	if err := utils.EnsureDir(basePath); err != nil {
		return nil, fmt.Errorf("output: ensure base path: %w", err)
	}
	return &DirSink{basePath: basePath}, nil
}

// BasePath returns the configured root directory
func (s *DirSink) BasePath() string {
	return s.basePath
}

// Put writes the artifact to <base>/<name> and returns the cleaned name
func (s *DirSink) Put(ctx context.Context, a types.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := sanitizeKey(a.Name)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := utils.EnsureDir(filepath.Dir(fullPath)); err != nil {
		return "", fmt.Errorf("output: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("output: write file: %w", err)
	}
	return key, nil
}

// sanitizeKey normalizes a key and prevents escaping the output root
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("output: artifact name is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("output: invalid artifact name %q", key)
	}
	return cleaned, nil
}

// MemorySink collects artifacts in memory. It is safe for concurrent use.
type MemorySink struct {
	mu        sync.Mutex
	artifacts []types.Artifact
}

// NewMemorySink creates an empty MemorySink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Put appends the artifact
func (s *MemorySink) Put(ctx context.Context, a types.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, a)
	return a.Name, nil
}

// Artifacts returns a copy of the collected artifacts in arrival order
func (s *MemorySink) Artifacts() []types.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Artifact, len(s.artifacts))
	copy(out, s.artifacts)
	return out
}

// Names returns the collected artifact names in arrival order
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.artifacts))
	for i, a := range s.artifacts {
		names[i] = a.Name
	}
	return names
}
