// Package features derives lightweight, classification-independent
// document evidence: file extension, size, and best-effort text content.
package features

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/doctriage/doctriage/pkg/models"
)

// Source provides document features for a document reference. Text
// extraction is best-effort: a missing text body is a degraded feature,
// never an error.
type Source interface {
	Features(ctx context.Context, ref string) (models.DocumentFeatures, error)
}

// textExtensions are the formats read directly as text. Anything else
// yields an empty TextContent.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".json": true,
	".xml": true, ".html": true, ".log": true,
}

// maxTextBytes caps how much document text is loaded for keyword matching.
const maxTextBytes = 256 * 1024

// FileSource reads features from the local filesystem.
type FileSource struct{}

// NewFileSource creates a filesystem-backed feature source.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Features returns extension, size, and text content for a local file.
// A stat failure is a collaborator failure and surfaces as an error; an
// unreadable or non-text body degrades to an empty TextContent.
func (s *FileSource) Features(ctx context.Context, ref string) (models.DocumentFeatures, error) {
	f := models.DocumentFeatures{
		Extension: strings.ToLower(filepath.Ext(ref)),
	}

	info, err := os.Stat(ref)
	if err != nil {
		return f, err
	}
	f.Size = info.Size()

	if !textExtensions[f.Extension] {
		return f, nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		// Degraded feature only; metadata is still usable.
		return f, nil
	}
	if len(data) > maxTextBytes {
		data = data[:maxTextBytes]
	}
	f.TextContent = string(data)
	return f, nil
}
