package features

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturesFromTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invoice.txt")
	require.NoError(t, os.WriteFile(path, []byte("Invoice #42: amount due $100"), 0o644))

	f, err := NewFileSource().Features(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, ".txt", f.Extension)
	assert.Equal(t, int64(28), f.Size)
	assert.Equal(t, "Invoice #42: amount due $100", f.TextContent)
}

func TestFeaturesBinaryFormatDegradesText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.PDF")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7 binary"), 0o644))

	f, err := NewFileSource().Features(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, ".pdf", f.Extension)
	assert.Empty(t, f.TextContent)
	assert.NotZero(t, f.Size)
}

func TestFeaturesMissingFile(t *testing.T) {
	f, err := NewFileSource().Features(context.Background(), "/nonexistent/report.csv")
	assert.Error(t, err)
	assert.Equal(t, ".csv", f.Extension)
}
