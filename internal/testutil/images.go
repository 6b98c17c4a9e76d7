package testutil

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// Gradient returns a w×h NRGBA image whose pixels differ by position.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: uint8(x + y), A: 255})
		}
	}
	return img
}

// WritePNG writes a gradient PNG at path, creating parent folders.
func WritePNG(t *testing.T, path string, w, h int) *image.NRGBA {
	t.Helper()
	img := Gradient(w, h)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return img
}

// WriteJPEG writes a gradient JPEG at path, creating parent folders.
func WriteJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, Gradient(w, h), nil))
}

// Touch creates an empty file at path, creating parent folders.
func Touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

// CategoryTree creates root/<category>/<category>_<i>.png placeholder files
// (empty, not decodable) with counts per category.
func CategoryTree(t *testing.T, root string, counts map[string]int) {
	t.Helper()
	for category, n := range counts {
		require.NoError(t, os.MkdirAll(filepath.Join(root, category), 0o755))
		for i := 0; i < n; i++ {
			Touch(t, filepath.Join(root, category, category+"_"+strconv.Itoa(i)+".png"))
		}
	}
}

