package storage

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf
}

func TestResize(t *testing.T) {
	p := NewImageProcessor()

	t.Run("fits oversized images into the box", func(t *testing.T) {
		out, err := p.Resize(pngOf(t, 4000, 3000), CoverMaxWidth, CoverMaxHeight)
		require.NoError(t, err)

		resized, format, err := image.Decode(out)
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format, "output is re-encoded as JPEG")

		b := resized.Bounds()
		assert.LessOrEqual(t, b.Dx(), CoverMaxWidth)
		assert.LessOrEqual(t, b.Dy(), CoverMaxHeight)
	})

	t.Run("keeps aspect ratio", func(t *testing.T) {
		out, err := p.Resize(pngOf(t, 2000, 1000), ThumbMaxWidth, ThumbMaxHeight)
		require.NoError(t, err)

		resized, _, err := image.Decode(out)
		require.NoError(t, err)

		b := resized.Bounds()
		assert.Equal(t, 320, b.Dx())
		assert.Equal(t, 160, b.Dy())
	})

	t.Run("rejects non-image input", func(t *testing.T) {
		_, err := p.Resize(strings.NewReader("definitely not pixels"), 100, 100)
		require.Error(t, err)
	})
}
