package avatar

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "phonebook/internal/errors"
)

func encode(t *testing.T, img image.Image, format string) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch format {
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	case "jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	}
	return buf.Bytes()
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name   string
		format string
		w, h   int
	}{
		{name: "large landscape png", format: "png", w: 800, h: 600},
		{name: "small portrait jpeg", format: "jpeg", w: 100, h: 180},
		{name: "already square", format: "png", w: 250, h: 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			out, err := Process(bytes.NewReader(encode(t, src, tt.format)))
			require.NoError(t, err)

			decoded, format, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, Size, decoded.Bounds().Dx())
			assert.Equal(t, Size, decoded.Bounds().Dy())
		})
	}
}

func TestProcess_RejectsNonImage(t *testing.T) {
	_, err := Process(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, apperrors.ErrDecode)

	_, err = Process(bytes.NewReader(nil))
	assert.ErrorIs(t, err, apperrors.ErrDecode)
}
