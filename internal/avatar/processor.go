package avatar

import (
	"bytes"
	"io"

	"github.com/disintegration/imaging"

	apperrors "phonebook/internal/errors"
)

// Size is the canonical square avatar dimension.
const Size = 250

// Process decodes arbitrary uploaded image bytes and renders the canonical
// avatar: a 250x250 center-cropped PNG. Undecodable input fails with
// ErrDecode regardless of the declared content type.
func Process(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.ErrDecode
	}

	thumb := imaging.Fill(img, Size, Size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, apperrors.ErrDecode
	}
	return buf.Bytes(), nil
}
