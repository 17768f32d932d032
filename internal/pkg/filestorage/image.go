package filestorage

import (
	"bytes"
	"fmt"
	"image"
	"io"

	// decoders for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
)

// AvatarSize is the edge length of stored avatars
const AvatarSize = 400

// SquareImage center-crops r to a square, resizes it to size×size and
// re-encodes it. PNG input stays PNG; everything else becomes JPEG.
// It returns the encoded bytes and the file extension to store them under.
func SquareImage(r io.Reader, size int) ([]byte, string, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperrors.ErrUnsupportedImage, err)
	}

	thumb := imaging.Fill(src, size, size, imaging.Center, imaging.Lanczos)

	out := imaging.JPEG
	ext := ".jpg"
	if format == "png" {
		out = imaging.PNG
		ext = ".png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, out, imaging.JPEGQuality(90)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), ext, nil
}
