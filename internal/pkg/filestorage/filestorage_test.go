package filestorage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/apperrors"
)

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/")
	require.NoError(t, err)

	url, err := ls.Save(strings.NewReader("hello"), "avatars/7", "png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/avatars/7/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	full := ls.GetFullPath(url)
	assert.Equal(t, filepath.Join(dir, "avatars", "7"), filepath.Dir(full))
	content, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	require.NoError(t, ls.DeleteFile(url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, ls.DeleteFile(url), "deleting twice is fine")
}

func TestLocalStorage_RejectsEscapes(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	url, err := ls.Save(strings.NewReader("x"), "../../etc", ".txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/etc/"), url)

	assert.Equal(t, "", ls.GetFullPath("https://elsewhere.example/file.png"))
	assert.Error(t, ls.DeleteFile("not-a-stored-file"))
}

func TestSquareImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 500))
	for x := 0; x < 800; x++ {
		for y := 0; y < 500; y++ {
			src.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, src))

	out, ext, err := SquareImage(&in, AvatarSize)
	require.NoError(t, err)
	assert.Equal(t, ".png", ext)

	decoded, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, AvatarSize, decoded.Bounds().Dx())
	assert.Equal(t, AvatarSize, decoded.Bounds().Dy())
}

func TestSquareImage_RejectsNonImages(t *testing.T) {
	_, _, err := SquareImage(strings.NewReader("definitely not an image"), AvatarSize)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedImage)
}
