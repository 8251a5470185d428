package tools

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectImageType(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	pngBuf := new(bytes.Buffer)
	require.NoError(t, png.Encode(pngBuf, img))
	require.Equal(t, ImageTypePNG, DetectImageType(pngBuf.Bytes()))

	jpegBuf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(jpegBuf, img, nil))
	require.Equal(t, ImageTypeJPEG, DetectImageType(jpegBuf.Bytes()))

	require.Equal(t, ImageTypeGIF, DetectImageType([]byte("GIF89a trailing")))
	require.Equal(t, ImageTypeUnknown, DetectImageType([]byte("not an image")))
	require.Equal(t, ImageTypeUnknown, DetectImageType(nil))
}

func TestConvertAndCompressToJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	pngBuf := new(bytes.Buffer)
	require.NoError(t, png.Encode(pngBuf, img))

	out, err := ConvertAndCompressToJPEG(pngBuf.Bytes(), 85)
	require.NoError(t, err)
	require.Equal(t, ImageTypeJPEG, DetectImageType(out))

	_, err = ConvertAndCompressToJPEG([]byte("garbage"), 85)
	require.Error(t, err)
}
