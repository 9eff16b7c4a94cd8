package encoder

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func writeJPEG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h)), nil))
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func decodePayload(t *testing.T, uri string) []byte {
	t.Helper()
	_, payload, ok := strings.Cut(uri, ",")
	require.True(t, ok)
	data, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	return data
}

func TestEncode_PNGKeepsOriginalBytes(t *testing.T) {
	path := writePNG(t, t.TempDir(), 4, 3)
	orig, err := os.ReadFile(path)
	require.NoError(t, err)

	uri, err := New(Options{}).Encode(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	require.Equal(t, orig, decodePayload(t, uri))
}

func TestEncode_Downscales(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		path   string
		mime   string
		wantW  int
		wantH  int
		maxDim int
	}{
		{"png landscape", writePNG(t, dir, 200, 100), "image/png", 50, 25, 50},
		{"jpeg portrait", writeJPEG(t, dir, 60, 120), "image/jpeg", 20, 40, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := New(Options{MaxDimension: tt.maxDim, JPEGQuality: 70}).Encode(tt.path)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(uri, "data:"+tt.mime+";base64,"))

			cfg, _, err := image.DecodeConfig(bytes.NewReader(decodePayload(t, uri)))
			require.NoError(t, err)
			require.Equal(t, tt.wantW, cfg.Width)
			require.Equal(t, tt.wantH, cfg.Height)
		})
	}
}

func TestEncode_SmallImageNotResized(t *testing.T) {
	path := writePNG(t, t.TempDir(), 10, 10)
	orig, err := os.ReadFile(path)
	require.NoError(t, err)

	uri, err := New(Options{MaxDimension: 64}).Encode(path)
	require.NoError(t, err)
	require.Equal(t, orig, decodePayload(t, uri))
}

func TestEncode_Failures(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello, not an image"), 0o600))
	empty := filepath.Join(dir, "empty.png")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "nope.png"), fs.ErrNotExist},
		{"empty", empty, ErrEmptyFile},
		{"text", text, ErrNotImage},
		{"directory", dir, ErrNotImage},
	}
	enc := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := enc.Encode(tt.path)
			require.Empty(t, uri)

			var encErr *EncodingError
			require.True(t, errors.As(err, &encErr))
			require.Equal(t, tt.path, encErr.Path)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncode_UndecodableImageEmbeddedUnchanged(t *testing.T) {
	// RIFF....WEBPVP8 sniffs as image/webp, which has no registered decoder.
	data := append([]byte("RIFF\x00\x00\x00\x00WEBPVP8 "), make([]byte, 16)...)
	path := filepath.Join(t.TempDir(), "photo.webp")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	uri, err := New(Options{MaxDimension: 10}).Encode(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/webp;base64,"))
	require.Equal(t, data, decodePayload(t, uri))
}

func TestEncode_ReencodesChangedFile(t *testing.T) {
	dir := t.TempDir()
	enc := New(Options{})

	path := writePNG(t, dir, 4, 4)
	first, err := enc.Encode(path)
	require.NoError(t, err)

	again, err := enc.Encode(path)
	require.NoError(t, err)
	require.Equal(t, first, again)

	writePNG(t, dir, 8, 8)
	later := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	changed, err := enc.Encode(path)
	require.NoError(t, err)
	require.NotEqual(t, first, changed)
}

func TestParseDataURI(t *testing.T) {
	info, err := ParseDataURI(DataURI("image/png", make([]byte, 1234)))
	require.NoError(t, err)
	require.Equal(t, Info{MIME: "image/png", Size: 1234}, info)

	for _, n := range []int{0, 1, 2, 3} {
		info, err := ParseDataURI(DataURI("image/gif", make([]byte, n)))
		require.NoError(t, err)
		require.Equal(t, n, info.Size)
	}

	info, err = ParseDataURI("data:;base64,AAAA")
	require.NoError(t, err)
	require.Equal(t, "text/plain", info.MIME)

	_, err = ParseDataURI("https://example.com/a.png")
	require.Error(t, err)
	_, err = ParseDataURI("data:image/png;base64")
	require.Error(t, err)
	_, err = ParseDataURI("data:image/svg+xml,<svg/>")
	require.Error(t, err)
}
