// Package encoder turns a selected image file into the data URI the registry
// stores inline with a person record.
package encoder

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/opticshield/opticshield/internal/cachemanager"
	"github.com/opticshield/opticshield/internal/log"
)

var (
	// ErrEmptyFile is returned for zero-length files.
	ErrEmptyFile = errors.New("file is empty")
	// ErrNotImage is returned when the content is not a recognised image.
	ErrNotImage = errors.New("file is not an image")
)

// EncodingError reports why a file could not be attached.
type EncodingError struct {
	Path string
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Options control optional downscaling.
type Options struct {
	// MaxDimension bounds the longer side. 0 keeps the original bytes.
	MaxDimension int
	// JPEGQuality applies when a downscaled JPEG is re-encoded. 0 means 85.
	JPEGQuality int
}

const cacheTTL = 10 * time.Minute

type cacheKey string

// Encoder produces data URIs. Results are cached per file version, so
// picking the same unchanged file again is instant.
type Encoder struct {
	opts  Options
	cache *cachemanager.ReadThroughCache[cacheKey, string, string]
}

// New creates an Encoder.
func New(opts Options) *Encoder {
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 85
	}
	e := &Encoder{opts: opts}
	e.cache = cachemanager.NewReadThroughCache[cacheKey, string, string](
		cachemanager.NewInMemoryCacheManager[cacheKey, string]("encoder", cacheTTL, cachemanager.DefaultCleanupInterval),
		func(_ context.Context, path string) (string, error) { return e.encode(path) },
		false,
	)
	return e
}

// Encode reads path and returns "data:<mime>;base64,<payload>". Any failure
// is an *EncodingError.
func (e *Encoder) Encode(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &EncodingError{Path: path, Err: err}
	}
	if info.IsDir() {
		return "", &EncodingError{Path: path, Err: ErrNotImage}
	}

	key := cacheKey(fmt.Sprintf("%s|%d|%d|%d|%d", path, info.Size(), info.ModTime().UnixNano(), e.opts.MaxDimension, e.opts.JPEGQuality))
	return e.cache.Get(context.Background(), key, path, cacheTTL)
}

func (e *Encoder) encode(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected file
	if err != nil {
		return "", &EncodingError{Path: path, Err: err}
	}
	if len(data) == 0 {
		return "", &EncodingError{Path: path, Err: ErrEmptyFile}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Formats the decoders do not know (webp, heic) are still embedded
		// as-is when the content sniffs as an image.
		mime := http.DetectContentType(data)
		if !strings.HasPrefix(mime, "image/") {
			return "", &EncodingError{Path: path, Err: ErrNotImage}
		}
		log.Debug(log.CatEncoder, "embedding undecodable image unchanged", "path", path, "mime", mime)
		return DataURI(mime, data), nil
	}

	mime := "image/" + format
	if e.opts.MaxDimension > 0 && max(cfg.Width, cfg.Height) > e.opts.MaxDimension {
		resized, err := e.downscale(data, format)
		if err != nil {
			return "", &EncodingError{Path: path, Err: err}
		}
		log.Debug(log.CatEncoder, "downscaled image", "path", path,
			"from", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "bytes", len(resized))
		data = resized
	}

	log.Debug(log.CatEncoder, "encoded image", "path", path, "mime", mime, "bytes", len(data))
	return DataURI(mime, data), nil
}

func (e *Encoder) downscale(data []byte, format string) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	out, err := imaging.FormatFromExtension(format)
	if err != nil {
		return nil, fmt.Errorf("unsupported output format %q: %w", format, err)
	}

	fitted := imaging.Fit(img, e.opts.MaxDimension, e.opts.MaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, out, imaging.JPEGQuality(e.opts.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("re-encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI builds a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Info describes the payload of a base64 data URI without decoding it.
type Info struct {
	MIME string
	Size int // decoded payload size in bytes
}

// ParseDataURI reads the media type and payload size of a base64 data URI.
func ParseDataURI(uri string) (Info, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Info{}, fmt.Errorf("not a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Info{}, fmt.Errorf("data URI has no payload")
	}
	mime, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return Info{}, fmt.Errorf("data URI is not base64")
	}
	if mime == "" {
		mime = "text/plain"
	}
	return Info{MIME: mime, Size: base64.StdEncoding.DecodedLen(len(payload)) - padding(payload)}, nil
}

func padding(payload string) int {
	return len(payload) - len(strings.TrimRight(payload, "="))
}
