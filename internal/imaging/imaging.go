// Package imaging turns an uploaded file or a camera capture into a MIME
// tagged payload for the model, and a fixed-size bitmap for display.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
)

// TargetSize is the edge length of the normalized display bitmap.
const TargetSize = 800

// MaxPixels caps the decoded size of an image. Compressed uploads can
// declare dimensions far larger than their byte size.
const MaxPixels = 40_000_000

var (
	ErrMissingInput    = errors.New("no image provided")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedMime = errors.New("unsupported mime type")
	ErrUndecodable     = errors.New("image could not be decoded")
	ErrImageTooLarge   = errors.New("image dimensions too large")
)

// Source is where the image came from.
type Source string

const (
	SourceUpload Source = "upload"
	SourceCamera Source = "camera"
)

// cameraMimeType is assumed for every camera capture.
const cameraMimeType = "image/jpeg"

// ParseSource accepts "upload"/"camera" and the form labels
// "Upload an Image"/"Take a Photo". Anything else is an upload.
func ParseSource(raw string) Source {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "camera", strings.Contains(s, "photo"):
		return SourceCamera
	default:
		return SourceUpload
	}
}

// Payload is the image as sent to the model.
type Payload struct {
	MimeType string
	Data     []byte
}

// Ingestor validates incoming images against size and MIME limits.
type Ingestor struct {
	maxBytes     int64
	allowedMimes []string
}

func NewIngestor(maxUploadMB int, allowedMimes []string) *Ingestor {
	return &Ingestor{
		maxBytes:     int64(maxUploadMB) * 1024 * 1024,
		allowedMimes: allowedMimes,
	}
}

// MaxBytes is the accepted upload size.
func (i *Ingestor) MaxBytes() int64 {
	return i.maxBytes
}

// Ingest builds a Payload from raw bytes. Camera captures are tagged
// image/jpeg; uploads keep the declared type, sniffed when missing.
func (i *Ingestor) Ingest(src Source, data []byte, declaredMime string) (Payload, error) {
	if len(data) == 0 {
		return Payload{}, ErrMissingInput
	}
	if i.maxBytes > 0 && int64(len(data)) > i.maxBytes {
		return Payload{}, ErrFileTooLarge
	}

	mimeType := cameraMimeType
	if src != SourceCamera {
		mimeType = normalizeMime(declaredMime)
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = normalizeMime(http.DetectContentType(data))
		}
	}

	if !i.isAllowedMime(mimeType) {
		return Payload{}, fmt.Errorf("%w: %s", ErrUnsupportedMime, mimeType)
	}

	return Payload{MimeType: mimeType, Data: data}, nil
}

// IngestFile reads an already opened multipart file; the caller closes it.
// A nil file or header means nothing was submitted.
func (i *Ingestor) IngestFile(src Source, file io.Reader, fileHeader *multipart.FileHeader) (Payload, error) {
	if file == nil || fileHeader == nil {
		return Payload{}, ErrMissingInput
	}
	if i.maxBytes > 0 && fileHeader.Size > i.maxBytes {
		return Payload{}, ErrFileTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to read file: %w", err)
	}

	return i.Ingest(src, data, fileHeader.Header.Get("Content-Type"))
}

func (i *Ingestor) isAllowedMime(mimeType string) bool {
	if len(i.allowedMimes) == 0 {
		return strings.HasPrefix(mimeType, "image/")
	}
	for _, allowed := range i.allowedMimes {
		if strings.EqualFold(mimeType, allowed) {
			return true
		}
	}
	return false
}

// Normalize decodes the payload and stretches it to TargetSize×TargetSize.
// The aspect ratio is not preserved. Images over MaxPixels are rejected
// before decoding.
func Normalize(p Payload) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, TargetSize, TargetSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// Preview returns the normalized bitmap encoded for display: PNG for PNG
// input, JPEG otherwise.
func Preview(p Payload) ([]byte, string, error) {
	img, err := Normalize(p)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if p.MimeType == "image/png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("failed to encode preview: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, "", fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

func normalizeMime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		mediaType = raw
	}
	mediaType = strings.ToLower(mediaType)
	if mediaType == "image/jpg" || mediaType == "image/pjpeg" {
		return "image/jpeg"
	}
	return mediaType
}
