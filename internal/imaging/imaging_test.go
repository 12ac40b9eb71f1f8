package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"testing"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func sampleJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func newTestIngestor() *Ingestor {
	return NewIngestor(10, []string{"image/jpeg", "image/png"})
}

func TestIngest_MissingInput(t *testing.T) {
	ing := newTestIngestor()
	if _, err := ing.Ingest(SourceUpload, nil, "image/png"); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if _, err := ing.IngestFile(SourceCamera, nil, nil); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput for nil file, got %v", err)
	}
}

func TestIngest_UploadKeepsDeclaredMime(t *testing.T) {
	data := samplePNG(t, 10, 10)
	p, err := newTestIngestor().Ingest(SourceUpload, data, "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MimeType != "image/png" {
		t.Fatalf("expected image/png, got %s", p.MimeType)
	}
	if !bytes.Equal(p.Data, data) {
		t.Fatal("payload bytes must be the uploaded bytes")
	}
}

func TestIngest_MimeHandling(t *testing.T) {
	pngData := samplePNG(t, 4, 4)
	jpegData := sampleJPEG(t, 4, 4)

	tests := []struct {
		name     string
		src      Source
		data     []byte
		declared string
		want     string
	}{
		{"camera is always jpeg", SourceCamera, pngData, "image/png", "image/jpeg"},
		{"sniffed when empty", SourceUpload, pngData, "", "image/png"},
		{"sniffed when octet-stream", SourceUpload, jpegData, "application/octet-stream", "image/jpeg"},
		{"jpg alias", SourceUpload, jpegData, "image/jpg", "image/jpeg"},
		{"parameters stripped", SourceUpload, pngData, "IMAGE/PNG; charset=binary", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newTestIngestor().Ingest(tt.src, tt.data, tt.declared)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.MimeType != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, p.MimeType)
			}
		})
	}
}

func TestIngest_Rejections(t *testing.T) {
	if _, err := newTestIngestor().Ingest(SourceUpload, []byte("GIF89a...."), "image/gif"); !errors.Is(err, ErrUnsupportedMime) {
		t.Fatalf("expected ErrUnsupportedMime, got %v", err)
	}

	small := NewIngestor(1, []string{"image/png"})
	big := make([]byte, 1024*1024+1)
	if _, err := small.Ingest(SourceUpload, big, "image/png"); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestNormalize_StretchesTo800(t *testing.T) {
	for _, size := range [][2]int{{40, 20}, {1200, 300}, {800, 800}, {1, 1}} {
		img, err := Normalize(Payload{MimeType: "image/png", Data: samplePNG(t, size[0], size[1])})
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", size, err)
		}
		b := img.Bounds()
		if b.Dx() != TargetSize || b.Dy() != TargetSize {
			t.Fatalf("%v: expected 800x800, got %dx%d", size, b.Dx(), b.Dy())
		}
	}
}

// pngWithDimensions returns a small PNG whose header declares w×h pixels.
// Only the header is valid, which is all DecodeConfig reads.
func pngWithDimensions(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := samplePNG(t, 1, 1)
	// signature(8) + length(4) + "IHDR"(4), then width and height.
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestNormalize_RejectsHugeDimensions(t *testing.T) {
	data := pngWithDimensions(t, 12000, 12000)
	if _, err := newTestIngestor().Ingest(SourceUpload, data, "image/png"); err != nil {
		t.Fatalf("small upload should pass ingestion: %v", err)
	}

	_, err := Normalize(Payload{MimeType: "image/png", Data: data})
	if !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge, got %v", err)
	}
	if _, _, err := Preview(Payload{MimeType: "image/png", Data: data}); !errors.Is(err, ErrImageTooLarge) {
		t.Fatalf("expected ErrImageTooLarge from preview, got %v", err)
	}
}

func TestIngestFile_ReadsGivenFile(t *testing.T) {
	data := samplePNG(t, 3, 3)
	header := &multipart.FileHeader{
		Filename: "meal.png",
		Header:   textproto.MIMEHeader{"Content-Type": {"image/png"}},
		Size:     int64(len(data)),
	}

	p, err := newTestIngestor().IngestFile(SourceUpload, bytes.NewReader(data), header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MimeType != "image/png" || !bytes.Equal(p.Data, data) {
		t.Fatalf("unexpected payload: %s, %d bytes", p.MimeType, len(p.Data))
	}

	header.Size = 11 * 1024 * 1024
	if _, err := newTestIngestor().IngestFile(SourceUpload, bytes.NewReader(data), header); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestNormalize_Undecodable(t *testing.T) {
	if _, err := Normalize(Payload{MimeType: "image/png", Data: []byte("not an image")}); !errors.Is(err, ErrUndecodable) {
		t.Fatalf("expected ErrUndecodable, got %v", err)
	}
}

func TestPreview_Formats(t *testing.T) {
	data, contentType, err := Preview(Payload{MimeType: "image/png", Data: samplePNG(t, 30, 60)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("expected png preview, got %s", contentType)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if cfg.Width != TargetSize || cfg.Height != TargetSize {
		t.Fatalf("expected 800x800 preview, got %dx%d", cfg.Width, cfg.Height)
	}

	_, contentType, err = Preview(Payload{MimeType: "image/jpeg", Data: sampleJPEG(t, 16, 16)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contentType != "image/jpeg" {
		t.Fatalf("expected jpeg preview, got %s", contentType)
	}
}

func TestParseSource(t *testing.T) {
	cases := map[string]Source{
		"camera":          SourceCamera,
		"Take a Photo":    SourceCamera,
		"upload":          SourceUpload,
		"Upload an Image": SourceUpload,
		"":                SourceUpload,
	}
	for in, want := range cases {
		if got := ParseSource(in); got != want {
			t.Errorf("ParseSource(%q) = %s, want %s", in, got, want)
		}
	}
}
