package ai

import (
	"context"
	"encoding/base64"
)

// Provider sends one prompt plus one image to a multimodal model and returns
// the model's raw text.
type Provider interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (string, error)
	Name() string
}

// Image is an encoded image with its MIME type.
type Image struct {
	MimeType string
	Data     []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURI returns the image as a data: URI.
func (i Image) DataURI() string {
	return "data:" + i.MimeType + ";base64," + i.Base64()
}

type AnalyzeRequest struct {
	Prompt string
	Image  Image
}
