package ai

import (
	"context"
	"fmt"
)

// MockProvider returns a fixed estimate without calling any service.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string {
	return "mock"
}

func (p *MockProvider) Analyze(ctx context.Context, req AnalyzeRequest) (string, error) {
	_ = ctx

	if len(req.Image.Data) == 0 {
		return "", fmt.Errorf("mock provider: empty image")
	}

	return fmt.Sprintf(
		"It's difficult to determine the exact calorie count from a photo alone. However, here is an estimate:\n\n"+
			"1. Grilled chicken breast - 280 calories\n"+
			"2. Steamed rice - 210 calories\n"+
			"3. Mixed salad - 90 calories\n\n"+
			"Total: 580 calories\n\n"+
			"This is a balanced plate with lean protein and vegetables. Adding a side of fruit would round it out nicely.\n"+
			"(demo mode, %s image of %d bytes)",
		req.Image.MimeType,
		len(req.Image.Data),
	), nil
}
