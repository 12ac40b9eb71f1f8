package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/fdg312/meal-lens/internal/config"
)

// Labeler names what is visible in an image. Labels only annotate a meal
// analysis; they never replace the model's estimate.
type Labeler interface {
	Labels(ctx context.Context, img Image) ([]string, error)
}

// NewLabeler returns the labeler selected by cfg.FoodLabelsMode, or nil
// when labeling is off.
func NewLabeler(ctx context.Context, cfg *config.Config) (Labeler, error) {
	switch cfg.FoodLabelsMode {
	case "", config.FoodLabelsOff:
		return nil, nil
	case config.FoodLabelsRekognition:
		return NewRekognitionLabeler(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported food labels mode: %s", cfg.FoodLabelsMode)
	}
}

type labelDetector interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionLabeler calls Amazon Rekognition DetectLabels.
type RekognitionLabeler struct {
	client        labelDetector
	maxLabels     int
	minConfidence float64
}

func NewRekognitionLabeler(ctx context.Context, cfg *config.Config) (*RekognitionLabeler, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("rekognition: %w", err)
	}
	return newRekognitionLabelerWithClient(rekognition.NewFromConfig(awsCfg), cfg), nil
}

func newRekognitionLabelerWithClient(client labelDetector, cfg *config.Config) *RekognitionLabeler {
	return &RekognitionLabeler{
		client:        client,
		maxLabels:     cfg.FoodLabelsMax,
		minConfidence: cfg.FoodLabelsMinConfidence,
	}
}

func (l *RekognitionLabeler) Labels(ctx context.Context, img Image) ([]string, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("rekognition: empty image")
	}

	out, err := l.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: img.Data},
		MaxLabels:     aws.Int32(int32(l.maxLabels)),
		MinConfidence: aws.Float32(float32(l.minConfidence)),
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition detect labels failed: %w", err)
	}

	labels := make([]string, 0, len(out.Labels))
	for _, label := range out.Labels {
		if label.Name == nil {
			continue
		}
		if name := strings.TrimSpace(*label.Name); name != "" {
			labels = append(labels, name)
		}
	}
	return labels, nil
}
