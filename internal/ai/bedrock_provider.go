package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/fdg312/meal-lens/internal/config"
)

// converser is the subset of the Bedrock Runtime client the provider uses.
type converser interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockProvider calls the Bedrock Runtime Converse API with a text block
// and an image block in a single user message.
type BedrockProvider struct {
	client      converser
	modelID     string
	maxTokens   int
	temperature float64
}

// NewBedrockProvider builds a Bedrock Runtime client for cfg.AWSRegion.
func NewBedrockProvider(ctx context.Context, cfg *config.Config) (*BedrockProvider, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bedrock: %w", err)
	}

	return newBedrockProviderWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

func newBedrockProviderWithClient(client converser, cfg *config.Config) *BedrockProvider {
	return &BedrockProvider{
		client:      client,
		modelID:     cfg.BedrockModelID,
		maxTokens:   cfg.AIMaxOutputTokens,
		temperature: cfg.AITemperature,
	}
}

func (p *BedrockProvider) Name() string {
	return "bedrock/" + p.modelID
}

func (p *BedrockProvider) Analyze(ctx context.Context, req AnalyzeRequest) (string, error) {
	format, err := bedrockImageFormat(req.Image.MimeType)
	if err != nil {
		return "", err
	}

	out, err := p.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(p.modelID),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: req.Prompt},
					&types.ContentBlockMemberImage{Value: types.ImageBlock{
						Format: format,
						Source: &types.ImageSourceMemberBytes{Value: req.Image.Data},
					}},
				},
			},
		},
		InferenceConfig: p.inferenceConfig(),
	})
	if err != nil {
		return "", fmt.Errorf("bedrock converse failed: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock response does not contain a message")
	}

	var text strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			text.WriteString(t.Value)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("bedrock response has no text (stop_reason=%s)", out.StopReason)
	}

	return text.String(), nil
}

func (p *BedrockProvider) inferenceConfig() *types.InferenceConfiguration {
	cfg := &types.InferenceConfiguration{
		Temperature: aws.Float32(float32(p.temperature)),
	}
	if p.maxTokens > 0 {
		cfg.MaxTokens = aws.Int32(int32(p.maxTokens))
	}
	return cfg
}

func bedrockImageFormat(mimeType string) (types.ImageFormat, error) {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return types.ImageFormatJpeg, nil
	case "image/png":
		return types.ImageFormatPng, nil
	case "image/gif":
		return types.ImageFormatGif, nil
	case "image/webp":
		return types.ImageFormatWebp, nil
	default:
		return "", fmt.Errorf("bedrock does not accept image type %q", mimeType)
	}
}
