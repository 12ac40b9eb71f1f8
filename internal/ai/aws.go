package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/fdg312/meal-lens/internal/config"
)

// loadAWSConfig resolves AWS settings for cfg.AWSRegion. Static keys are
// used when both are set; otherwise the default credential chain applies.
func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if strings.TrimSpace(cfg.AWSRegion) == "" {
		return aws.Config{}, fmt.Errorf("configuration incomplete: AWS_REGION is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}
