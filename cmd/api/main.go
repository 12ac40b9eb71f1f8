package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/meal-lens/internal/config"
	"github.com/fdg312/meal-lens/internal/httpserver"
)

func main() {
	cfg := config.Load()

	printStartupBanner(cfg)

	validateConfig(cfg)

	server, err := httpserver.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("FATAL ai: %v", err)
	}

	log.Fatal(server.Start())
}

// printStartupBanner logs a one-time summary of the resolved configuration.
// Secrets are never printed, only masked indicators ("set" / "not set").
func printStartupBanner(cfg *config.Config) {
	log.Println("========== Meal Lens API ==========")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  port             = %d", cfg.Port)
	log.Printf("  cors_origins     = %s", nonEmptyOrDash(strings.Join(cfg.CORSAllowedOrigins, ",")))
	log.Printf("  rate_limit       = %s", describeRateLimit(cfg))

	// ---- Uploads ----
	log.Println("---- uploads ----")
	log.Printf("  max_mb           = %d", cfg.UploadMaxMB)
	log.Printf("  allowed_mime     = %s", strings.Join(cfg.AllowedMimes(), ","))

	// ---- AI ----
	log.Println("---- ai ----")
	log.Printf("  ai_mode          = %s", cfg.AIMode)
	log.Printf("  cooldown         = %s", cfg.AIQueryCooldown)
	log.Printf("  timeout          = %s", describeTimeout(cfg.AITimeoutSeconds))
	switch cfg.AIMode {
	case config.AIModeGemini:
		log.Printf("  gemini_model     = %s", cfg.GeminiModel)
		log.Printf("  google_api_key   = %s", setOrNot(cfg.GoogleAPIKey))
	case config.AIModeOpenAI:
		log.Printf("  openai_model     = %s", cfg.OpenAIModel)
		log.Printf("  openai_api_key   = %s", setOrNot(cfg.OpenAIAPIKey))
	case config.AIModeBedrock:
		log.Printf("  bedrock_model    = %s", cfg.BedrockModelID)
		log.Printf("  aws_region       = %s", nonEmptyOrDash(cfg.AWSRegion))
		log.Printf("  aws_access_key   = %s", setOrNot(cfg.AWSAccessKeyID))
	default:
		log.Printf("  (canned responses, no external calls)")
	}

	// ---- Food labels ----
	log.Println("---- food labels ----")
	log.Printf("  labels_mode      = %s", cfg.FoodLabelsMode)
	if cfg.FoodLabelsMode == config.FoodLabelsRekognition {
		log.Printf("  max / confidence = %d / %.0f", cfg.FoodLabelsMax, cfg.FoodLabelsMinConfidence)
		log.Printf("  aws_region       = %s", nonEmptyOrDash(cfg.AWSRegion))
	}

	log.Println("===================================")
}

// validateConfig stops the process when the selected provider cannot work.
func validateConfig(cfg *config.Config) {
	if missing := cfg.MissingAICredentials(); len(missing) > 0 {
		log.Fatalf("FATAL ai: AI_MODE=%s but config is incomplete, missing: %s", cfg.AIMode, strings.Join(missing, ", "))
	}

	usesAWS := cfg.AIMode == config.AIModeBedrock || cfg.FoodLabelsMode == config.FoodLabelsRekognition
	if usesAWS && (cfg.AWSAccessKeyID == "") != (cfg.AWSSecretAccessKey == "") {
		log.Fatal("FATAL ai: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
	}

	isProd := cfg.Env == "production" || cfg.Env == "staging"
	if isProd && cfg.AIMode == config.AIModeMock {
		log.Printf("WARNING: AI_MODE=mock in %s, meal analysis returns canned text", cfg.Env)
	}
}

// ---- helpers (no secrets) ----

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func describeRateLimit(cfg *config.Config) string {
	if cfg.RateLimitRPS <= 0 {
		return "disabled"
	}
	return fmt.Sprintf("%d rps (burst %d)", cfg.RateLimitRPS, cfg.RateLimitBurst)
}

func describeTimeout(seconds int) string {
	if seconds <= 0 {
		return "none"
	}
	return fmt.Sprintf("%ds", seconds)
}
