package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	AIModeGemini  = "gemini"
	AIModeOpenAI  = "openai"
	AIModeBedrock = "bedrock"
	AIModeMock    = "mock"

	FoodLabelsOff         = "off"
	FoodLabelsRekognition = "rekognition"
)

// Config содержит конфигурацию приложения
type Config struct {
	Env  string // local | staging | production
	Port int

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Uploads
	UploadMaxMB       int
	UploadAllowedMime string

	// AI
	AIMode            string // gemini | openai | bedrock | mock
	AIMaxOutputTokens int
	AITemperature     float64
	AITimeoutSeconds  int // 0 = rely on the HTTP client's default
	AIQueryCooldown   time.Duration

	GoogleAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	BedrockModelID     string

	// Food labels
	FoodLabelsMode          string // off | rekognition
	FoodLabelsMax           int
	FoodLabelsMinConfidence float64
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	// APP_ENV (fallback to ENV, default: local)
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	// PORT (default: 8080)
	port := envInt("PORT", 8080)

	// ---------- CORS ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := parseBoolEnv("CORS_ALLOW_CREDENTIALS")

	// ---------- Rate Limiting ----------
	rateLimitRPS := envInt("RATE_LIMIT_RPS", 0)
	rateLimitBurst := envInt("RATE_LIMIT_BURST", 0)

	// ---------- Uploads ----------
	uploadMaxMB := envInt("UPLOAD_MAX_MB", 10)
	if uploadMaxMB <= 0 {
		uploadMaxMB = 10
	}

	// jpg/jpeg/png unless overridden.
	uploadAllowedMime := strings.TrimSpace(os.Getenv("UPLOAD_ALLOWED_MIME"))
	if uploadAllowedMime == "" {
		uploadAllowedMime = "image/jpeg,image/png"
	}

	// ---------- AI ----------
	aiMode := strings.ToLower(strings.TrimSpace(os.Getenv("AI_MODE")))
	if aiMode == "" {
		aiMode = AIModeGemini
	}
	switch aiMode {
	case AIModeGemini, AIModeOpenAI, AIModeBedrock, AIModeMock:
	default:
		log.Printf("WARNING: unknown AI_MODE=%q, fallback to %s", aiMode, AIModeMock)
		aiMode = AIModeMock
	}

	// 0 leaves the output length to the model.
	aiMaxOutputTokens := envInt("AI_MAX_OUTPUT_TOKENS", 0)
	if aiMaxOutputTokens < 0 {
		aiMaxOutputTokens = 0
	}

	aiTemperature := envFloat("AI_TEMPERATURE", 0.4)
	if aiTemperature < 0 {
		aiTemperature = 0
	}
	if aiTemperature > 2 {
		aiTemperature = 2
	}

	aiTimeoutSeconds := envInt("AI_TIMEOUT_SECONDS", 0)
	if aiTimeoutSeconds < 0 {
		aiTimeoutSeconds = 0
	}

	cooldownMS := envInt("AI_QUERY_COOLDOWN_MS", 1000)
	if cooldownMS < 0 {
		cooldownMS = 1000
	}

	geminiModel := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if geminiModel == "" {
		geminiModel = "gemini-1.5-flash"
	}
	geminiBaseURL := strings.TrimSpace(os.Getenv("GEMINI_BASE_URL"))
	if geminiBaseURL == "" {
		geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	openAIModel := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if openAIModel == "" {
		openAIModel = "gpt-4.1-mini"
	}
	openAIBaseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if openAIBaseURL == "" {
		openAIBaseURL = "https://api.openai.com/v1"
	}

	bedrockModelID := strings.TrimSpace(os.Getenv("BEDROCK_MODEL_ID"))
	if bedrockModelID == "" {
		bedrockModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	}

	// ---------- Food labels ----------
	foodLabelsMode := strings.ToLower(strings.TrimSpace(os.Getenv("FOOD_LABELS_MODE")))
	switch foodLabelsMode {
	case "":
		foodLabelsMode = FoodLabelsOff
	case FoodLabelsOff, FoodLabelsRekognition:
	default:
		log.Printf("WARNING: unknown FOOD_LABELS_MODE=%q, labels disabled", foodLabelsMode)
		foodLabelsMode = FoodLabelsOff
	}
	foodLabelsMax := envInt("FOOD_LABELS_MAX", 5)
	if foodLabelsMax <= 0 {
		foodLabelsMax = 5
	}
	foodLabelsMinConfidence := envFloat("FOOD_LABELS_MIN_CONFIDENCE", 75)
	if foodLabelsMinConfidence < 0 || foodLabelsMinConfidence > 100 {
		foodLabelsMinConfidence = 75
	}

	return &Config{
		Env:  env,
		Port: port,

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		UploadMaxMB:       uploadMaxMB,
		UploadAllowedMime: uploadAllowedMime,

		AIMode:            aiMode,
		AIMaxOutputTokens: aiMaxOutputTokens,
		AITemperature:     aiTemperature,
		AITimeoutSeconds:  aiTimeoutSeconds,
		AIQueryCooldown:   time.Duration(cooldownMS) * time.Millisecond,

		GoogleAPIKey:  strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")),
		GeminiModel:   geminiModel,
		GeminiBaseURL: strings.TrimSuffix(geminiBaseURL, "/"),

		OpenAIAPIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:   openAIModel,
		OpenAIBaseURL: strings.TrimSuffix(openAIBaseURL, "/"),

		AWSRegion:          strings.TrimSpace(os.Getenv("AWS_REGION")),
		AWSAccessKeyID:     strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID")),
		AWSSecretAccessKey: strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY")),
		BedrockModelID:     bedrockModelID,

		FoodLabelsMode:          foodLabelsMode,
		FoodLabelsMax:           foodLabelsMax,
		FoodLabelsMinConfidence: foodLabelsMinConfidence,
	}
}

// MissingAICredentials lists the env keys the selected AI mode needs but
// does not have. Mock mode needs nothing.
func (c *Config) MissingAICredentials() []string {
	var missing []string
	switch c.AIMode {
	case AIModeGemini:
		if c.GoogleAPIKey == "" {
			missing = append(missing, "GOOGLE_API_KEY")
		}
	case AIModeOpenAI:
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case AIModeBedrock:
		if c.AWSRegion == "" {
			missing = append(missing, "AWS_REGION")
		}
	}
	if c.FoodLabelsMode == FoodLabelsRekognition && c.AWSRegion == "" && c.AIMode != AIModeBedrock {
		missing = append(missing, "AWS_REGION")
	}
	return missing
}

// AllowedMimes splits UploadAllowedMime into trimmed, non-empty entries.
func (c *Config) AllowedMimes() []string {
	parts := strings.Split(c.UploadAllowedMime, ",")
	mimes := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			mimes = append(mimes, p)
		}
	}
	return mimes
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:8501"}
		}
		return nil
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
