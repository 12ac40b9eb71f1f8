package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBase = "http://localhost:8080"
)

var (
	apiBase      string
	client       = &http.Client{Timeout: 120 * time.Second}
	mealImage    []byte
	mealAnalysis string
)

func main() {
	fmt.Println("=== Meal Lens E2E Smoke Test ===")
	fmt.Println()

	apiBase = getEnv("API_BASE_URL", defaultAPIBase)
	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Println()

	var err error
	mealImage, err = loadMealImage(os.Getenv("SMOKE_IMAGE"))
	if err != nil {
		fmt.Printf("❌ could not prepare image: %v\n", err)
		os.Exit(1)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Assessment", testAssessment},
		{"Assessment Hint", testAssessmentHint},
		{"Preview Image", testPreview},
		{"Analyze Without Image", testAnalyzeMissingImage},
		{"Analyze Meal", testAnalyze},
		{"Summary Report (PDF)", testSummaryPDF},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	resp, err := client.Get(apiBase + "/healthz")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var result map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	fmt.Printf("(ai_mode=%s) ", result["ai_mode"])
	return nil
}

func testAssessment() error {
	result, err := postAssessment(map[string]interface{}{
		"weight_kg":          70,
		"height_m":           1.75,
		"age":                30,
		"gender":             "Male",
		"activity_level":     "Moderately Active",
		"health_goal":        "Weight Loss",
		"dietary_preference": "Vegetarian",
	})
	if err != nil {
		return err
	}
	if result["assessed"] != true {
		return fmt.Errorf("expected assessed=true, got %v", result)
	}
	if result["bmi_category"] != "Normal weight" {
		return fmt.Errorf("expected Normal weight, got %v", result["bmi_category"])
	}
	return nil
}

func testAssessmentHint() error {
	result, err := postAssessment(map[string]interface{}{"weight_kg": 0, "height_m": 0})
	if err != nil {
		return err
	}
	if result["assessed"] != false || result["hint"] == nil {
		return fmt.Errorf("expected hint, got %v", result)
	}
	return nil
}

func testPreview() error {
	resp, err := postMultipart("/v1/meals/preview", map[string]string{"source": "upload"}, mealImage)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	cfg, _, err := image.DecodeConfig(resp.Body)
	if err != nil {
		return fmt.Errorf("decode preview: %w", err)
	}
	if cfg.Width != 800 || cfg.Height != 800 {
		return fmt.Errorf("expected 800x800 preview, got %dx%d", cfg.Width, cfg.Height)
	}
	return nil
}

func testAnalyzeMissingImage() error {
	resp, err := postMultipart("/v1/meals/analyze", map[string]string{"source": "upload"}, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		return statusError(resp)
	}
	return nil
}

func testAnalyze() error {
	fields := map[string]string{
		"source":         "upload",
		"weight_kg":      "70",
		"height_m":       "1.75",
		"age":            "30",
		"gender":         "Male",
		"activity_level": "Sedentary",
	}
	resp, err := postMultipart("/v1/meals/analyze", fields, mealImage)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var result struct {
		ID       string   `json:"id"`
		Response string   `json:"response"`
		Notes    []string `json:"notes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	if strings.TrimSpace(result.Response) == "" {
		return fmt.Errorf("empty response")
	}
	if len(result.Notes) == 0 {
		return fmt.Errorf("expected calorie note")
	}
	mealAnalysis = result.Response
	return nil
}

func testSummaryPDF() error {
	body, _ := json.Marshal(map[string]interface{}{
		"weight_kg":      70,
		"height_m":       1.75,
		"age":            30,
		"gender":         "Male",
		"activity_level": "Sedentary",
		"meal_analysis":  mealAnalysis,
	})
	resp, err := client.Post(apiBase+"/v1/reports/summary", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		return fmt.Errorf("unexpected content type %s", ct)
	}

	head := make([]byte, 5)
	if _, err := io.ReadFull(resp.Body, head); err != nil || string(head) != "%PDF-" {
		return fmt.Errorf("response is not a PDF")
	}
	return nil
}

// Helper functions

func postAssessment(payload map[string]interface{}) (map[string]interface{}, error) {
	body, _ := json.Marshal(payload)
	resp, err := client.Post(apiBase+"/v1/assessment", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return result, nil
}

func postMultipart(path string, fields map[string]string, imageData []byte) (*http.Response, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if imageData != nil {
		part, err := writer.CreateFormFile("image", "meal.png")
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(imageData); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, apiBase+path, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return client.Do(req)
}

// loadMealImage reads SMOKE_IMAGE or draws a small plate.
func loadMealImage(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			dx, dy := x-32, y-24
			c := color.RGBA{R: 240, G: 240, B: 235, A: 255}
			if dx*dx+dy*dy < 400 {
				c = color.RGBA{R: 180, G: 120, B: 60, A: 255}
			}
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
