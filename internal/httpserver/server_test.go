package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/meal-lens/internal/config"
	"github.com/fdg312/meal-lens/internal/reqctx"
	"github.com/google/uuid"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              8080,
		AIMode:            config.AIModeMock,
		UploadMaxMB:       10,
		UploadAllowedMime: "image/jpeg,image/png",
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", resp["status"])
	}
	if resp["ai_mode"] != "mock" || resp["provider"] != "mock" {
		t.Errorf("expected mock provider, got %v", resp)
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestNew_UnsupportedMode(t *testing.T) {
	cfg := testConfig()
	cfg.AIMode = "telepathy"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unsupported ai mode")
	}
}

func TestAssessmentRoute(t *testing.T) {
	srv := newTestServer(t)

	body := `{"weight_kg":70,"height_m":1.75,"age":30,"gender":"Male","activity_level":"Sedentary"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/assessment", strings.NewReader(body))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := uuid.Parse(w.Header().Get("X-Request-ID")); err != nil {
		t.Errorf("expected generated request id, got %q", w.Header().Get("X-Request-ID"))
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["assessed"] != true || resp["bmi_category"] != "Normal weight" {
		t.Errorf("unexpected assessment: %v", resp)
	}
}

func TestAnalyzeRoute_MockProvider(t *testing.T) {
	srv := newTestServer(t)

	var imgBuf bytes.Buffer
	if err := png.Encode(&imgBuf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("source", "upload")
	part, _ := mw.CreateFormFile("image", "meal.png")
	part.Write(imgBuf.Bytes())
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/meals/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Request-ID", "trace-42")
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Request-ID"); got != "trace-42" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["id"] != "trace-42" {
		t.Errorf("expected analysis id trace-42, got %v", resp["id"])
	}
	text, _ := resp["response"].(string)
	if strings.Contains(text, "However,") || strings.Contains(text, "It's difficult to determine the exact calorie count") {
		t.Errorf("response was not sanitized: %q", text)
	}
	if !strings.Contains(text, "Total: 580 calories") {
		t.Errorf("unexpected response: %q", text)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = reqctx.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("oversized id should be replaced with a uuid, got %q", seen)
	}
	if w.Header().Get("X-Request-ID") != seen {
		t.Fatal("response header must match context id")
	}
}
