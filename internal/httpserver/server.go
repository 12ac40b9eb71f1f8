package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fdg312/meal-lens/internal/ai"
	"github.com/fdg312/meal-lens/internal/config"
	"github.com/fdg312/meal-lens/internal/imaging"
	"github.com/fdg312/meal-lens/internal/meals"
	"github.com/fdg312/meal-lens/internal/nutrition"
	"github.com/fdg312/meal-lens/internal/reports"
)

// Server представляет HTTP сервер
type Server struct {
	config   *config.Config
	mux      *http.ServeMux
	provider ai.Provider
	labeler  ai.Labeler
}

// New builds the provider selected by cfg.AIMode and registers all routes.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	provider, err := ai.NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init ai provider: %w", err)
	}
	labeler, err := ai.NewLabeler(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init food labeler: %w", err)
	}
	return NewWithProvider(cfg, provider, labeler), nil
}

// NewWithProvider registers all routes around an existing provider. labeler
// may be nil.
func NewWithProvider(cfg *config.Config, provider ai.Provider, labeler ai.Labeler) *Server {
	s := &Server{
		config:   cfg,
		mux:      http.NewServeMux(),
		provider: provider,
		labeler:  labeler,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Assessment API
	nutritionService := nutrition.NewService()
	nutritionHandler := nutrition.NewHandler(nutritionService)
	s.mux.HandleFunc("POST /v1/assessment", nutritionHandler.HandleAssess)

	// Meals API
	ingestor := imaging.NewIngestor(s.config.UploadMaxMB, s.config.AllowedMimes())
	mealsService := meals.NewService(s.provider, s.config.AIQueryCooldown).WithLabeler(s.labeler)
	mealsHandler := meals.NewHandler(mealsService, ingestor)
	s.mux.HandleFunc("POST /v1/meals/preview", mealsHandler.HandlePreview)
	s.mux.HandleFunc("POST /v1/meals/analyze", mealsHandler.HandleAnalyze)

	// Reports API
	reportsService := reports.NewService(nutritionService)
	reportsHandler := reports.NewHandlers(reportsService)
	s.mux.HandleFunc("POST /v1/reports/summary", reportsHandler.HandleSummary)
}

// Handler returns the router wrapped in the middleware chain
// (outermost first): CORS → Rate Limit → Request ID → Router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = RequestIDMiddleware(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":   "ok",
		"ai_mode":  s.config.AIMode,
		"provider": s.provider.Name(),
	})
}

// Start запускает HTTP сервер
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Сервер запущен на http://localhost%s\n", addr)
	log.Printf("Health check: http://localhost%s/healthz\n", addr)
	log.Printf("Meals API: http://localhost%s/v1/meals/analyze\n", addr)

	return srv.ListenAndServe()
}
