package meals

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fdg312/meal-lens/internal/ai"
	"github.com/fdg312/meal-lens/internal/imaging"
	"github.com/fdg312/meal-lens/internal/reqctx"
)

// ErrEmptyResponse is returned when nothing is left after sanitizing.
var ErrEmptyResponse = errors.New("model returned no usable text")

// ExternalServiceError wraps any failure of the inference call. Callers
// show Detail to the user and fall back to a generic message.
type ExternalServiceError struct {
	Provider string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// Detail is the user-visible failure description.
func (e *ExternalServiceError) Detail() string {
	return fmt.Sprintf("An error occurred: %v", e.Err)
}

// Analysis is a sanitized model answer for one meal image.
type Analysis struct {
	ID       string
	Provider string
	Text     string
	Labels   []string
}

// Service runs one meal query at a time and waits a fixed cooldown after
// each call before the next one may start. Label detection runs inside the
// same slot.
type Service struct {
	provider ai.Provider
	labeler  ai.Labeler
	cooldown time.Duration

	mu          sync.Mutex
	nextAllowed time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewService(provider ai.Provider, cooldown time.Duration) *Service {
	return &Service{
		provider: provider,
		cooldown: cooldown,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// WithLabeler attaches an optional image labeler. Label failures never fail
// an analysis.
func (s *Service) WithLabeler(labeler ai.Labeler) *Service {
	s.labeler = labeler
	return s
}

// ProviderName reports which model backs the service.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// Analyze sends the fixed prompt and the image to the provider and returns
// the sanitized text. Provider failures come back as *ExternalServiceError;
// an empty payload is imaging.ErrMissingInput and no query is made.
func (s *Service) Analyze(ctx context.Context, payload imaging.Payload) (Analysis, error) {
	if len(payload.Data) == 0 {
		return Analysis{}, imaging.ErrMissingInput
	}

	requestID := reqctx.RequestIDOrNew(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if wait := s.nextAllowed.Sub(s.now()); wait > 0 {
		if err := s.sleep(ctx, wait); err != nil {
			return Analysis{}, &ExternalServiceError{Provider: s.provider.Name(), Err: err}
		}
	}

	labels := s.detectLabels(ctx, requestID, payload)

	started := s.now()
	raw, err := s.provider.Analyze(ctx, ai.AnalyzeRequest{
		Prompt: Prompt,
		Image:  ai.Image{MimeType: payload.MimeType, Data: payload.Data},
	})
	s.nextAllowed = s.now().Add(s.cooldown)

	if err != nil {
		log.Printf("WARN meals: request_id=%s provider=%s error=%v", requestID, s.provider.Name(), err)
		return Analysis{}, &ExternalServiceError{Provider: s.provider.Name(), Err: err}
	}

	text := ai.Sanitize(raw)
	if text == "" {
		log.Printf("WARN meals: request_id=%s provider=%s empty response", requestID, s.provider.Name())
		return Analysis{}, &ExternalServiceError{Provider: s.provider.Name(), Err: ErrEmptyResponse}
	}

	log.Printf("INFO meals: request_id=%s provider=%s mime=%s bytes=%d took=%s",
		requestID, s.provider.Name(), payload.MimeType, len(payload.Data), s.now().Sub(started).Round(time.Millisecond))

	return Analysis{
		ID:       requestID,
		Provider: s.provider.Name(),
		Text:     text,
		Labels:   labels,
	}, nil
}

func (s *Service) detectLabels(ctx context.Context, requestID string, payload imaging.Payload) []string {
	if s.labeler == nil {
		return nil
	}
	labels, err := s.labeler.Labels(ctx, ai.Image{MimeType: payload.MimeType, Data: payload.Data})
	if err != nil {
		log.Printf("WARN meals: request_id=%s labels skipped: %v", requestID, err)
		return nil
	}
	return labels
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
