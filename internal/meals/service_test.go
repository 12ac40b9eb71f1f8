package meals

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fdg312/meal-lens/internal/ai"
	"github.com/fdg312/meal-lens/internal/imaging"
	"github.com/fdg312/meal-lens/internal/reqctx"
)

type fakeProvider struct {
	mu       sync.Mutex
	response string
	err      error
	calls    []ai.AnalyzeRequest
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Analyze(ctx context.Context, req ai.AnalyzeRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	return p.response, p.err
}

type fakeClock struct {
	now    time.Time
	slept  []time.Duration
	sleepE error
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if c.sleepE != nil {
		return c.sleepE
	}
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestService(p ai.Provider, cooldown time.Duration) (*Service, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(p, cooldown)
	svc.now = clock.Now
	svc.sleep = clock.Sleep
	return svc, clock
}

var jpegPayload = imaging.Payload{MimeType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff, 0xe0}}

func TestAnalyze_SanitizesAndSendsPrompt(t *testing.T) {
	provider := &fakeProvider{response: "  It's difficult to determine the exact calorie count. However, the salad is about 150 calories.  "}
	svc, _ := newTestService(provider, 0)

	ctx := reqctx.WithRequestID(context.Background(), "req-1")
	got, err := svc.Analyze(ctx, jpegPayload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Text != ".  the salad is about 150 calories." {
		t.Fatalf("unexpected text: %q", got.Text)
	}
	if got.ID != "req-1" || got.Provider != "fake" {
		t.Fatalf("unexpected analysis: %+v", got)
	}

	if len(provider.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(provider.calls))
	}
	call := provider.calls[0]
	if call.Prompt != Prompt {
		t.Fatal("prompt must be sent verbatim")
	}
	if call.Image.MimeType != "image/jpeg" || len(call.Image.Data) != 4 {
		t.Fatalf("unexpected image: %+v", call.Image)
	}
}

func TestAnalyze_MissingImageMakesNoCall(t *testing.T) {
	provider := &fakeProvider{response: "ok"}
	svc, _ := newTestService(provider, time.Second)

	_, err := svc.Analyze(context.Background(), imaging.Payload{MimeType: "image/png"})
	if !errors.Is(err, imaging.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if len(provider.calls) != 0 {
		t.Fatalf("expected no provider call, got %d", len(provider.calls))
	}
}

func TestAnalyze_ProviderFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	svc, _ := newTestService(&fakeProvider{err: cause}, 0)

	_, err := svc.Analyze(context.Background(), jpegPayload)

	var extErr *ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExternalServiceError, got %T: %v", err, err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be unwrappable")
	}
	if extErr.Provider != "fake" {
		t.Fatalf("expected provider fake, got %s", extErr.Provider)
	}
	if !strings.Contains(extErr.Detail(), "quota exceeded") {
		t.Fatalf("detail should mention cause: %s", extErr.Detail())
	}
}

func TestAnalyze_EmptyAfterSanitizeIsFailure(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{response: " However, "}, 0)

	_, err := svc.Analyze(context.Background(), jpegPayload)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestAnalyze_CooldownBetweenCalls(t *testing.T) {
	provider := &fakeProvider{response: "Total: 400 calories"}
	svc, clock := newTestService(provider, time.Second)

	if _, err := svc.Analyze(context.Background(), jpegPayload); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Fatalf("first call must not wait, slept %v", clock.slept)
	}

	clock.now = clock.now.Add(300 * time.Millisecond)
	if _, err := svc.Analyze(context.Background(), jpegPayload); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(clock.slept) != 1 || clock.slept[0] != 700*time.Millisecond {
		t.Fatalf("expected a 700ms wait, got %v", clock.slept)
	}

	clock.now = clock.now.Add(2 * time.Second)
	if _, err := svc.Analyze(context.Background(), jpegPayload); err != nil {
		t.Fatalf("third call: %v", err)
	}
	if len(clock.slept) != 1 {
		t.Fatalf("no wait expected after cooldown elapsed, got %v", clock.slept)
	}
}

func TestAnalyze_CooldownAppliesAfterFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	svc, clock := newTestService(provider, time.Second)

	_, _ = svc.Analyze(context.Background(), jpegPayload)
	provider.err = nil
	provider.response = "fine"

	if _, err := svc.Analyze(context.Background(), jpegPayload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clock.slept) != 1 || clock.slept[0] != time.Second {
		t.Fatalf("expected full cooldown wait, got %v", clock.slept)
	}
}

func TestAnalyze_CancelledDuringCooldown(t *testing.T) {
	provider := &fakeProvider{response: "ok"}
	svc, clock := newTestService(provider, time.Second)

	if _, err := svc.Analyze(context.Background(), jpegPayload); err != nil {
		t.Fatalf("first call: %v", err)
	}

	clock.sleepE = context.Canceled
	_, err := svc.Analyze(context.Background(), jpegPayload)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(provider.calls) != 1 {
		t.Fatalf("cancelled query must not reach the provider, got %d calls", len(provider.calls))
	}
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

type fakeLabeler struct {
	labels []string
	err    error
	calls  int
}

func (l *fakeLabeler) Labels(ctx context.Context, img ai.Image) ([]string, error) {
	l.calls++
	return l.labels, l.err
}

func TestAnalyze_Labels(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{response: "Total: 700 calories"}, 0)
	svc.WithLabeler(&fakeLabeler{labels: []string{"Food", "Burger"}})

	got, err := svc.Analyze(context.Background(), jpegPayload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Labels) != 2 || got.Labels[1] != "Burger" {
		t.Fatalf("unexpected labels: %v", got.Labels)
	}
}

func TestAnalyze_LabelFailureIgnored(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{response: "Total: 700 calories"}, 0)
	svc.WithLabeler(&fakeLabeler{err: errors.New("AccessDenied")})

	got, err := svc.Analyze(context.Background(), jpegPayload)
	if err != nil {
		t.Fatalf("label failure must not fail the analysis: %v", err)
	}
	if got.Labels != nil || got.Text != "Total: 700 calories" {
		t.Fatalf("unexpected analysis: %+v", got)
	}
}

func TestAnalyze_LabelsWaitForCooldown(t *testing.T) {
	svc, clock := newTestService(&fakeProvider{response: "Total: 700 calories"}, time.Second)
	labeler := &fakeLabeler{labels: []string{"Food"}}
	svc.WithLabeler(labeler)

	if _, err := svc.Analyze(context.Background(), jpegPayload); err != nil {
		t.Fatalf("first call: %v", err)
	}

	clock.sleepE = context.Canceled
	if _, err := svc.Analyze(context.Background(), jpegPayload); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if labeler.calls != 1 {
		t.Fatalf("labels must not be requested before the cooldown ends, got %d calls", labeler.calls)
	}
}

func TestAnalyze_OneQueryAtATime(t *testing.T) {
	provider := &blockingProvider{release: make(chan struct{}), entered: make(chan struct{}, 2)}
	svc := NewService(provider, 0)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Analyze(context.Background(), jpegPayload)
		}()
	}

	<-provider.entered
	select {
	case <-provider.entered:
		t.Fatal("second query started while the first was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(provider.release)
	wg.Wait()
}

type blockingProvider struct {
	release chan struct{}
	entered chan struct{}
}

func (p *blockingProvider) Name() string { return "blocking" }

func (p *blockingProvider) Analyze(ctx context.Context, req ai.AnalyzeRequest) (string, error) {
	p.entered <- struct{}{}
	<-p.release
	return "Total: 100 calories", nil
}
