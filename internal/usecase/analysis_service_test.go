package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labelscan/backend/internal/domain"
)

// stubModel scripts Generate outcomes per call and records every prompt.
type stubModel struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	fn      func(call int) (string, error)
}

func (m *stubModel) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.fn(call)
}

func (m *stubModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *stubModel) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

const validModelReply = `Here is the analysis:
[{"ingredient": "Sugar", "healthRating": "Bad", "healthScore": 30, "explanation": "added sugar"},
 {"ingredient": "Water", "healthRating": "Neutral", "healthScore": 50, "explanation": "hydration"}]`

// newTestService builds an AnalysisService with instant sleeps, zero
// jitter, and a recorder for every backoff delay.
func newTestService(model domain.ModelClient, cfg AnalysisConfig) (*AnalysisService, *[]time.Duration) {
	service := NewAnalysisService(model, cfg, nil)
	delays := &[]time.Duration{}
	service.sleep = func(d time.Duration) { *delays = append(*delays, d) }
	service.jitter = func() time.Duration { return 0 }
	return service, delays
}

func TestAnalyzeSuccess(t *testing.T) {
	model := &stubModel{fn: func(int) (string, error) { return validModelReply, nil }}
	service, _ := newTestService(model, AnalysisConfig{})

	analyses, err := service.Analyze(context.Background(), "sugar, water", nil)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(analyses) != 2 {
		t.Fatalf("got %d analyses, want 2", len(analyses))
	}
	if analyses[0].Ingredient != "Sugar" || analyses[0].HealthRating != domain.RatingBad {
		t.Errorf("analyses[0] = %+v", analyses[0])
	}
	if model.callCount() != 1 {
		t.Errorf("model called %d times, want 1", model.callCount())
	}
}

func TestAnalyzeMissingInput(t *testing.T) {
	model := &stubModel{fn: func(int) (string, error) { return validModelReply, nil }}
	service, _ := newTestService(model, AnalysisConfig{})

	if _, err := service.Analyze(context.Background(), "   ", nil); !errors.Is(err, domain.ErrMissingInput) {
		t.Errorf("err = %v, want ErrMissingInput", err)
	}
	if model.callCount() != 0 {
		t.Errorf("model called %d times, want 0", model.callCount())
	}
}

func TestAnalyzeRetriesOverload(t *testing.T) {
	model := &stubModel{fn: func(call int) (string, error) {
		if call < 5 {
			return "", domain.ErrModelOverloaded
		}
		return validModelReply, nil
	}}
	service, delays := newTestService(model, AnalysisConfig{BackoffUnit: time.Millisecond})

	analyses, err := service.Analyze(context.Background(), "sugar", nil)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(analyses) != 2 {
		t.Fatalf("got %d analyses, want 2", len(analyses))
	}
	if model.callCount() != 5 {
		t.Errorf("model called %d times, want 5", model.callCount())
	}

	want := []time.Duration{3 * time.Millisecond, 6 * time.Millisecond, 9 * time.Millisecond, 12 * time.Millisecond}
	if len(*delays) != len(want) {
		t.Fatalf("recorded %d delays, want %d: %v", len(*delays), len(want), *delays)
	}
	for i, d := range *delays {
		if d != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, d, want[i])
		}
	}
}

func TestAnalyzeBackoffCap(t *testing.T) {
	service, _ := newTestService(&stubModel{}, AnalysisConfig{BackoffUnit: time.Millisecond})

	if d := service.backoffDelay(4); d != 12*time.Millisecond {
		t.Errorf("backoffDelay(4) = %v, want 12ms", d)
	}
	for _, attempt := range []int{5, 6, 10} {
		if d := service.backoffDelay(attempt); d != 15*time.Millisecond {
			t.Errorf("backoffDelay(%d) = %v, want capped 15ms", attempt, d)
		}
	}
}

func TestAnalyzeOverloadExhausted(t *testing.T) {
	model := &stubModel{fn: func(int) (string, error) { return "", domain.ErrModelOverloaded }}
	service, _ := newTestService(model, AnalysisConfig{MaxAttempts: 3, BackoffUnit: time.Millisecond})

	_, err := service.Analyze(context.Background(), "sugar", nil)
	if !errors.Is(err, domain.ErrModelOverloaded) {
		t.Errorf("err = %v, want ErrModelOverloaded", err)
	}
	if model.callCount() != 3 {
		t.Errorf("model called %d times, want 3", model.callCount())
	}
}

func TestAnalyzeTimeoutIsTerminal(t *testing.T) {
	model := &stubModel{fn: func(int) (string, error) {
		time.Sleep(200 * time.Millisecond)
		return validModelReply, nil
	}}
	service, _ := newTestService(model, AnalysisConfig{Timeout: 10 * time.Millisecond})

	_, err := service.Analyze(context.Background(), "sugar", nil)
	if !errors.Is(err, domain.ErrModelTimeout) {
		t.Errorf("err = %v, want ErrModelTimeout", err)
	}
	if model.callCount() != 1 {
		t.Errorf("model called %d times, want 1 (no retry on timeout)", model.callCount())
	}
}

func TestAnalyzeCredentialErrorPassesThrough(t *testing.T) {
	model := &stubModel{fn: func(int) (string, error) { return "", domain.ErrMissingCredential }}
	service, _ := newTestService(model, AnalysisConfig{})

	_, err := service.Analyze(context.Background(), "sugar", nil)
	if !errors.Is(err, domain.ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}
	if model.callCount() != 1 {
		t.Errorf("model called %d times, want 1", model.callCount())
	}
}

func TestAnalyzeOtherErrorIsTerminal(t *testing.T) {
	model := &stubModel{fn: func(int) (string, error) { return "", errors.New("connection reset") }}
	service, _ := newTestService(model, AnalysisConfig{})

	_, err := service.Analyze(context.Background(), "sugar", nil)
	if !errors.Is(err, domain.ErrModelFailure) {
		t.Errorf("err = %v, want ErrModelFailure", err)
	}
	if model.callCount() != 1 {
		t.Errorf("model called %d times, want 1", model.callCount())
	}
}

func TestAnalyzeMalformedResponses(t *testing.T) {
	replies := map[string]string{
		"no json array":    "I cannot analyze that.",
		"empty array":      "[]",
		"invalid json":     "[{not json}]",
		"bad rating":       `[{"ingredient": "Sugar", "healthRating": "Terrible", "healthScore": 30}]`,
		"score over range": `[{"ingredient": "Sugar", "healthRating": "Bad", "healthScore": 120}]`,
		"empty ingredient": `[{"ingredient": " ", "healthRating": "Bad", "healthScore": 30}]`,
	}

	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			model := &stubModel{fn: func(int) (string, error) { return reply, nil }}
			service, _ := newTestService(model, AnalysisConfig{})

			_, err := service.Analyze(context.Background(), "sugar", nil)
			if !errors.Is(err, domain.ErrMalformedResponse) {
				t.Errorf("err = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Run("pre-structured text passes through", func(t *testing.T) {
		text := "INGREDIENT ANALYSIS REQUEST\nPRODUCT INFORMATION:\nName: Candy\nINGREDIENT LIST\nimli, sugar"
		prompt := buildPrompt(text, &domain.ProductInfo{Name: "ignored"})

		if !strings.Contains(prompt, text) {
			t.Error("pre-structured text was not preserved verbatim")
		}
		if strings.Contains(prompt, "Name: ignored") {
			t.Error("product info was injected into a pre-structured prompt")
		}
	})

	t.Run("synthesized prompt carries product info", func(t *testing.T) {
		prompt := buildPrompt("imli, sugar", &domain.ProductInfo{
			Name:        "Tamarind Candy",
			ServingSize: "3.2g",
		})

		for _, fragment := range []string{"PRODUCT INFORMATION:", "Name: Tamarind Candy", "Serving size: 3.2g", "INGREDIENT LIST:", "imli, sugar"} {
			if !strings.Contains(prompt, fragment) {
				t.Errorf("prompt is missing %q", fragment)
			}
		}
	})

	t.Run("nil product info", func(t *testing.T) {
		prompt := buildPrompt("imli, sugar", nil)
		if strings.Contains(prompt, "PRODUCT INFORMATION:") {
			t.Error("prompt contains a product section without product info")
		}
		if !strings.Contains(prompt, "INGREDIENT LIST:") {
			t.Error("prompt is missing the ingredient list section")
		}
	})
}

func TestParseAnalysesStripsProse(t *testing.T) {
	raw := "```json\n" + `[{"ingredient": "Imli", "healthRating": "Good", "healthScore": 75,
		"processingLevel": "Minimally", "allergenRisk": "None"}]` + "\n```\nHope this helps!"

	analyses, err := parseAnalyses(raw)
	if err != nil {
		t.Fatalf("parseAnalyses returned error: %v", err)
	}
	if len(analyses) != 1 || analyses[0].Ingredient != "Imli" {
		t.Fatalf("analyses = %+v", analyses)
	}
	if analyses[0].ProcessingLevel != domain.ProcessingMinimally {
		t.Errorf("ProcessingLevel = %q, want Minimally", analyses[0].ProcessingLevel)
	}
	if analyses[0].AllergenRisk != domain.AllergenNone {
		t.Errorf("AllergenRisk = %q, want None", analyses[0].AllergenRisk)
	}
}
