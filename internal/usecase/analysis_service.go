package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/labelscan/backend/internal/domain"
	"go.uber.org/zap"
)

// jsonArrayPattern grabs the first [...] substring of the model's
// free-text reply; models habitually wrap the array in prose or
// markdown fences.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// preStructuredMarkers identify request text that is already a fully
// formed analysis prompt; such text is wrapped, not rebuilt.
var preStructuredMarkers = []string{
	"INGREDIENT ANALYSIS REQUEST",
	"PRODUCT INFORMATION:",
	"INGREDIENT LIST",
}

// AnalysisConfig tunes the Health Analysis Engine. Zero values fall
// back to production defaults.
type AnalysisConfig struct {
	Timeout         time.Duration // per-call ceiling; losing the race is terminal
	MaxAttempts     int           // overload retries, total attempts
	Temperature     float64
	MaxOutputTokens int
	BackoffUnit     time.Duration // scales backoff; tests shrink it
}

func (c *AnalysisConfig) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.3
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = 2048
	}
	if c.BackoffUnit <= 0 {
		c.BackoffUnit = time.Second
	}
}

// AnalysisService is the Health Analysis Engine: it turns ingredient
// text into per-ingredient health judgments by prompting a generative
// model, with a bounded retry/backoff protocol around a flaky upstream.
// Each call is independent; the service holds no mutable state.
type AnalysisService struct {
	model  domain.ModelClient
	cfg    AnalysisConfig
	logger *zap.Logger

	// sleep and jitter are swappable for tests.
	sleep  func(time.Duration)
	jitter func() time.Duration
}

// NewAnalysisService creates an analysis service around a model client.
func NewAnalysisService(model domain.ModelClient, cfg AnalysisConfig, logger *zap.Logger) *AnalysisService {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AnalysisService{
		model:  model,
		cfg:    cfg,
		logger: logger,
		sleep:  time.Sleep,
	}
	s.jitter = func() time.Duration {
		return time.Duration(rand.Float64() * 2 * float64(s.cfg.BackoffUnit))
	}
	return s
}

// Analyze produces per-ingredient analyses for the given label text.
// Retry protocol: overload errors retry up to MaxAttempts with
// exponential backoff min(attempt*3, 15) units plus 0-2 units of
// jitter; timeouts and every other error class are terminal.
func (s *AnalysisService) Analyze(ctx context.Context, text string, info *domain.ProductInfo) ([]domain.IngredientAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrMissingInput
	}

	prompt := buildPrompt(text, info)

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		raw, err := s.generateWithTimeout(ctx, prompt)
		if err == nil {
			return parseAnalyses(raw)
		}

		switch {
		case errors.Is(err, domain.ErrModelTimeout):
			s.logger.Warn("model call timed out", zap.Int("attempt", attempt))
			return nil, domain.ErrModelTimeout
		case errors.Is(err, domain.ErrModelOverloaded):
			if attempt == s.cfg.MaxAttempts {
				s.logger.Warn("model overloaded, attempts exhausted", zap.Int("attempts", attempt))
				return nil, domain.ErrModelOverloaded
			}
			delay := s.backoffDelay(attempt)
			s.logger.Info("model overloaded, backing off",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			s.sleep(delay)
		case errors.Is(err, domain.ErrMissingCredential):
			return nil, domain.ErrMissingCredential
		default:
			s.logger.Error("model call failed", zap.Int("attempt", attempt), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", domain.ErrModelFailure, err)
		}
	}

	return nil, domain.ErrModelOverloaded
}

// backoffDelay grows linearly per attempt, capped, plus random jitter.
func (s *AnalysisService) backoffDelay(attempt int) time.Duration {
	units := attempt * 3
	if units > 15 {
		units = 15
	}
	return time.Duration(units)*s.cfg.BackoffUnit + s.jitter()
}

// generateWithTimeout races the model call against a timer. Losing the
// race abandons the in-flight call (the buffered channel lets the
// goroutine finish without leaking) and surfaces a terminal timeout.
func (s *AnalysisService) generateWithTimeout(ctx context.Context, prompt string) (string, error) {
	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		text, err := s.model.Generate(ctx, prompt, domain.GenerateOptions{
			Temperature:     s.cfg.Temperature,
			MaxOutputTokens: s.cfg.MaxOutputTokens,
		})
		done <- outcome{text, err}
	}()

	timer := time.NewTimer(s.cfg.Timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.text, res.err
	case <-timer.C:
		return "", domain.ErrModelTimeout
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", domain.ErrModelFailure, ctx.Err())
	}
}

// buildPrompt wraps pre-structured request text with an instruction
// header, or synthesizes a prompt from scratch with whatever product
// context was supplied.
func buildPrompt(text string, info *domain.ProductInfo) string {
	var b strings.Builder

	b.WriteString("You are a nutrition analyst. Respond with ONLY a JSON array, no prose. ")
	b.WriteString(`Each element: {"ingredient": string, "healthRating": "Good"|"Neutral"|"Bad", `)
	b.WriteString(`"explanation": string, "healthScore": 0-100, "benefits": [string], `)
	b.WriteString(`"riskFactors": [string], "processingLevel": "Minimally"|"Moderately"|"Highly"|"Ultra", `)
	b.WriteString(`"allergenRisk": "High"|"Medium"|"Low"|"None", "alternatives": [string]}.`)
	b.WriteString("\n\n")

	if isPreStructured(text) {
		// Already a structured request; preserve it verbatim.
		b.WriteString(text)
		return b.String()
	}

	if info != nil {
		b.WriteString("PRODUCT INFORMATION:\n")
		if info.Name != "" {
			b.WriteString("Name: " + info.Name + "\n")
		}
		if info.ServingSize != "" {
			b.WriteString("Serving size: " + info.ServingSize + "\n")
		}
		if info.Format != "" {
			b.WriteString("Label format: " + info.Format + "\n")
		}
		for key, value := range info.AdditionalInfo {
			b.WriteString(key + ": " + value + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("INGREDIENT LIST:\n")
	b.WriteString(text)
	return b.String()
}

func isPreStructured(text string) bool {
	upper := strings.ToUpper(text)
	for _, marker := range preStructuredMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// parseAnalyses treats the model's reply as untrusted input: extract
// the first JSON-array substring, parse it, then validate every element
// field by field. Partially shaped objects fail the whole call.
func parseAnalyses(raw string) ([]domain.IngredientAnalysis, error) {
	match := jsonArrayPattern.FindString(raw)
	if match == "" {
		return nil, domain.ErrMalformedResponse
	}

	var analyses []domain.IngredientAnalysis
	if err := json.Unmarshal([]byte(match), &analyses); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if len(analyses) == 0 {
		return nil, domain.ErrMalformedResponse
	}

	for i, a := range analyses {
		if err := validateAnalysis(&a); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", domain.ErrMalformedResponse, i, err)
		}
		analyses[i] = a
	}
	return analyses, nil
}

func validateAnalysis(a *domain.IngredientAnalysis) error {
	a.Ingredient = strings.TrimSpace(a.Ingredient)
	if a.Ingredient == "" {
		return errors.New("empty ingredient name")
	}
	switch a.HealthRating {
	case domain.RatingGood, domain.RatingNeutral, domain.RatingBad:
	default:
		return fmt.Errorf("invalid healthRating %q", a.HealthRating)
	}
	if a.HealthScore < 0 || a.HealthScore > 100 {
		return fmt.Errorf("healthScore %d out of range", a.HealthScore)
	}
	switch a.ProcessingLevel {
	case "", domain.ProcessingMinimally, domain.ProcessingModerately, domain.ProcessingHighly, domain.ProcessingUltra:
	default:
		return fmt.Errorf("invalid processingLevel %q", a.ProcessingLevel)
	}
	switch a.AllergenRisk {
	case "", domain.AllergenHigh, domain.AllergenMedium, domain.AllergenLow, domain.AllergenNone:
	default:
		return fmt.Errorf("invalid allergenRisk %q", a.AllergenRisk)
	}
	return nil
}
