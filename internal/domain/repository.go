package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// GenerateOptions are the knobs passed through to the generative model.
type GenerateOptions struct {
	Temperature     float64
	MaxOutputTokens int
}

// ModelClient defines the interface for the generative-model collaborator.
// Implementations classify upstream failures into the sentinel errors in
// errors.go (ErrModelOverloaded, ErrMissingCredential, ErrModelFailure) so
// callers can branch with errors.Is instead of matching message text.
type ModelClient interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// RecognizeOptions select the pre-processing variant and segmentation
// mode for one OCR attempt.
type RecognizeOptions struct {
	Language string
	Variant  string
	SegMode  string
}

// OCRClient defines the interface for the OCR collaborator. A failed
// attempt is reported as an error and treated as absent by the scan
// pipeline, not as fatal.
type OCRClient interface {
	Recognize(ctx context.Context, image []byte, opts RecognizeOptions) (*RawLabelText, error)
}
