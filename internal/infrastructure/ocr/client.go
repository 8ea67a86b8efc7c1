package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/labelscan/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config holds OCR service client configuration.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client calls a remote OCR service that turns an image into text plus
// a recognition confidence. One Recognize call is one attempt with one
// pre-processing variant; the scan pipeline issues several.
type Client struct {
	http        *resty.Client
	cfg         Config
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

type recognizeRequest struct {
	Image        string `json:"image"` // base64
	Language     string `json:"language,omitempty"`
	Variant      string `json:"variant,omitempty"`
	Segmentation string `json:"segmentation,omitempty"`
}

type recognizeResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// NewClient creates an OCR client. The limiter keeps a scan burst from
// flooding the OCR service when several variants go out at once.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{
		http:        httpClient,
		cfg:         cfg,
		rateLimiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:      logger,
	}
}

// Recognize runs one OCR attempt. Transient failures retry up to 3
// times with linear backoff before the attempt is reported failed.
func (c *Client) Recognize(ctx context.Context, image []byte, opts domain.RecognizeOptions) (*domain.RawLabelText, error) {
	body := recognizeRequest{
		Image:        base64.StdEncoding.EncodeToString(image),
		Language:     opts.Language,
		Variant:      opts.Variant,
		Segmentation: opts.SegMode,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		var out recognizeResponse
		req := c.http.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&out)
		if c.cfg.APIKey != "" {
			req.SetHeader("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := req.Post("/v1/recognize")
		if err != nil {
			lastErr = err
			c.logger.Warn("ocr request error",
				zap.Int("attempt", attempt),
				zap.String("variant", opts.Variant),
				zap.Error(err),
			)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		if resp.IsError() {
			lastErr = fmt.Errorf("ocr service status %d", resp.StatusCode())
			c.logger.Warn("ocr service error",
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode()),
			)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		return &domain.RawLabelText{
			Text:       out.Text,
			Confidence: out.Confidence,
			Variant:    opts.Variant,
			SegMode:    opts.SegMode,
		}, nil
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrOCRFailed, lastErr)
}
