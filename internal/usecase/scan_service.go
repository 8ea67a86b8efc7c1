package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/labelscan/backend/internal/domain"
	"go.uber.org/zap"
)

// scanVariants are the OCR pre-processing/segmentation combinations
// attempted for every image. Attempts are mutually independent and
// order-insensitive; best-of-N selection is commutative.
var scanVariants = []domain.RecognizeOptions{
	{Variant: "original", SegMode: "block"},
	{Variant: "contrast-enhanced", SegMode: "block"},
	{Variant: "binarized", SegMode: "sparse"},
}

// ScanConfig tunes the scan pipeline.
type ScanConfig struct {
	Language string
	// MinTextLength is the minimum usable OCR text length; shorter
	// attempts only win when nothing longer succeeded.
	MinTextLength int
}

func (c *ScanConfig) applyDefaults() {
	if c.Language == "" {
		c.Language = "eng"
	}
	if c.MinTextLength <= 0 {
		c.MinTextLength = 20
	}
}

// ScanService runs the image-to-ingredients pipeline: a batch of OCR
// attempts, best-attempt selection, lexical correction, extraction.
type ScanService struct {
	ocr       domain.OCRClient
	corrector *LexicalCorrector
	extractor *ExtractionService
	cfg       ScanConfig
	logger    *zap.Logger
}

// NewScanService creates a scan service.
func NewScanService(ocr domain.OCRClient, corrector *LexicalCorrector, extractor *ExtractionService, cfg ScanConfig, logger *zap.Logger) *ScanService {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanService{
		ocr:       ocr,
		corrector: corrector,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
	}
}

// Scan OCRs the image once per variant as an independent batch, picks
// the best attempt, and extracts ingredients from its corrected text.
// Individual OCR failures are skipped; only all attempts failing is an
// error.
func (s *ScanService) Scan(ctx context.Context, image []byte) (*domain.ScanResult, error) {
	attempts := make([]*domain.RawLabelText, len(scanVariants))

	var wg sync.WaitGroup
	for i, variant := range scanVariants {
		wg.Add(1)
		go func(i int, opts domain.RecognizeOptions) {
			defer wg.Done()
			opts.Language = s.cfg.Language
			attempt, err := s.ocr.Recognize(ctx, image, opts)
			if err != nil {
				s.logger.Warn("ocr attempt failed",
					zap.String("variant", opts.Variant),
					zap.Error(err),
				)
				return
			}
			attempts[i] = attempt
		}(i, variant)
	}
	wg.Wait()

	best := s.selectBest(attempts)
	if best == nil {
		return nil, domain.ErrOCRFailed
	}

	corrected := s.corrector.Correct(best.Text)
	extraction := s.extractor.Extract(corrected)

	s.logger.Info("scan complete",
		zap.String("variant", best.Variant),
		zap.Float64("confidence", best.Confidence),
		zap.Int("ingredients", len(extraction.Ingredients)),
	)

	return &domain.ScanResult{
		ScanID:     uuid.NewString(),
		RawText:    best.Text,
		Confidence: best.Confidence,
		Variant:    best.Variant,
		Extraction: extraction,
	}, nil
}

// selectBest prefers the highest-confidence attempt with usable text
// length, falling back to the best under-threshold attempt.
func (s *ScanService) selectBest(attempts []*domain.RawLabelText) *domain.RawLabelText {
	var best, fallback *domain.RawLabelText
	for _, attempt := range attempts {
		if attempt == nil || attempt.Text == "" {
			continue
		}
		if len(attempt.Text) >= s.cfg.MinTextLength {
			if best == nil || attempt.Confidence > best.Confidence {
				best = attempt
			}
		} else if fallback == nil || attempt.Confidence > fallback.Confidence {
			fallback = attempt
		}
	}
	if best != nil {
		return best
	}
	return fallback
}
