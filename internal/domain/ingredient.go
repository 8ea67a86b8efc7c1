package domain

// LabelFormat classifies the layout of a food label's text.
// Detection order is part of the contract: composition wins over an
// ingredients list, which wins over a nutrition-facts block.
type LabelFormat string

const (
	FormatComposition     LabelFormat = "composition"
	FormatIngredientsList LabelFormat = "ingredients-list"
	FormatNutritionFacts  LabelFormat = "nutrition-facts"
	FormatUnknown         LabelFormat = "unknown"

	// FormatFallback tags results produced by the outer last-resort
	// tokenizer when the selected parser yielded nothing.
	FormatFallback LabelFormat = "fallback"
)

// RawLabelText is the output of a single OCR attempt on a label image.
type RawLabelText struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // higher is better; scale is the OCR service's
	Variant    string  `json:"variant"`    // e.g. "original", "contrast-enhanced"
	SegMode    string  `json:"segMode,omitempty"`
}

// ExtractedIngredient is one entry in a normalized ingredient list.
// Name is always non-empty after normalization.
type ExtractedIngredient struct {
	Name           string `json:"name"`
	ScientificName string `json:"scientificName,omitempty"`
	Quantity       string `json:"quantity,omitempty"`   // unit-tagged, e.g. "120 mg"
	Percentage     string `json:"percentage,omitempty"` // e.g. "5%"
	Type           string `json:"type,omitempty"`       // "active ingredient", "excipient", "powder", ...
}

// ExtractionResult aggregates everything extracted from one label text.
// Ingredients preserve source-text order and are never empty for
// non-empty input.
type ExtractionResult struct {
	ProductName    string                `json:"productName,omitempty"`
	ServingSize    string                `json:"servingSize,omitempty"`
	Ingredients    []ExtractedIngredient `json:"ingredients"`
	AdditionalInfo map[string]string     `json:"additionalInfo,omitempty"`
	Format         LabelFormat           `json:"format"`
}

// ScanResult is the outcome of a full image scan: the winning OCR
// attempt plus the extraction run on its corrected text.
type ScanResult struct {
	ScanID     string            `json:"scanId"`
	RawText    string            `json:"rawText"`
	Confidence float64           `json:"confidence"`
	Variant    string            `json:"variant"`
	Extraction *ExtractionResult `json:"extraction"`
}
