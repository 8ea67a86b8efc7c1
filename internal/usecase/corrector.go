package usecase

import (
	"regexp"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	collapseSpacesRegex = regexp.MustCompile(`\s+`)
	commaDecimalRegex   = regexp.MustCompile(`(\d)\s*,\s*(\d)`)
	spacedDecimalRegex  = regexp.MustCompile(`(\d)\s+\.\s*(\d)|(\d)\s*\.\s+(\d)`)
	ingredientsSection  = regexp.MustCompile(`(?s)ingredients?\s*:\s*(.+)`)
	pureDigitPunctRegex = regexp.MustCompile(`^[\d[:punct:]]+$`)
	trailingPunctRegex  = regexp.MustCompile(`[.,;:!?)\]]+$`)
)

// ocrRepair is one ordered regex substitution repairing a known OCR
// confusion. Rules are idempotent and non-conflicting; later rules may
// further normalize already-repaired text.
type ocrRepair struct {
	pattern *regexp.Regexp
	repl    string
}

var ocrRepairs = []ocrRepair{
	{regexp.MustCompile(`\b[i1l]nqredients\b`), "ingredients"},
	{regexp.MustCompile(`\b[1l]ngredients\b`), "ingredients"},
	{regexp.MustCompile(`\bingred[i1l]ents\b`), "ingredients"},
	{regexp.MustCompile(`\bsuqar\b`), "sugar"},
	{regexp.MustCompile(`\bsuger\b`), "sugar"},
	{regexp.MustCompile(`\bqlucose\b`), "glucose"},
	{regexp.MustCompile(`\bhiqh\b`), "high"},
	{regexp.MustCompile(`\bvvater\b`), "water"},
	{regexp.MustCompile(`\bwat3r\b`), "water"},
	{regexp.MustCompile(`\bm[i1]lk\b`), "milk"},
	{regexp.MustCompile(`\bsod[i1]um\b`), "sodium"},
	{regexp.MustCompile(`\bprote[i1]n\b`), "protein"},
	{regexp.MustCompile(`\bv[i1]tam[i1]n\b`), "vitamin"},
	{regexp.MustCompile(`\bc0rn\b`), "corn"},
	{regexp.MustCompile(`\b0il\b`), "oil"},
	{regexp.MustCompile(`\bfl0ur\b`), "flour"},
	{regexp.MustCompile(`\bs0y\b`), "soy"},
	{regexp.MustCompile(`\bwh3at\b`), "wheat"},
}

// correctionDictionary is the fixed food-ingredient vocabulary used for
// edit-distance correction. A slice, not a map: ties between candidates
// at equal distance resolve to the first entry in iteration order, and
// that order is part of the contract.
var correctionDictionary = []string{
	"ingredients", "sugar", "salt", "water", "milk", "wheat", "flour",
	"corn", "syrup", "oil", "soy", "rice", "yeast", "cocoa", "butter",
	"cream", "honey", "vanilla", "glucose", "fructose", "sucrose",
	"lactose", "maltodextrin", "lecithin", "gelatin", "pectin", "citric",
	"ascorbic", "sodium", "potassium", "calcium", "magnesium", "protein",
	"vitamin", "starch", "dextrose", "caramel", "barley", "oats",
	"almond", "peanut", "hazelnut", "coconut", "palm", "sunflower",
	"canola", "olive", "garlic", "onion", "tomato", "paprika", "pepper",
	"turmeric", "ginger", "cinnamon", "preservative", "emulsifier",
	"stabilizer", "sweetener", "flavoring", "coloring", "nutrition",
	"carbohydrate", "fiber", "niacin", "riboflavin", "thiamine",
	"folate", "zinc", "iron",
}

// LexicalCorrector cleans raw OCR output before parsing: ordered regex
// repairs for known recognition confusions, whitespace and decimal
// normalization, and dictionary-based edit-distance correction.
type LexicalCorrector struct {
	dictionary []string
}

// NewLexicalCorrector creates a corrector using the built-in food dictionary.
func NewLexicalCorrector() *LexicalCorrector {
	return &LexicalCorrector{dictionary: correctionDictionary}
}

// Correct returns the cleaned form of raw OCR text.
func (c *LexicalCorrector) Correct(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := strings.ToLower(raw)

	for _, rule := range ocrRepairs {
		text = rule.pattern.ReplaceAllString(text, rule.repl)
	}

	// Comma used as decimal separator between digits becomes a dot,
	// and OCR-split decimal points are rejoined.
	text = commaDecimalRegex.ReplaceAllString(text, "$1.$2")
	text = spacedDecimalRegex.ReplaceAllString(text, "$1$3.$2$4")

	text = collapseSpacesRegex.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	// Narrow to the ingredients section when the marker is present so
	// dictionary correction works on label content, not packaging noise.
	if m := ingredientsSection.FindStringSubmatch(text); m != nil {
		text = "ingredients: " + strings.TrimSpace(m[1])
	}

	return c.correctTokens(text)
}

// correctTokens applies dictionary correction to each whitespace token.
// A token is replaced only when a dictionary entry is strictly closer
// than every other entry and within min(3, len/2) edits. Trailing
// punctuation on the original token is preserved on the replacement.
func (c *LexicalCorrector) correctTokens(text string) string {
	tokens := strings.Fields(text)
	for i, token := range tokens {
		tokens[i] = c.correctToken(token)
	}
	return strings.Join(tokens, " ")
}

func (c *LexicalCorrector) correctToken(token string) string {
	trailing := trailingPunctRegex.FindString(token)
	core := strings.TrimSuffix(token, trailing)

	if len(core) <= 2 || pureDigitPunctRegex.MatchString(core) {
		return token
	}

	bound := len(core) / 2
	if bound > 3 {
		bound = 3
	}

	best := ""
	bestDistance := bound + 1
	for _, entry := range c.dictionary {
		if d := levenshteinDistance(core, entry); d < bestDistance {
			best = entry
			bestDistance = d
		}
	}

	if best == "" {
		return token
	}
	return best + trailing
}

// levenshteinDistance calculates the edit distance between two strings
// using the classic dynamic-programming recurrence with unit costs.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Two rows instead of the full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
