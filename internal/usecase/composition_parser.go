package usecase

import (
	"regexp"
	"strings"

	"github.com/labelscan/backend/internal/domain"
)

var (
	compositionMarker = regexp.MustCompile(`(?i)composition\s*:`)
	powdersMarker     = regexp.MustCompile(`(?i)powders\s+of\s*:`)
	activeMarker      = regexp.MustCompile(`(?i)active\s+ingredients\s*:`)
	excipientsMarker  = regexp.MustCompile(`(?i)excipients\s*:`)

	// A blank line or a new capitalized "Section:" heading ends the block.
	compositionBreak = regexp.MustCompile(`\n\s*\n|\n\s*[A-Z][A-Za-z ]*:`)

	// A sentence period followed by a capitalized word ends a sublist.
	// Periods inside decimal quantities ("32.43mg") do not match.
	periodCapital = regexp.MustCompile(`\.\s+[A-Z]`)

	trailingQuantity = regexp.MustCompile(`(?i)^(.*?)\s*([0-9]+(?:\.[0-9]+)?\s*(?:mg|mcg|g|%))\.?$`)
	nameQuantityPair = regexp.MustCompile(`(?i)([a-z][a-z' -]*?)\s+([0-9]+(?:\.[0-9]+)?\s*(?:mg|mcg|g|%))`)
)

// ingredientSet accumulates ingredients with case-insensitive
// deduplication by name, preserving insertion order.
type ingredientSet struct {
	items []domain.ExtractedIngredient
	seen  map[string]bool
}

func newIngredientSet() *ingredientSet {
	return &ingredientSet{seen: make(map[string]bool)}
}

func (s *ingredientSet) has(name string) bool {
	return s.seen[strings.ToLower(strings.TrimSpace(name))]
}

func (s *ingredientSet) add(ing domain.ExtractedIngredient) bool {
	ing.Name = strings.Trim(ing.Name, " .,;-")
	key := strings.ToLower(ing.Name)
	if key == "" || s.seen[key] {
		return false
	}
	s.seen[key] = true
	s.items = append(s.items, ing)
	return true
}

// parseComposition handles composition/table labels such as ayurvedic
// candy or tablet packaging ("Composition: Each (3.2g) candy is
// prepared from: Powders of: ..."). Four independent sub-steps feed one
// deduplicated list: the powders sublist, a whole-block name+quantity
// scan, the active-ingredients section, and the excipients section.
func parseComposition(text string) []domain.ExtractedIngredient {
	block := compositionBlock(text)
	set := newIngredientSet()

	if loc := powdersMarker.FindStringIndex(block); loc != nil {
		sublist := block[loc[1]:]
		sublist = sublist[:sublistEnd(sublist)]
		for _, segment := range strings.Split(sublist, ",") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			ing := domain.ExtractedIngredient{Name: segment, Type: "powder"}
			if m := trailingQuantity.FindStringSubmatch(segment); m != nil && strings.TrimSpace(m[1]) != "" {
				ing.Name = m[1]
				ing.Quantity = strings.TrimSpace(m[2])
			}
			set.add(ing)
		}
	}

	// Independent scan of the whole block for "<name> <quantity>" pairs,
	// skipping anything the powders sublist already captured.
	for _, m := range nameQuantityPair.FindAllStringSubmatch(block, -1) {
		name := strings.Trim(m[1], " .,;-")
		if name == "" || set.has(name) {
			continue
		}
		set.add(domain.ExtractedIngredient{Name: name, Quantity: strings.TrimSpace(m[2])})
	}

	if loc := activeMarker.FindStringIndex(block); loc != nil {
		section := block[loc[1]:]
		section = section[:sublistEnd(section)]
		for _, segment := range strings.Split(section, ",") {
			if name := strings.Trim(segment, " .,;-"); name != "" && !set.has(name) {
				set.add(domain.ExtractedIngredient{Name: name, Type: "active ingredient"})
			}
		}
	}

	// Excipients are not enumerated on these labels ("q.s." - quantum
	// satis), so the raw section text rides along as the quantity.
	if loc := excipientsMarker.FindStringIndex(block); loc != nil {
		raw := block[loc[1]:]
		if brk := compositionBreak.FindStringIndex(raw); brk != nil {
			raw = raw[:brk[0]]
		}
		if raw = strings.TrimSpace(raw); raw != "" {
			set.add(domain.ExtractedIngredient{Name: "Excipients", Quantity: raw, Type: "excipient"})
		}
	}

	return set.items
}

// compositionBlock narrows text to the composition section: from the
// "composition:" marker up to a blank line, a new capitalized section,
// or the end of the text. Labels matched by the "each ... is prepared
// from:" pattern carry no marker, so the whole text is the block.
func compositionBlock(text string) string {
	block := text
	if loc := compositionMarker.FindStringIndex(text); loc != nil {
		block = text[loc[1]:]
	}
	if brk := compositionBreak.FindStringIndex(block); brk != nil {
		block = block[:brk[0]]
	}
	return block
}

// sublistEnd finds where a comma-separated sublist ends: a sentence
// period, the excipients or active-ingredients marker, or end of text.
func sublistEnd(s string) int {
	end := len(s)
	if loc := periodCapital.FindStringIndex(s); loc != nil && loc[0] < end {
		end = loc[0]
	}
	if loc := excipientsMarker.FindStringIndex(s); loc != nil && loc[0] < end {
		end = loc[0]
	}
	if loc := activeMarker.FindStringIndex(s); loc != nil && loc[0] < end {
		end = loc[0]
	}
	return end
}
