package usecase

import (
	"testing"

	"github.com/labelscan/backend/internal/domain"
)

func TestParseComposition(t *testing.T) {
	t.Run("candy label with powders and excipients", func(t *testing.T) {
		text := "Composition: Each (3.2g) candy is prepared from: Powders of: Imli 32.43mg, Saindhav Lavana 18.24mg. Excipients: q.s."

		got := parseComposition(text)
		want := []domain.ExtractedIngredient{
			{Name: "Imli", Quantity: "32.43mg", Type: "powder"},
			{Name: "Saindhav Lavana", Quantity: "18.24mg", Type: "powder"},
			{Name: "Excipients", Quantity: "q.s.", Type: "excipient"},
		}

		if len(got) != len(want) {
			t.Fatalf("parseComposition returned %d ingredients, want %d: %+v", len(got), len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("ingredient[%d] = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("tablet label with active ingredients", func(t *testing.T) {
		text := "Each tablet is prepared from: Active Ingredients: Ashwagandha, Brahmi. Excipients: q.s."

		got := parseComposition(text)
		want := []domain.ExtractedIngredient{
			{Name: "Ashwagandha", Type: "active ingredient"},
			{Name: "Brahmi", Type: "active ingredient"},
			{Name: "Excipients", Quantity: "q.s.", Type: "excipient"},
		}

		if len(got) != len(want) {
			t.Fatalf("parseComposition returned %d ingredients, want %d: %+v", len(got), len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("ingredient[%d] = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("block ends at blank line", func(t *testing.T) {
		text := "Composition: Imli 32.43mg\n\nStorage: keep in a cool dry place"

		got := parseComposition(text)
		if len(got) != 1 {
			t.Fatalf("parseComposition returned %d ingredients, want 1: %+v", len(got), got)
		}
		if got[0].Name != "Imli" || got[0].Quantity != "32.43mg" {
			t.Errorf("ingredient = %+v, want Imli 32.43mg", got[0])
		}
	})

	t.Run("name quantity pairs deduplicate against powders", func(t *testing.T) {
		text := "Composition: Powders of: Imli 32.43mg, Amla 10mg"

		got := parseComposition(text)
		if len(got) != 2 {
			t.Fatalf("parseComposition returned %d ingredients, want 2: %+v", len(got), got)
		}
		for _, ing := range got {
			if ing.Type != "powder" {
				t.Errorf("ingredient %q has type %q, want powder", ing.Name, ing.Type)
			}
		}
	})

	t.Run("no composition content", func(t *testing.T) {
		if got := parseComposition("Composition:"); len(got) != 0 {
			t.Errorf("parseComposition returned %+v, want empty", got)
		}
	})
}

func TestIngredientSet(t *testing.T) {
	set := newIngredientSet()

	if !set.add(domain.ExtractedIngredient{Name: " Sugar. "}) {
		t.Error("first add returned false")
	}
	if set.add(domain.ExtractedIngredient{Name: "sugar"}) {
		t.Error("duplicate add returned true")
	}
	if set.add(domain.ExtractedIngredient{Name: "  "}) {
		t.Error("blank add returned true")
	}
	if !set.has("SUGAR") {
		t.Error("has is not case-insensitive")
	}
	if len(set.items) != 1 {
		t.Fatalf("set holds %d items, want 1", len(set.items))
	}
	if set.items[0].Name != "Sugar" {
		t.Errorf("stored name = %q, want trimmed %q", set.items[0].Name, "Sugar")
	}
}
