package usecase

import (
	"reflect"
	"testing"

	"github.com/labelscan/backend/internal/domain"
)

func TestLocalAnalyzerTiers(t *testing.T) {
	analyzer := NewLocalAnalyzer()

	tests := []struct {
		name       string
		ingredient string
		wantRating domain.HealthRating
		wantScore  int
	}{
		{"harmful match", "High Fructose Corn Syrup", domain.RatingBad, 20},
		{"harmful additive", "Monosodium Glutamate", domain.RatingBad, 20},
		{"beneficial match", "Almond", domain.RatingGood, 80},
		{"beneficial spice", "Turmeric Extract", domain.RatingGood, 80},
		{"whole food category", "Oat bran", domain.RatingGood, 70},
		{"staple category", "Rice flour", domain.RatingNeutral, 50},
		{"additive category", "Cane Sugar", domain.RatingBad, 30},
		{"unknown ingredient", "Imli", domain.RatingNeutral, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.analyzeOne(tt.ingredient)
			if got.HealthRating != tt.wantRating {
				t.Errorf("analyzeOne(%q) rating = %q, want %q", tt.ingredient, got.HealthRating, tt.wantRating)
			}
			if got.HealthScore != tt.wantScore {
				t.Errorf("analyzeOne(%q) score = %d, want %d", tt.ingredient, got.HealthScore, tt.wantScore)
			}
			if got.Ingredient != tt.ingredient {
				t.Errorf("analyzeOne(%q) echoed ingredient %q", tt.ingredient, got.Ingredient)
			}
			if got.Explanation == "" {
				t.Errorf("analyzeOne(%q) has no explanation", tt.ingredient)
			}
		})
	}
}

func TestLocalAnalyzerPrecedence(t *testing.T) {
	analyzer := NewLocalAnalyzer()

	t.Run("harmful beats category keywords", func(t *testing.T) {
		// "artificial color" is harmful even though "color" alone is a
		// category-table keyword.
		got := analyzer.analyzeOne("Artificial Color Red 40")
		if got.HealthRating != domain.RatingBad || got.HealthScore != 20 {
			t.Errorf("got rating %q score %d, want Bad 20", got.HealthRating, got.HealthScore)
		}
	})

	t.Run("beneficial beats category keywords", func(t *testing.T) {
		// "almond" wins before "flour" reaches the staple row.
		got := analyzer.analyzeOne("Almond Flour")
		if got.HealthRating != domain.RatingGood || got.HealthScore != 80 {
			t.Errorf("got rating %q score %d, want Good 80", got.HealthRating, got.HealthScore)
		}
	})

	t.Run("substring match reaches compound names", func(t *testing.T) {
		// "coconut oil" hits the whole-food row via "nut" before the
		// staple row sees "oil". Table order is the contract.
		got := analyzer.analyzeOne("Coconut Oil")
		if got.HealthRating != domain.RatingGood || got.HealthScore != 70 {
			t.Errorf("got rating %q score %d, want Good 70", got.HealthRating, got.HealthScore)
		}
	})
}

func TestLocalAnalyzerDeterministic(t *testing.T) {
	analyzer := NewLocalAnalyzer()
	names := []string{"Sugar", "Almond", "Imli", "Artificial Color", "Rice"}

	first := analyzer.Analyze(names)
	if len(first) != len(names) {
		t.Fatalf("Analyze returned %d analyses, want %d", len(first), len(names))
	}
	for i := 0; i < 5; i++ {
		if got := analyzer.Analyze(names); !reflect.DeepEqual(got, first) {
			t.Fatal("Analyze is not deterministic for identical input")
		}
	}
}
