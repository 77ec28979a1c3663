package classify

import (
	"context"
	"testing"

	"github.com/civix/backend/internal/models"
)

func TestKeywordClassifySingleCategory(t *testing.T) {
	cls, err := KeywordClassifier{}.Classify(context.Background(), "Garbage pile", "trash and sewage dumped near the market")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Category != CategorySanitation {
		t.Fatalf("expected sanitation, got %s", cls.Category)
	}
	if cls.Confidence != KeywordConfidence {
		t.Fatalf("expected confidence %v, got %v", KeywordConfidence, cls.Confidence)
	}
	if cls.Method != models.MethodKeyword {
		t.Fatalf("expected keyword_fallback method, got %s", cls.Method)
	}
}

func TestKeywordClassifyNoMatch(t *testing.T) {
	cls, err := KeywordClassifier{}.Classify(context.Background(), "Something odd", "it is hard to describe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Category != CategoryUnknown {
		t.Fatalf("expected unknown, got %s", cls.Category)
	}
	if cls.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", cls.Confidence)
	}
}

func TestKeywordClassifyTieBreaksByPriorityOrder(t *testing.T) {
	// "street" hits roads and "light" hits electricity, one keyword
	// each; electricity comes first in the priority order.
	cls, err := KeywordClassifier{}.Classify(context.Background(), "Street light not working", "light out for 3 days")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Category != CategoryElectricity {
		t.Fatalf("expected electricity by priority order, got %s", cls.Category)
	}
}

func TestKeywordClassifyHigherScoreWins(t *testing.T) {
	cls, err := KeywordClassifier{}.Classify(context.Background(), "Road damage", "huge pothole in the road, cracked pavement")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Category != CategoryRoads {
		t.Fatalf("expected roads, got %s", cls.Category)
	}
}

func TestIsConcrete(t *testing.T) {
	for _, cat := range Categories() {
		if !IsConcrete(cat) {
			t.Fatalf("expected %s to be concrete", cat)
		}
	}
	for _, v := range []string{"", "other", "unknown", "Other", "plumbing"} {
		if IsConcrete(v) {
			t.Fatalf("expected %q not to be concrete", v)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(" Water "); got != CategoryWater {
		t.Fatalf("expected water, got %s", got)
	}
	if got := Normalize("nonsense"); got != CategoryOther {
		t.Fatalf("expected other, got %s", got)
	}
	if got := Normalize(""); got != CategoryOther {
		t.Fatalf("expected other for empty, got %s", got)
	}
}

func TestMatchesSpecialization(t *testing.T) {
	cases := []struct {
		specialization string
		category       string
		want           bool
	}{
		{"Electrician - power lines", CategoryElectricity, true},
		{"Water supply and pipelines", CategoryWater, true},
		{"Waste management", CategorySanitation, true},
		{"Road maintenance", CategoryRoads, true},
		{"Electrician", CategoryWater, false},
		{"", CategoryRoads, false},
	}
	for _, tc := range cases {
		if got := MatchesSpecialization(tc.specialization, tc.category); got != tc.want {
			t.Fatalf("MatchesSpecialization(%q, %q) = %v, want %v", tc.specialization, tc.category, got, tc.want)
		}
	}
}
