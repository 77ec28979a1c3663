package engine

import (
	"testing"

	"github.com/civix/backend/internal/models"
)

func TestScoreFormula(t *testing.T) {
	// rating 4.5 -> 90, resolved 30 capped at 50, 1 open ticket -> -10.
	got := Score(models.Technician{Rating: 4.5, Resolved: 30, OpenTickets: 1})
	if got != 130 {
		t.Fatalf("expected score 130, got %v", got)
	}
}

func TestScoreResolvedBonusCaps(t *testing.T) {
	a := Score(models.Technician{Rating: 3, Resolved: 25})
	b := Score(models.Technician{Rating: 3, Resolved: 500})
	if a != b {
		t.Fatalf("expected resolved bonus to cap at 50: %v vs %v", a, b)
	}
}

func TestScoreMonotonicInRating(t *testing.T) {
	base := models.Technician{Resolved: 10, OpenTickets: 2}
	prev := -1e9
	for rating := 0.0; rating <= 5.0; rating += 0.5 {
		base.Rating = rating
		s := Score(base)
		if s < prev {
			t.Fatalf("score decreased as rating grew: %v after %v", s, prev)
		}
		prev = s
	}
}

func TestScoreMonotonicInResolved(t *testing.T) {
	base := models.Technician{Rating: 4, OpenTickets: 2}
	prev := -1e9
	for resolved := 0; resolved <= 100; resolved += 5 {
		base.Resolved = resolved
		s := Score(base)
		if s < prev {
			t.Fatalf("score decreased as resolved grew: %v after %v", s, prev)
		}
		prev = s
	}
}

func TestScoreMonotonicInOpenTickets(t *testing.T) {
	base := models.Technician{Rating: 4, Resolved: 20}
	prev := 1e9
	for open := 0; open <= 15; open++ {
		base.OpenTickets = open
		s := Score(base)
		if s > prev {
			t.Fatalf("score increased as open tickets grew: %v after %v", s, prev)
		}
		prev = s
	}
}

func TestOpenTicketCeiling(t *testing.T) {
	cases := map[string]int{
		models.UrgencyCritical: 3,
		models.UrgencyHigh:     5,
		models.UrgencyModerate: 8,
		models.UrgencyLow:      10,
	}
	for urgency, want := range cases {
		if got := openTicketCeiling(urgency); got != want {
			t.Fatalf("ceiling for %s = %d, want %d", urgency, got, want)
		}
	}
}
