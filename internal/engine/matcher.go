package engine

import (
	"context"
	"sort"

	"github.com/civix/backend/internal/models"
)

// Matcher reason codes.
const (
	ReasonNoTechnicians = "no_technicians_of_specialization"
	ReasonAllBusy       = "all_technicians_busy"
	ReasonSystemError   = "system_error"
	ReasonUnclassified  = "issue_unclassified"
)

const (
	maxPrimaryCandidates = 10
	maxBusyCandidates    = 5
)

// MatchResult carries the ranked candidate pool for one issue, or the
// reason no automatic assignment is possible.
type MatchResult struct {
	Candidates     []models.Candidate
	Busy           []models.Candidate
	RequiresManual bool
	Reason         string
}

// Match queries the roster for active technicians of the category's
// specialization, splits them around the urgency-derived open-ticket
// ceiling, and ranks the primary pool by score. It performs no mutation.
func Match(ctx context.Context, roster Roster, category, urgency string) (MatchResult, error) {
	technicians, err := roster.FindBySpecializationAndStatus(ctx, category, models.TechnicianActive)
	if err != nil {
		return MatchResult{}, err
	}

	if len(technicians) == 0 {
		return MatchResult{RequiresManual: true, Reason: ReasonNoTechnicians}, nil
	}

	ceiling := openTicketCeiling(urgency)
	var primary, busy []models.Candidate
	for _, t := range technicians {
		c := models.Candidate{Technician: t, Score: Score(t)}
		if t.OpenTickets > ceiling {
			busy = append(busy, c)
		} else {
			primary = append(primary, c)
		}
	}

	sortCandidates(primary)
	sortCandidates(busy)

	if len(primary) == 0 {
		// The specialization exists but everyone is over the ceiling;
		// surface the busy pool for admin transparency.
		if len(busy) > maxBusyCandidates {
			busy = busy[:maxBusyCandidates]
		}
		return MatchResult{Busy: busy, RequiresManual: true, Reason: ReasonAllBusy}, nil
	}

	if len(primary) > maxPrimaryCandidates {
		primary = primary[:maxPrimaryCandidates]
	}
	return MatchResult{Candidates: primary, Busy: busy}, nil
}

// sortCandidates orders by score descending, then fewer open tickets,
// then higher rating, then id, so the ranking is fully deterministic.
func sortCandidates(candidates []models.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Technician.OpenTickets != b.Technician.OpenTickets {
			return a.Technician.OpenTickets < b.Technician.OpenTickets
		}
		if a.Technician.Rating != b.Technician.Rating {
			return a.Technician.Rating > b.Technician.Rating
		}
		return a.Technician.ID < b.Technician.ID
	})
}
