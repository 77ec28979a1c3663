package engine

import (
	"math"

	"github.com/civix/backend/internal/models"
)

// Score converts technician attributes into a single comparable value:
// rating*20 + min(resolved*2, 50) - workload penalty, where the penalty
// is (openTickets/10)*100 clamped non-negative.
func Score(t models.Technician) float64 {
	resolvedBonus := math.Min(float64(t.Resolved)*2, 50)
	penalty := float64(t.OpenTickets) / 10 * 100
	if penalty < 0 {
		penalty = 0
	}
	return t.Rating*20 + resolvedBonus - penalty
}

// openTicketCeiling derives the max open-ticket count a technician may
// carry and still take new work of the given urgency.
func openTicketCeiling(urgency string) int {
	switch urgency {
	case models.UrgencyCritical:
		return 3
	case models.UrgencyHigh:
		return 5
	case models.UrgencyModerate:
		return 8
	default:
		return 10
	}
}
