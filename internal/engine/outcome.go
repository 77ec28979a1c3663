package engine

import "github.com/civix/backend/internal/models"

// Outcome kinds.
const (
	OutcomeAssigned        = "assigned"
	OutcomePendingApproval = "pending_approval"
	OutcomeManualRequired  = "manual_required"
)

// Outcome is the single decision the engine reaches for one issue.
// Exactly one of the constructors below builds it, so only the fields
// belonging to its kind are ever populated.
type Outcome struct {
	Kind         string             `json:"status"`
	Technician   *models.Technician `json:"technician,omitempty"`
	Suggested    *models.Candidate  `json:"suggested,omitempty"`
	Alternatives []models.Candidate `json:"alternatives,omitempty"`
	Reason       string             `json:"reason,omitempty"`
}

func assigned(c models.Candidate) Outcome {
	t := c.Technician
	return Outcome{Kind: OutcomeAssigned, Technician: &t}
}

func pendingApproval(candidates []models.Candidate) Outcome {
	top := candidates[0]
	alternatives := candidates
	if len(alternatives) > 5 {
		alternatives = alternatives[:5]
	}
	return Outcome{
		Kind:         OutcomePendingApproval,
		Suggested:    &top,
		Alternatives: alternatives,
	}
}

func manualRequired(reason string) Outcome {
	return Outcome{Kind: OutcomeManualRequired, Reason: reason}
}
