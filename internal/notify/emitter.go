package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/civix/backend/internal/models"
)

// Emitter builds typed, prioritized notifications and appends them to
// the inbox. All notification construction goes through it so the type
// and priority derivations live in one place.
type Emitter struct {
	Inbox *Inbox
}

// ManualRequired emits the notification for an issue no automation
// could assign. The reason code picks the type.
func (e *Emitter) ManualRequired(issue models.Issue, reason string, busy []models.Candidate) models.Notification {
	var typ, title, message string
	switch reason {
	case "no_technicians_of_specialization":
		typ = models.NotifNoTechnicians
		title = "No technicians available"
		message = fmt.Sprintf("No %s technicians exist for issue %q; manual dispatch needed.", issue.Category, issue.Title)
	case "issue_unclassified":
		typ = models.NotifIssueUnclassified
		title = "Issue could not be classified"
		message = fmt.Sprintf("Issue %q did not match any service category; classify and assign it manually.", issue.Title)
	default: // all_technicians_busy, system_error
		typ = models.NotifManualRequired
		title = "Manual assignment required"
		message = fmt.Sprintf("Issue %q needs manual assignment (%s).", issue.Title, reason)
	}

	data := map[string]any{
		"issue_id": issue.ID,
		"category": issue.Category,
		"urgency":  issue.Urgency,
		"reason":   reason,
		"actions":  []string{"assign_manually"},
	}
	if len(busy) > 0 {
		data["busy_technicians"] = candidatePayload(busy)
	}
	return e.append(typ, title, message, issue.Urgency, data, true)
}

// PendingApproval emits the notification asking an admin to confirm a
// suggested assignment.
func (e *Emitter) PendingApproval(issue models.Issue, cls models.Classification, suggested models.Candidate, alternatives []models.Candidate) models.Notification {
	title := "Assignment awaiting approval"
	message := fmt.Sprintf("Issue %q: suggested technician %s (%s classification, confidence %.2f).",
		issue.Title, suggested.Technician.Name, cls.Method, cls.Confidence)
	data := map[string]any{
		"issue_id":              issue.ID,
		"category":              cls.Category,
		"urgency":               issue.Urgency,
		"classification_method": cls.Method,
		"confidence":            cls.Confidence,
		"suggested":             candidatePayload([]models.Candidate{suggested})[0],
		"alternatives":          candidatePayload(alternatives),
		"actions":               []string{"approve", "reassign", "reject"},
	}
	return e.append(models.NotifAssignmentPending, title, message, issue.Urgency, data, true)
}

// AssignmentAudit emits the advisory trail entry for an automatic
// assignment, letting admins override it after the fact. Only used when
// the audit policy flag is on.
func (e *Emitter) AssignmentAudit(issue models.Issue, technician models.Technician) models.Notification {
	title := "Issue auto-assigned"
	message := fmt.Sprintf("Issue %q was automatically assigned to %s.", issue.Title, technician.Name)
	data := map[string]any{
		"issue_id":      issue.ID,
		"category":      issue.Category,
		"urgency":       issue.Urgency,
		"technician_id": technician.ID,
		"actions":       []string{"override"},
	}
	return e.append(models.NotifOverrideNeeded, title, message, issue.Urgency, data, true)
}

// ManualOverride emits the notification recording that an admin
// reassigned an issue to a technician outside the matching
// specialization.
func (e *Emitter) ManualOverride(issue models.Issue, technician models.Technician, reason string) models.Notification {
	title := "Assignment overridden"
	message := fmt.Sprintf("Issue %q was manually reassigned to %s outside the matching specialization.",
		issue.Title, technician.Name)
	data := map[string]any{
		"issue_id":      issue.ID,
		"category":      issue.Category,
		"urgency":       issue.Urgency,
		"technician_id": technician.ID,
		"reason":        reason,
		"actions":       []string{"acknowledge"},
	}
	return e.append(models.NotifOverrideNeeded, title, message, issue.Urgency, data, false)
}

func (e *Emitter) append(typ, title, message, urgency string, data map[string]any, actionable bool) models.Notification {
	now := time.Now().UTC()
	n := models.Notification{
		ID:         uuid.New().String(),
		Type:       typ,
		Title:      title,
		Message:    message,
		Data:       data,
		Priority:   priorityFor(typ, urgency),
		Actionable: actionable,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	e.Inbox.Append(n)
	return n
}

// priorityFor derives notification priority: critical urgency on the
// source issue forces critical regardless of type.
func priorityFor(typ, urgency string) string {
	if urgency == models.UrgencyCritical {
		return models.PriorityCritical
	}
	switch typ {
	case models.NotifNoTechnicians, models.NotifManualRequired, models.NotifIssueUnclassified:
		return models.PriorityHigh
	case models.NotifAssignmentPending:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func candidatePayload(candidates []models.Candidate) []map[string]any {
	out := make([]map[string]any, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, map[string]any{
			"technician_id": c.Technician.ID,
			"name":          c.Technician.Name,
			"open_tickets":  c.Technician.OpenTickets,
			"rating":        c.Technician.Rating,
			"score":         c.Score,
		})
	}
	return out
}
