package models

import "time"

// Urgency levels, ordered critical > high > moderate > low.
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyModerate = "moderate"
	UrgencyLow      = "low"
)

// Issue status values.
const (
	IssueOpen     = "open"
	IssueAssigned = "assigned"
	IssueResolved = "resolved"
)

// Technician availability statuses.
const (
	TechnicianActive   = "active"
	TechnicianOnSite   = "on-site"
	TechnicianOnLeave  = "on-leave"
	TechnicianInactive = "inactive"
)

type Issue struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Urgency     string    `json:"urgency"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Address     string    `json:"address,omitempty"`
	Status      string    `json:"status"`
	AssignedTo  *string   `json:"assigned_to"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Technician struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	Status         string    `json:"status"`
	OpenTickets    int       `json:"open_tickets"`
	Resolved       int       `json:"resolved"`
	Rating         float64   `json:"rating"`
	AssignedIssues []string  `json:"assigned_issues,omitempty"`
	Lat            float64   `json:"lat"`
	Lon            float64   `json:"lon"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Classification methods.
const (
	MethodDirect   = "direct"
	MethodKeyword  = "keyword_fallback"
	MethodExternal = "external_model"
)

// Classification is the ephemeral result of categorizing one issue.
type Classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// Candidate is a technician with the score computed for a particular match.
type Candidate struct {
	Technician Technician `json:"technician"`
	Score      float64    `json:"score"`
}

// Notification types. The set is closed; the emitter never produces
// anything outside it.
const (
	NotifIssueUnclassified = "issue_unclassified"
	NotifAssignmentPending = "llm_assignment_pending"
	NotifNoTechnicians     = "no_technicians_available"
	NotifOverrideNeeded    = "assignment_override_needed"
	NotifManualRequired    = "manual_assignment_required"
)

// Notification priorities.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Notification is an admin inbox entry. The JSON field names match the
// shape the admin console consumes.
type Notification struct {
	ID         string         `json:"_id"`
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data"`
	Priority   string         `json:"priority"`
	Read       bool           `json:"read"`
	Actionable bool           `json:"actionable"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
