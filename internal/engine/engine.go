// Package engine implements the issue classification and technician
// assignment pipeline: classify, match, decide, notify.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/civix/backend/internal/classify"
	"github.com/civix/backend/internal/metrics"
	"github.com/civix/backend/internal/models"
	"github.com/civix/backend/internal/notify"
)

// AutoAssignThreshold gates the only path that mutates state without
// human review. External-model classifications never reach it
// regardless of confidence; that policy is fixed.
const AutoAssignThreshold = 0.9

// Roster is the technician read/write surface the engine needs. The
// assignment mutation is atomic: issue update and technician counter
// increment commit together or not at all.
type Roster interface {
	FindBySpecializationAndStatus(ctx context.Context, category, status string) ([]models.Technician, error)
	AssignIssue(ctx context.Context, issueID, technicianID, category string) (models.Technician, error)
}

type Engine struct {
	Classifier       classify.Classifier
	Roster           Roster
	Emitter          *notify.Emitter
	Metrics          *metrics.Metrics
	Logger           zerolog.Logger
	AuditAssignments bool
}

// DispatchResult is everything the issue-creation handler needs to
// report back: the classification, the decision, and any notifications
// emitted along the way.
type DispatchResult struct {
	Classification models.Classification
	Outcome        Outcome
	Notifications  []models.Notification
}

// Dispatch runs the full pipeline for one issue. It never fails: every
// internal error degrades to a ManualRequired outcome with a
// notification, so issue creation always succeeds.
func (e *Engine) Dispatch(ctx context.Context, issue models.Issue) DispatchResult {
	start := time.Now()
	defer func() {
		e.Metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	}()

	cls := e.classify(ctx, issue)
	e.Metrics.Classifications.WithLabelValues(cls.Method).Inc()
	issue.Category = cls.Category

	result := DispatchResult{Classification: cls}

	if cls.Category == classify.CategoryUnknown {
		result.Outcome = manualRequired(ReasonUnclassified)
		n := e.Emitter.ManualRequired(issue, ReasonUnclassified, nil)
		result.Notifications = append(result.Notifications, n)
		e.record(result)
		return result
	}

	match, err := Match(ctx, e.Roster, cls.Category, issue.Urgency)
	if err != nil {
		e.Logger.Error().Err(err).Str("issue_id", issue.ID).Msg("roster lookup failed")
		result.Outcome = manualRequired(ReasonSystemError)
		n := e.Emitter.ManualRequired(issue, ReasonSystemError, nil)
		result.Notifications = append(result.Notifications, n)
		e.record(result)
		return result
	}

	outcome, notifications := e.decide(ctx, issue, cls, match)
	result.Outcome = outcome
	result.Notifications = append(result.Notifications, notifications...)
	e.record(result)
	return result
}

func (e *Engine) classify(ctx context.Context, issue models.Issue) models.Classification {
	if classify.IsConcrete(issue.Category) {
		return models.Classification{
			Category:   classify.Normalize(issue.Category),
			Confidence: 1.0,
			Method:     models.MethodDirect,
		}
	}
	cls, err := e.Classifier.Classify(ctx, issue.Title, issue.Description)
	if err != nil {
		// Classifiers are wrapped in a keyword fallback, so this is a
		// second line of defense only.
		e.Logger.Warn().Err(err).Str("issue_id", issue.ID).Msg("classifier error, degrading to keywords")
		cls, _ = classify.KeywordClassifier{}.Classify(ctx, issue.Title, issue.Description)
	}
	return cls
}

// decide is the single decision point per issue. External-model
// classifications always require human approval before any mutation.
func (e *Engine) decide(ctx context.Context, issue models.Issue, cls models.Classification, match MatchResult) (Outcome, []models.Notification) {
	if match.RequiresManual {
		n := e.Emitter.ManualRequired(issue, match.Reason, match.Busy)
		return manualRequired(match.Reason), []models.Notification{n}
	}

	if cls.Method != models.MethodExternal && cls.Confidence >= AutoAssignThreshold && len(match.Candidates) > 0 {
		top := match.Candidates[0]
		if _, err := e.Roster.AssignIssue(ctx, issue.ID, top.Technician.ID, cls.Category); err != nil {
			e.Logger.Error().Err(err).
				Str("issue_id", issue.ID).
				Str("technician_id", top.Technician.ID).
				Msg("atomic assignment failed")
			n := e.Emitter.ManualRequired(issue, ReasonSystemError, nil)
			return manualRequired(ReasonSystemError), []models.Notification{n}
		}
		out := assigned(top)
		if e.AuditAssignments {
			n := e.Emitter.AssignmentAudit(issue, top.Technician)
			return out, []models.Notification{n}
		}
		return out, nil
	}

	out := pendingApproval(match.Candidates)
	n := e.Emitter.PendingApproval(issue, cls, *out.Suggested, out.Alternatives)
	return out, []models.Notification{n}
}

func (e *Engine) record(result DispatchResult) {
	e.Metrics.Outcomes.WithLabelValues(result.Outcome.Kind).Inc()
	for _, n := range result.Notifications {
		e.Metrics.Notifications.WithLabelValues(n.Type).Inc()
	}
}
