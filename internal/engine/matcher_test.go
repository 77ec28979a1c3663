package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/civix/backend/internal/classify"
	"github.com/civix/backend/internal/models"
)

// fakeRoster serves matcher and engine tests. Assignments apply the
// same all-or-nothing semantics as the real store.
type fakeRoster struct {
	technicians []models.Technician
	findErr     error
	assignErr   error
	assignments map[string]string // issue id -> technician id
}

func (f *fakeRoster) FindBySpecializationAndStatus(_ context.Context, category, status string) ([]models.Technician, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []models.Technician
	for _, t := range f.technicians {
		if t.Status == status && classify.MatchesSpecialization(t.Specialization, category) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRoster) AssignIssue(_ context.Context, issueID, technicianID, category string) (models.Technician, error) {
	if f.assignErr != nil {
		return models.Technician{}, f.assignErr
	}
	for i := range f.technicians {
		if f.technicians[i].ID == technicianID {
			f.technicians[i].OpenTickets++
			f.technicians[i].AssignedIssues = append(f.technicians[i].AssignedIssues, issueID)
			if f.assignments == nil {
				f.assignments = map[string]string{}
			}
			f.assignments[issueID] = technicianID
			return f.technicians[i], nil
		}
	}
	return models.Technician{}, errors.New("technician not found")
}

func TestMatchNoTechniciansOfSpecialization(t *testing.T) {
	roster := &fakeRoster{technicians: []models.Technician{
		{ID: "t1", Specialization: "Water supply", Status: models.TechnicianActive},
	}}
	res, err := Match(context.Background(), roster, classify.CategoryElectricity, models.UrgencyHigh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.RequiresManual || res.Reason != ReasonNoTechnicians {
		t.Fatalf("expected no_technicians_of_specialization, got %+v", res)
	}
	if len(res.Candidates) != 0 || len(res.Busy) != 0 {
		t.Fatalf("expected empty pools, got %+v", res)
	}
}

func TestMatchAllBusy(t *testing.T) {
	roster := &fakeRoster{technicians: []models.Technician{
		{ID: "t1", Specialization: "Electrician", Status: models.TechnicianActive, OpenTickets: 7, Rating: 4},
		{ID: "t2", Specialization: "Electrician", Status: models.TechnicianActive, OpenTickets: 9, Rating: 5},
	}}
	res, err := Match(context.Background(), roster, classify.CategoryElectricity, models.UrgencyHigh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.RequiresManual || res.Reason != ReasonAllBusy {
		t.Fatalf("expected all_technicians_busy, got %+v", res)
	}
	if len(res.Busy) != 2 {
		t.Fatalf("expected 2 busy candidates, got %d", len(res.Busy))
	}
}

func TestMatchCeilingDependsOnUrgency(t *testing.T) {
	roster := &fakeRoster{technicians: []models.Technician{
		{ID: "t1", Specialization: "Electrician", Status: models.TechnicianActive, OpenTickets: 4, Rating: 4},
	}}

	// 4 open tickets is over the critical ceiling (3) but under high (5).
	res, err := Match(context.Background(), roster, classify.CategoryElectricity, models.UrgencyCritical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.RequiresManual || res.Reason != ReasonAllBusy {
		t.Fatalf("expected busy under critical urgency, got %+v", res)
	}

	res, err = Match(context.Background(), roster, classify.CategoryElectricity, models.UrgencyHigh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RequiresManual || len(res.Candidates) != 1 {
		t.Fatalf("expected 1 eligible candidate under high urgency, got %+v", res)
	}
}

func TestMatchIgnoresInactiveTechnicians(t *testing.T) {
	roster := &fakeRoster{technicians: []models.Technician{
		{ID: "t1", Specialization: "Electrician", Status: models.TechnicianOnLeave, Rating: 5},
		{ID: "t2", Specialization: "Electrician", Status: models.TechnicianInactive, Rating: 5},
	}}
	res, err := Match(context.Background(), roster, classify.CategoryElectricity, models.UrgencyLow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.RequiresManual || res.Reason != ReasonNoTechnicians {
		t.Fatalf("expected no active technicians, got %+v", res)
	}
}

func TestMatchRanksByScore(t *testing.T) {
	roster := &fakeRoster{technicians: []models.Technician{
		{ID: "t1", Specialization: "Electrician", Status: models.TechnicianActive, Rating: 3, Resolved: 5, OpenTickets: 2},
		{ID: "t2", Specialization: "Electrician", Status: models.TechnicianActive, Rating: 4.5, Resolved: 30, OpenTickets: 1},
		{ID: "t3", Specialization: "Electrician", Status: models.TechnicianActive, Rating: 4, Resolved: 10, OpenTickets: 0},
	}}
	res, err := Match(context.Background(), roster, classify.CategoryElectricity, models.UrgencyModerate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(res.Candidates))
	}
	// t2: 90+50-10=130, t3: 80+20-0=100, t1: 60+10-20=50.
	if res.Candidates[0].Technician.ID != "t2" || res.Candidates[1].Technician.ID != "t3" || res.Candidates[2].Technician.ID != "t1" {
		t.Fatalf("unexpected ranking: %s %s %s",
			res.Candidates[0].Technician.ID, res.Candidates[1].Technician.ID, res.Candidates[2].Technician.ID)
	}
}

func TestMatchTieBreaksAreDeterministic(t *testing.T) {
	// Identical attributes: rank falls back to id ordering.
	roster := &fakeRoster{technicians: []models.Technician{
		{ID: "t9", Specialization: "Electrician", Status: models.TechnicianActive, Rating: 4, Resolved: 10, OpenTickets: 1},
		{ID: "t2", Specialization: "Electrician", Status: models.TechnicianActive, Rating: 4, Resolved: 10, OpenTickets: 1},
	}}
	for i := 0; i < 5; i++ {
		res, err := Match(context.Background(), roster, classify.CategoryElectricity, models.UrgencyLow)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Candidates[0].Technician.ID != "t2" {
			t.Fatalf("expected t2 first on id tie-break, got %s", res.Candidates[0].Technician.ID)
		}
	}
}

func TestMatchCapsPools(t *testing.T) {
	var technicians []models.Technician
	for i := 0; i < 15; i++ {
		technicians = append(technicians, models.Technician{
			ID:             string(rune('a' + i)),
			Specialization: "Electrician",
			Status:         models.TechnicianActive,
			Rating:         4,
			OpenTickets:    i, // spread across the low ceiling of 10
		})
	}
	roster := &fakeRoster{technicians: technicians}
	res, err := Match(context.Background(), roster, classify.CategoryElectricity, models.UrgencyLow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) > 10 {
		t.Fatalf("expected at most 10 candidates, got %d", len(res.Candidates))
	}
}
