package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civix/backend/internal/classify"
	"github.com/civix/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) InsertIssue(ctx context.Context, i models.Issue) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO issues (id, title, description, category, urgency, lat, lon, address, status, assigned_to, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, i.ID, i.Title, i.Description, i.Category, i.Urgency, i.Lat, i.Lon, i.Address, i.Status, i.AssignedTo, i.CreatedAt, i.UpdatedAt)
	return err
}

func (s *Store) GetIssue(ctx context.Context, id string) (models.Issue, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, title, description, category, urgency, lat, lon, address, status, assigned_to, created_at, updated_at
		FROM issues WHERE id = $1
	`, id)
	var i models.Issue
	if err := row.Scan(&i.ID, &i.Title, &i.Description, &i.Category, &i.Urgency, &i.Lat, &i.Lon, &i.Address, &i.Status, &i.AssignedTo, &i.CreatedAt, &i.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Issue{}, ErrNotFound
		}
		return models.Issue{}, err
	}
	return i, nil
}

func (s *Store) ListIssues(ctx context.Context, status, category, urgency string, limit, offset int) ([]models.Issue, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, title, description, category, urgency, lat, lon, address, status, assigned_to, created_at, updated_at FROM issues`
	var args []any
	var wheres []string
	if status != "" {
		args = append(args, status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if category != "" {
		args = append(args, category)
		wheres = append(wheres, fmt.Sprintf("category = $%d", len(args)))
	}
	if urgency != "" {
		args = append(args, urgency)
		wheres = append(wheres, fmt.Sprintf("urgency = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT $" + fmt.Sprint(len(args)+1) + " OFFSET $" + fmt.Sprint(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Issue
	for rows.Next() {
		var i models.Issue
		if err := rows.Scan(&i.ID, &i.Title, &i.Description, &i.Category, &i.Urgency, &i.Lat, &i.Lon, &i.Address, &i.Status, &i.AssignedTo, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *Store) UpdateIssueCategory(ctx context.Context, issueID, category string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE issues SET category = $1, updated_at = NOW() WHERE id = $2
	`, category, issueID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListTechnicians(ctx context.Context, status string) ([]models.Technician, error) {
	query := `SELECT id, name, specialization, status, open_tickets, resolved, rating, assigned_issues, lat, lon, updated_at FROM technicians`
	var args []any
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	query += " ORDER BY open_tickets ASC, id ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Technician
	for rows.Next() {
		var t models.Technician
		if err := rows.Scan(&t.ID, &t.Name, &t.Specialization, &t.Status, &t.OpenTickets, &t.Resolved, &t.Rating, &t.AssignedIssues, &t.Lat, &t.Lon, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) InsertTechnician(ctx context.Context, t models.Technician) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO technicians (id, name, specialization, status, open_tickets, resolved, rating, assigned_issues, lat, lon, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, t.ID, t.Name, t.Specialization, t.Status, t.OpenTickets, t.Resolved, t.Rating, t.AssignedIssues, t.Lat, t.Lon, t.UpdatedAt)
	return err
}

func (s *Store) GetTechnician(ctx context.Context, id string) (models.Technician, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, specialization, status, open_tickets, resolved, rating, assigned_issues, lat, lon, updated_at
		FROM technicians WHERE id = $1
	`, id)
	var t models.Technician
	if err := row.Scan(&t.ID, &t.Name, &t.Specialization, &t.Status, &t.OpenTickets, &t.Resolved, &t.Rating, &t.AssignedIssues, &t.Lat, &t.Lon, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Technician{}, ErrNotFound
		}
		return models.Technician{}, err
	}
	return t, nil
}

// FindBySpecializationAndStatus returns technicians whose free-text
// specialization covers the category. The status filter runs in SQL;
// the keyword match runs here because it shares the classifier's
// keyword sets.
func (s *Store) FindBySpecializationAndStatus(ctx context.Context, category, status string) ([]models.Technician, error) {
	technicians, err := s.ListTechnicians(ctx, status)
	if err != nil {
		return nil, err
	}
	out := make([]models.Technician, 0, len(technicians))
	for _, t := range technicians {
		if classify.MatchesSpecialization(t.Specialization, category) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) IncrementOpenTickets(ctx context.Context, tx pgx.Tx, technicianID string, delta int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE technicians SET open_tickets = GREATEST(open_tickets + $1, 0), updated_at = NOW() WHERE id = $2
	`, delta, technicianID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AppendAssignedIssue(ctx context.Context, tx pgx.Tx, technicianID, issueID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE technicians SET assigned_issues = array_append(assigned_issues, $1), updated_at = NOW() WHERE id = $2
	`, issueID, technicianID)
	return err
}

// AssignIssue links an issue to a technician as one transaction: the
// issue's assignment fields and the technician's counters commit
// together or not at all.
func (s *Store) AssignIssue(ctx context.Context, issueID, technicianID, category string) (models.Technician, error) {
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE issues SET assigned_to = $1, category = $2, status = $3, updated_at = NOW() WHERE id = $4
		`, technicianID, category, models.IssueAssigned, issueID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if err := s.IncrementOpenTickets(ctx, tx, technicianID, 1); err != nil {
			return err
		}
		return s.AppendAssignedIssue(ctx, tx, technicianID, issueID)
	})
	if err != nil {
		return models.Technician{}, err
	}
	return s.GetTechnician(ctx, technicianID)
}

// Reassign moves an issue to another technician, rebalancing open
// ticket counters inside one transaction.
func (s *Store) Reassign(ctx context.Context, issueID, technicianID string) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		var prev *string
		if err := tx.QueryRow(ctx, `SELECT assigned_to FROM issues WHERE id = $1`, issueID).Scan(&prev); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		if prev != nil && *prev == technicianID {
			return nil
		}
		if prev != nil {
			if err := s.IncrementOpenTickets(ctx, tx, *prev, -1); err != nil {
				return err
			}
		}
		if err := s.IncrementOpenTickets(ctx, tx, technicianID, 1); err != nil {
			return err
		}
		if err := s.AppendAssignedIssue(ctx, tx, technicianID, issueID); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			UPDATE issues SET assigned_to = $1, status = $2, updated_at = NOW() WHERE id = $3
		`, technicianID, models.IssueAssigned, issueID)
		return err
	})
}

// ResolveIssue closes an issue, crediting the assigned technician's
// resolved count and releasing one open ticket slot.
func (s *Store) ResolveIssue(ctx context.Context, issueID string) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		var assignedTo *string
		var status string
		if err := tx.QueryRow(ctx, `SELECT assigned_to, status FROM issues WHERE id = $1`, issueID).Scan(&assignedTo, &status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if status == models.IssueResolved {
			return nil
		}

		if assignedTo != nil {
			if err := s.IncrementOpenTickets(ctx, tx, *assignedTo, -1); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				UPDATE technicians SET resolved = resolved + 1, updated_at = NOW() WHERE id = $1
			`, *assignedTo); err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, `
			UPDATE issues SET status = $1, updated_at = NOW() WHERE id = $2
		`, models.IssueResolved, issueID)
		return err
	})
}
