package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/teyorkk/iskolarblock-sub001/internal/model"
)

// PeriodRepo persists enrollment windows.  Eligibility checks and the
// expiry sweep both read from here.
type PeriodRepo struct {
	db *sql.DB
}

func NewPeriodRepo(db *sql.DB) *PeriodRepo { return &PeriodRepo{db: db} }

const periodColumns = "id, name, start_date, end_date, is_open, budget_cents, created_at, updated_at"

// Create inserts a period and populates the generated ID.
func (r *PeriodRepo) Create(ctx context.Context, p *model.ApplicationPeriod) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO application_periods (name, start_date, end_date, is_open, budget_cents)
         VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.StartDate.UTC(), p.EndDate.UTC(), p.IsOpen, p.BudgetCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches one period.
func (r *PeriodRepo) GetByID(ctx context.Context, id uint64) (model.ApplicationPeriod, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+periodColumns+" FROM application_periods WHERE id = ?", id)
	return scanPeriod(row)
}

// List returns all periods, most recent window first.
func (r *PeriodRepo) List(ctx context.Context) ([]model.ApplicationPeriod, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+periodColumns+" FROM application_periods ORDER BY start_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	periods := []model.ApplicationPeriod{}
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return periods, nil
}

// Update rewrites a period's window, open flag and budget.
func (r *PeriodRepo) Update(ctx context.Context, p *model.ApplicationPeriod) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE application_periods SET name = ?, start_date = ?, end_date = ?, is_open = ?, budget_cents = ?, updated_at = ?
         WHERE id = ?`,
		p.Name, p.StartDate.UTC(), p.EndDate.UTC(), p.IsOpen, p.BudgetCents, time.Now().UTC(), p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CurrentOpen returns the period accepting submissions at the given
// instant, or ErrPeriodClosed when none is.
func (r *PeriodRepo) CurrentOpen(ctx context.Context, now time.Time) (model.ApplicationPeriod, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+periodColumns+` FROM application_periods
         WHERE is_open = 1 AND start_date <= ? AND end_date >= ?
         ORDER BY end_date ASC LIMIT 1`,
		now.UTC(), now.UTC())
	p, err := scanPeriod(row)
	if err == sql.ErrNoRows {
		return model.ApplicationPeriod{}, ErrPeriodClosed
	}
	return p, err
}

func scanPeriod(s scanner) (model.ApplicationPeriod, error) {
	var (
		p      model.ApplicationPeriod
		budget sql.NullInt64
	)
	err := s.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.IsOpen, &budget, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.ApplicationPeriod{}, err
	}
	if budget.Valid {
		v := uint64(budget.Int64)
		p.BudgetCents = &v
	}
	return p, nil
}
