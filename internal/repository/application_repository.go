package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/teyorkk/iskolarblock-sub001/internal/model"
)

// ApplicationRepo provides persistence for scholarship applications.
// The personal_info column holds a JSON document parsed into
// model.PersonalInfo at the boundary.  All timestamps are stored in UTC.
type ApplicationRepo struct {
	db *sql.DB
}

// NewApplicationRepo returns an ApplicationRepo bound to the given database.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

const applicationColumns = "id, user_id, period_id, app_type, status, personal_info, id_document_url, remarks, created_at, updated_at"

// Create inserts a new application and populates the generated ID and
// timestamps on the provided record.
func (r *ApplicationRepo) Create(ctx context.Context, app *model.Application) error {
	info, err := json.Marshal(app.PersonalInfo)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (user_id, period_id, app_type, status, personal_info, id_document_url, remarks)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		app.UserID, app.PeriodID, app.Type, app.Status, info, app.IDDocumentURL, app.Remarks)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	app.ID = uint64(id)
	got, err := r.GetByID(ctx, app.ID)
	if err != nil {
		return err
	}
	app.CreatedAt, app.UpdatedAt = got.CreatedAt, got.UpdatedAt
	return nil
}

// GetByID fetches one application.  sql.ErrNoRows when absent.
func (r *ApplicationRepo) GetByID(ctx context.Context, id uint64) (model.Application, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE id = ?", id)
	return scanApplication(row)
}

// GetByIDForUser fetches one application enforcing ownership: sql.ErrNoRows
// when absent, ErrForbidden when it belongs to someone else.
func (r *ApplicationRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (model.Application, error) {
	app, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Application{}, err
	}
	if app.UserID != userID {
		return model.Application{}, ErrForbidden
	}
	return app, nil
}

// ListByUser returns the user's applications, newest first.
func (r *ApplicationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+applicationColumns+" FROM applications WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

// ApplicationFilter narrows admin listings.  Zero values mean "any".
type ApplicationFilter struct {
	Status   model.ApplicationStatus
	Type     model.ApplicationType
	PeriodID uint64
}

// List returns applications matching the filter, newest first.
func (r *ApplicationRepo) List(ctx context.Context, f ApplicationFilter) ([]model.Application, error) {
	q := "SELECT " + applicationColumns + " FROM applications WHERE 1=1"
	args := []interface{}{}
	if f.Status != "" {
		q += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.Type != "" {
		q += " AND app_type = ?"
		args = append(args, f.Type)
	}
	if f.PeriodID != 0 {
		q += " AND period_id = ?"
		args = append(args, f.PeriodID)
	}
	q += " ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

// UpdateStatus moves an application from one status to another, guarding
// the transition in the WHERE clause.  Zero rows affected means the
// application either does not exist (sql.ErrNoRows) or is not in the
// expected source status (ErrInvalidTransition).
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.ApplicationStatus, remarks *string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE applications SET status = ?, remarks = COALESCE(?, remarks), updated_at = ? WHERE id = ? AND status = ?",
		to, remarks, now.UTC(), id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

// SetIDDocument records the stored ID document URL for an application.
func (r *ApplicationRepo) SetIDDocument(ctx context.Context, id uint64, url string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE applications SET id_document_url = ?, updated_at = ? WHERE id = ?",
		url, now.UTC(), id)
	return err
}

// ExpireStale flips PENDING applications whose period has already ended to
// REJECTED, refreshing updated_at, in one batch update keyed by the
// collected identifiers.  Applications without a resolvable period are left
// untouched (the join excludes them).  It returns the number of
// applications expired.  Callers invoke it opportunistically on admin read
// paths and swallow any error.
func (r *ApplicationRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id FROM applications a
         JOIN application_periods p ON p.id = a.period_id
         WHERE a.status = ? AND p.end_date < ?`,
		model.StatusPending, now.UTC())
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var ids []interface{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	q := "UPDATE applications SET status = ?, updated_at = ? WHERE id IN (?" +
		strings.Repeat(",?", len(ids)-1) + ")"
	args := append([]interface{}{model.StatusRejected, now.UTC()}, ids...)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(s scanner) (model.Application, error) {
	var (
		app     model.Application
		info    []byte
		idDoc   sql.NullString
		remarks sql.NullString
	)
	err := s.Scan(&app.ID, &app.UserID, &app.PeriodID, &app.Type, &app.Status,
		&info, &idDoc, &remarks, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return model.Application{}, err
	}
	if len(info) > 0 {
		if err := json.Unmarshal(info, &app.PersonalInfo); err != nil {
			return model.Application{}, err
		}
	}
	if idDoc.Valid {
		v := idDoc.String
		app.IDDocumentURL = &v
	}
	if remarks.Valid {
		v := remarks.String
		app.Remarks = &v
	}
	return app, nil
}

func collectApplications(rows *sql.Rows) ([]model.Application, error) {
	apps := []model.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}
