package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/teyorkk/iskolarblock-sub001/internal/model"
)

func newMockRepo(t *testing.T) (*ApplicationRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return NewApplicationRepo(db), mock, func() { db.Close() }
}

func TestExpireStaleBatchUpdate(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT a.id FROM applications a").
		WithArgs(string(model.StatusPending), now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7).AddRow(9).AddRow(12))
	mock.ExpectExec("UPDATE applications SET status = ").
		WithArgs(string(model.StatusRejected), now, 7, 9, 12).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ExpireStale(context.Background(), now)
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	if n != 3 {
		t.Fatalf("expired = %d, want 3", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExpireStaleNothingToDo(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT a.id FROM applications a").
		WithArgs(string(model.StatusPending), now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	n, err := repo.ExpireStale(context.Background(), now)
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	if n != 0 {
		t.Fatalf("expired = %d, want 0", n)
	}
	// No UPDATE may run when nothing is stale.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusGuardsTransition(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE applications SET status = ").
		WithArgs(string(model.StatusApproved), nil, now, 5, string(model.StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// Zero rows: the repo re-reads the row to tell "missing" from "wrong
	// status".  Here the row exists, so the transition is the problem.
	cols := []string{"id", "user_id", "period_id", "app_type", "status", "personal_info", "id_document_url", "remarks", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT (.+) FROM applications WHERE id = ").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(5, 2, 1, "NEW", "GRANTED", []byte(`{}`), nil, nil, now, now))

	err := repo.UpdateStatus(context.Background(), 5, model.StatusPending, model.StatusApproved, nil, now)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestUpdateStatusMissingRow(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE applications SET status = ").
		WithArgs(string(model.StatusRejected), nil, now, 404, string(model.StatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM applications WHERE id = ").
		WithArgs(404).
		WillReturnError(sql.ErrNoRows)

	err := repo.UpdateStatus(context.Background(), 404, model.StatusPending, model.StatusRejected, nil, now)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestGetByIDForUserOwnership(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	now := time.Now().UTC()
	cols := []string{"id", "user_id", "period_id", "app_type", "status", "personal_info", "id_document_url", "remarks", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT (.+) FROM applications WHERE id = ").
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(8, 31, 1, "NEW", "PENDING", []byte(`{"first_name":"Ana"}`), nil, nil, now, now))

	_, err := repo.GetByIDForUser(context.Background(), 8, 99)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}
