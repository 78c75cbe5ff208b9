package model

import "time"

// ApplicationPeriod defines an enrollment window during which applications
// may be submitted.  An application's effective deadline is governed by its
// period's end date; the expiry sweep rejects PENDING applications whose
// period has closed.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – display label, e.g. "AY 2025-2026 First Semester".
//	StartDate   – first day of the window.
//	EndDate     – last day of the window; applications stale past this date.
//	IsOpen      – administrator toggle; a period can be closed early.
//	BudgetCents – optional allocation for awards granted in this period.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type ApplicationPeriod struct {
	ID          uint64    // application_periods.id
	Name        string    // application_periods.name
	StartDate   time.Time // application_periods.start_date
	EndDate     time.Time // application_periods.end_date
	IsOpen      bool      // application_periods.is_open
	BudgetCents *uint64   // application_periods.budget_cents (nullable)
	CreatedAt   time.Time // application_periods.created_at
	UpdatedAt   time.Time // application_periods.updated_at
}

// Accepting reports whether the period can receive submissions at the
// given instant: the open flag is set and now falls inside the window.
func (p ApplicationPeriod) Accepting(now time.Time) bool {
	return p.IsOpen && !now.Before(p.StartDate) && !now.After(p.EndDate)
}
