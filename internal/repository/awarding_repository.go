package repository

import (
	"context"
	"database/sql"

	"github.com/teyorkk/iskolarblock-sub001/internal/model"
)

// AwardingRepo persists scholarship grants.  One award per application;
// a second grant attempt surfaces ErrConflict via the unique key on
// application_id.
type AwardingRepo struct {
	db *sql.DB
}

func NewAwardingRepo(db *sql.DB) *AwardingRepo { return &AwardingRepo{db: db} }

// Create inserts an awarding row and populates the generated ID.
func (r *AwardingRepo) Create(ctx context.Context, a *model.Awarding) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO awardings (application_id, user_id, granted_by, amount_cents, remarks)
         VALUES (?, ?, ?, ?, ?)`,
		a.ApplicationID, a.UserID, a.GrantedBy, a.AmountCents, a.Remarks)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByApplication returns the award for an application, or sql.ErrNoRows.
func (r *AwardingRepo) GetByApplication(ctx context.Context, applicationID uint64) (model.Awarding, error) {
	var a model.Awarding
	var remarks sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, application_id, user_id, granted_by, amount_cents, remarks, created_at
         FROM awardings WHERE application_id = ? LIMIT 1`, applicationID).
		Scan(&a.ID, &a.ApplicationID, &a.UserID, &a.GrantedBy, &a.AmountCents, &remarks, &a.CreatedAt)
	if err != nil {
		return model.Awarding{}, err
	}
	if remarks.Valid {
		v := remarks.String
		a.Remarks = &v
	}
	return a, nil
}
