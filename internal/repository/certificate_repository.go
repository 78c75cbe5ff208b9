package repository

import (
	"context"
	"database/sql"

	"github.com/teyorkk/iskolarblock-sub001/internal/model"
)

// CertificateRepo persists the Certificate of Grades and Certificate of
// Registration satellite records.  Each application has at most one of
// each; edits replace the row (delete+insert) inside a transaction so a
// partial write never leaves two rows behind.
type CertificateRepo struct {
	db *sql.DB
}

func NewCertificateRepo(db *sql.DB) *CertificateRepo { return &CertificateRepo{db: db} }

// ReplaceGrades swaps the application's Certificate of Grades for the
// given record.
func (r *CertificateRepo) ReplaceGrades(ctx context.Context, cog *model.CertificateOfGrades) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM certificates_of_grades WHERE application_id = ?", cog.ApplicationID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO certificates_of_grades (application_id, school_year, semester, gwa, file_url)
         VALUES (?, ?, ?, ?, ?)`,
		cog.ApplicationID, cog.SchoolYear, cog.Semester, cog.GWA, cog.FileURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cog.ID = uint64(id)
	return tx.Commit()
}

// ReplaceRegistration swaps the application's Certificate of Registration
// for the given record.
func (r *CertificateRepo) ReplaceRegistration(ctx context.Context, cor *model.CertificateOfRegistration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM certificates_of_registration WHERE application_id = ?", cor.ApplicationID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO certificates_of_registration (application_id, school_year, semester, student_number, units, file_url)
         VALUES (?, ?, ?, ?, ?, ?)`,
		cor.ApplicationID, cor.SchoolYear, cor.Semester, cor.StudentNumber, cor.Units, cor.FileURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cor.ID = uint64(id)
	return tx.Commit()
}

// GradesByApplication returns the Certificate of Grades for an application,
// or sql.ErrNoRows when none was submitted yet.
func (r *CertificateRepo) GradesByApplication(ctx context.Context, applicationID uint64) (model.CertificateOfGrades, error) {
	var cog model.CertificateOfGrades
	err := r.db.QueryRowContext(ctx,
		`SELECT id, application_id, school_year, semester, gwa, file_url, created_at
         FROM certificates_of_grades WHERE application_id = ? LIMIT 1`, applicationID).
		Scan(&cog.ID, &cog.ApplicationID, &cog.SchoolYear, &cog.Semester, &cog.GWA, &cog.FileURL, &cog.CreatedAt)
	return cog, err
}

// RegistrationByApplication returns the Certificate of Registration for an
// application, or sql.ErrNoRows when none was submitted yet.
func (r *CertificateRepo) RegistrationByApplication(ctx context.Context, applicationID uint64) (model.CertificateOfRegistration, error) {
	var cor model.CertificateOfRegistration
	err := r.db.QueryRowContext(ctx,
		`SELECT id, application_id, school_year, semester, student_number, units, file_url, created_at
         FROM certificates_of_registration WHERE application_id = ? LIMIT 1`, applicationID).
		Scan(&cor.ID, &cor.ApplicationID, &cor.SchoolYear, &cor.Semester, &cor.StudentNumber, &cor.Units, &cor.FileURL, &cor.CreatedAt)
	return cor, err
}
