package model

import "time"

// CertificateOfGrades is the satellite record holding academic fields
// extracted from the submitted grade report, one per application.
// Replaced wholesale (delete+insert) when the applicant re-uploads.
type CertificateOfGrades struct {
	ID            uint64    // certificates_of_grades.id
	ApplicationID uint64    // certificates_of_grades.application_id
	SchoolYear    string    // certificates_of_grades.school_year (e.g. "2024-2025")
	Semester      string    // certificates_of_grades.semester
	GWA           string    // certificates_of_grades.gwa (general weighted average, kept as text)
	FileURL       string    // certificates_of_grades.file_url
	CreatedAt     time.Time // certificates_of_grades.created_at
}

// CertificateOfRegistration holds enrollment fields extracted from the
// submitted registration form, one per application.  Same replace-on-edit
// behavior as CertificateOfGrades.
type CertificateOfRegistration struct {
	ID            uint64    // certificates_of_registration.id
	ApplicationID uint64    // certificates_of_registration.application_id
	SchoolYear    string    // certificates_of_registration.school_year
	Semester      string    // certificates_of_registration.semester
	StudentNumber string    // certificates_of_registration.student_number
	Units         string    // certificates_of_registration.units
	FileURL       string    // certificates_of_registration.file_url
	CreatedAt     time.Time // certificates_of_registration.created_at
}
