package model

import (
	"errors"
	"strings"
	"time"
)

// ApplicationStatus represents the lifecycle of a scholarship application.
type ApplicationStatus string

// Possible application statuses.  REJECTED and GRANTED are terminal;
// applications are never hard-deleted in normal flow.
const (
	StatusPending  ApplicationStatus = "PENDING"
	StatusApproved ApplicationStatus = "APPROVED"
	StatusRejected ApplicationStatus = "REJECTED"
	StatusGranted  ApplicationStatus = "GRANTED"
)

// ApplicationType distinguishes first-time applicants from renewals.
type ApplicationType string

const (
	TypeNew     ApplicationType = "NEW"
	TypeRenewal ApplicationType = "RENEWAL"
)

// Application represents one scholarship submission as stored in the
// `applications` table.  Mutated by the owning user while PENDING
// (document completion) and by administrators (status transitions).
//
// Fields:
//
//	ID            – primary key identifier.
//	UserID        – submitting user.
//	PeriodID      – enrollment period the application belongs to.
//	Type          – NEW or RENEWAL.
//	Status        – lifecycle status.
//	PersonalInfo  – applicant details captured at submission.
//	IDDocumentURL – stored government/school ID file, nil when not yet uploaded.
//	Remarks       – administrator remarks set on approval/rejection.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Application struct {
	ID            uint64            // applications.id
	UserID        uint64            // applications.user_id
	PeriodID      uint64            // applications.period_id
	Type          ApplicationType   // applications.app_type
	Status        ApplicationStatus // applications.status
	PersonalInfo  PersonalInfo      // applications.personal_info (JSON column)
	IDDocumentURL *string           // applications.id_document_url (nullable)
	Remarks       *string           // applications.remarks (nullable)
	CreatedAt     time.Time         // applications.created_at
	UpdatedAt     time.Time         // applications.updated_at
}

// PersonalInfo is the validated form of the applicant details payload.
// The upstream clients send it as a JSON object; it is parsed into this
// struct at the request boundary instead of carrying an untyped map
// through the system.
type PersonalInfo struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
	Birthdate  string `json:"birthdate"` // YYYY-MM-DD
	Address    string `json:"address"`
	Barangay   string `json:"barangay"`
	Contact    string `json:"contact"`
	School     string `json:"school"`
	Course     string `json:"course"`
	YearLevel  string `json:"year_level"`
}

// Validate checks the required personal info fields.  Birthdate must be a
// calendar date; the remaining checks are presence-only since formats vary
// across schools.
func (p PersonalInfo) Validate() error {
	switch {
	case strings.TrimSpace(p.FirstName) == "":
		return errors.New("first_name is required")
	case strings.TrimSpace(p.LastName) == "":
		return errors.New("last_name is required")
	case strings.TrimSpace(p.Address) == "":
		return errors.New("address is required")
	case strings.TrimSpace(p.School) == "":
		return errors.New("school is required")
	case strings.TrimSpace(p.Course) == "":
		return errors.New("course is required")
	}
	if p.Birthdate != "" {
		if _, err := time.Parse("2006-01-02", p.Birthdate); err != nil {
			return errors.New("birthdate must be YYYY-MM-DD")
		}
	}
	return nil
}

// ParseApplicationType normalizes a raw type string, defaulting to NEW.
func ParseApplicationType(s string) ApplicationType {
	if strings.ToUpper(strings.TrimSpace(s)) == string(TypeRenewal) {
		return TypeRenewal
	}
	return TypeNew
}

// SubmissionStatus resolves the initial status of a submission from
// document completeness: an application arriving with its ID, Certificate
// of Grades and Certificate of Registration all present is approved
// outright, everything else starts as PENDING.
func SubmissionStatus(hasID, hasCOG, hasCOR bool) ApplicationStatus {
	if hasID && hasCOG && hasCOR {
		return StatusApproved
	}
	return StatusPending
}
