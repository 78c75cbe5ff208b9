package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionStatus(t *testing.T) {
	cases := []struct {
		name            string
		hasID, cog, cor bool
		want            ApplicationStatus
	}{
		{"all documents", true, true, true, StatusApproved},
		{"missing id", false, true, true, StatusPending},
		{"missing grades", true, false, true, StatusPending},
		{"missing registration", true, true, false, StatusPending},
		{"nothing", false, false, false, StatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SubmissionStatus(tc.hasID, tc.cog, tc.cor))
		})
	}
}

func TestParseApplicationType(t *testing.T) {
	assert.Equal(t, TypeRenewal, ParseApplicationType(" renewal "))
	assert.Equal(t, TypeNew, ParseApplicationType("NEW"))
	assert.Equal(t, TypeNew, ParseApplicationType(""))
	assert.Equal(t, TypeNew, ParseApplicationType("garbage"))
}

func TestPersonalInfoValidate(t *testing.T) {
	valid := PersonalInfo{
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Birthdate: "2004-06-12",
		Address:   "123 Mabini St",
		School:    "PUP",
		Course:    "BSIT",
	}
	assert.NoError(t, valid.Validate())

	missingName := valid
	missingName.FirstName = "  "
	assert.Error(t, missingName.Validate())

	badDate := valid
	badDate.Birthdate = "12-06-2004"
	assert.Error(t, badDate.Validate())

	noDate := valid
	noDate.Birthdate = ""
	assert.NoError(t, noDate.Validate())
}

func TestPeriodAccepting(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	p := ApplicationPeriod{StartDate: start, EndDate: end, IsOpen: true}

	assert.True(t, p.Accepting(start))
	assert.True(t, p.Accepting(end))
	assert.True(t, p.Accepting(start.AddDate(0, 0, 10)))

	assert.False(t, p.Accepting(start.Add(-time.Second)))
	assert.False(t, p.Accepting(end.Add(time.Second)))

	closed := p
	closed.IsOpen = false
	assert.False(t, closed.Accepting(start.AddDate(0, 0, 10)))
}
