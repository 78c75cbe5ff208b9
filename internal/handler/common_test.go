package handler

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/teyorkk/iskolarblock-sub001/internal/model"
	"github.com/teyorkk/iskolarblock-sub001/internal/repository"
)

// stubAttester counts calls so tests can tie audit inserts to attestation
// outcomes.
type stubAttester struct {
	hash  string
	ok    bool
	calls int
	last  string
}

func (s *stubAttester) Attest(_ context.Context, digest string) (string, bool) {
	s.calls++
	s.last = digest
	return s.hash, s.ok
}

func newRecordRepo(t *testing.T) (*repository.BlockchainRecordRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return repository.NewBlockchainRecordRepo(db), mock, func() { db.Close() }
}

func TestRecordAttestationInsertsOnceOnHash(t *testing.T) {
	records, mock, done := newRecordRepo(t)
	defer done()

	at := &stubAttester{hash: "0xfeed", ok: true}
	mock.ExpectExec("INSERT INTO blockchain_records").
		WithArgs(string(model.RecordApplication), "0xfeed", 42, nil, 7).
		WillReturnResult(sqlmock.NewResult(1, 1))

	got := recordAttestation(context.Background(), at, records, "0xdigest", model.BlockchainRecord{
		RecordType:    model.RecordApplication,
		ApplicationID: 42,
		UserID:        7,
	})

	if got != "0xfeed" {
		t.Fatalf("tx hash = %q, want 0xfeed", got)
	}
	if at.calls != 1 {
		t.Fatalf("attest calls = %d, want 1", at.calls)
	}
	if at.last != "0xdigest" {
		t.Fatalf("attested digest = %q, want 0xdigest", at.last)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordAttestationNoHashNoInsert(t *testing.T) {
	records, mock, done := newRecordRepo(t)
	defer done()

	at := &stubAttester{} // attestation failed, ok=false
	got := recordAttestation(context.Background(), at, records, "0xdigest", model.BlockchainRecord{
		RecordType:    model.RecordAwarding,
		ApplicationID: 42,
		UserID:        7,
	})

	if got != "" {
		t.Fatalf("tx hash = %q, want empty", got)
	}
	if at.calls != 1 {
		t.Fatalf("attest calls = %d, want 1", at.calls)
	}
	// No ExpectExec was registered: any insert attempt fails the test.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordAttestationDisabled(t *testing.T) {
	records, mock, done := newRecordRepo(t)
	defer done()

	got := recordAttestation(context.Background(), nil, records, "0xdigest", model.BlockchainRecord{
		RecordType:    model.RecordApplication,
		ApplicationID: 42,
		UserID:        7,
	})

	if got != "" {
		t.Fatalf("tx hash = %q, want empty", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
