package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/teyorkk/iskolarblock-sub001/internal/model"
)

func TestBlockchainRecordInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewBlockchainRecordRepo(db)

	rec := model.BlockchainRecord{
		RecordType:    model.RecordApplication,
		TxHash:        "0xabc123",
		ApplicationID: 42,
		UserID:        7,
	}
	mock.ExpectExec("INSERT INTO blockchain_records").
		WithArgs(string(model.RecordApplication), "0xabc123", 42, nil, 7).
		WillReturnResult(sqlmock.NewResult(11, 1))

	if err := repo.Insert(context.Background(), &rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if rec.ID != 11 {
		t.Fatalf("ID = %d, want 11", rec.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBlockchainRecordListClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewBlockchainRecordRepo(db)

	now := time.Now().UTC()
	cols := []string{"id", "record_type", "tx_hash", "application_id", "awarding_id", "user_id", "created_at"}
	mock.ExpectQuery("SELECT (.+) FROM blockchain_records ORDER BY created_at DESC LIMIT ").
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "APPLICATION", "0xaa", 42, nil, 7, now).
			AddRow(2, "AWARDING", "0xbb", 42, 3, 7, now))

	recs, err := repo.List(context.Background(), -5)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if recs[1].AwardingID == nil || *recs[1].AwardingID != 3 {
		t.Fatalf("awarding id not scanned: %+v", recs[1])
	}
}
