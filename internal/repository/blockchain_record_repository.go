package repository

import (
	"context"
	"database/sql"

	"github.com/teyorkk/iskolarblock-sub001/internal/model"
)

// BlockchainRecordRepo is the audit record writer: each row ties a
// confirmed attestation transaction hash back to the application or
// awarding it attests.  The table is append-only; no update or delete
// statements exist here, so a stored hash is never mutated.  Inserts are
// attempted only after attestation returned a hash, and callers log and
// swallow insert failures since the business write is already committed.
type BlockchainRecordRepo struct {
	db *sql.DB
}

func NewBlockchainRecordRepo(db *sql.DB) *BlockchainRecordRepo {
	return &BlockchainRecordRepo{db: db}
}

// Insert appends one audit record and populates the generated ID.
func (r *BlockchainRecordRepo) Insert(ctx context.Context, rec *model.BlockchainRecord) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO blockchain_records (record_type, tx_hash, application_id, awarding_id, user_id)
         VALUES (?, ?, ?, ?, ?)`,
		rec.RecordType, rec.TxHash, rec.ApplicationID, rec.AwardingID, rec.UserID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

const recordColumns = "id, record_type, tx_hash, application_id, awarding_id, user_id, created_at"

// List returns the most recent records for the ledger view.
func (r *BlockchainRecordRepo) List(ctx context.Context, limit int) ([]model.BlockchainRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM blockchain_records ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListByApplication returns every record attesting the given application.
func (r *BlockchainRecordRepo) ListByApplication(ctx context.Context, applicationID uint64) ([]model.BlockchainRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM blockchain_records WHERE application_id = ? ORDER BY created_at ASC",
		applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]model.BlockchainRecord, error) {
	recs := []model.BlockchainRecord{}
	for rows.Next() {
		var (
			rec      model.BlockchainRecord
			awarding sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.RecordType, &rec.TxHash, &rec.ApplicationID,
			&awarding, &rec.UserID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if awarding.Valid {
			v := uint64(awarding.Int64)
			rec.AwardingID = &v
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}
