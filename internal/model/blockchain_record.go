package model

import "time"

// RecordType tags a BlockchainRecord with the business event it attests.
type RecordType string

const (
	RecordApplication RecordType = "APPLICATION"
	RecordAwarding    RecordType = "AWARDING"
)

// BlockchainRecord represents one successful attestation: a keccak256
// digest of business fields sent as payload to a burn address on the test
// network.  Rows are append-only and the transaction hash is never
// mutated; one row exists per attestation attempt that obtained a hash.
//
// AwardingID is set only for AWARDING records; ApplicationID is set for
// both types so ledger views can group by application.
type BlockchainRecord struct {
	ID            uint64     // blockchain_records.id
	RecordType    RecordType // blockchain_records.record_type
	TxHash        string     // blockchain_records.tx_hash
	ApplicationID uint64     // blockchain_records.application_id
	AwardingID    *uint64    // blockchain_records.awarding_id (nullable)
	UserID        uint64     // blockchain_records.user_id
	CreatedAt     time.Time  // blockchain_records.created_at
}
