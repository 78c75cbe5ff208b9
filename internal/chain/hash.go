// Package chain implements the blockchain attestation side channel: keccak256
// digests of business events are carried as payload in transactions sent to a
// burn address on a public test network.  Attestation is best-effort by
// contract; nothing in this package may block or fail a scholarship
// operation.
package chain

import (
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
)

// digest separator between concatenated fields.
const sep = "|"

// ApplicationDigest derives the deterministic attestation digest for an
// application submission from its stable identifying fields.  Identical
// inputs always produce an identical digest; changing any field changes it.
// The result is a 0x-prefixed 64-character hex string.
func ApplicationDigest(applicationID, userID uint64, ts time.Time) string {
	payload := strings.Join([]string{
		strconv.FormatUint(applicationID, 10),
		strconv.FormatUint(userID, 10),
		ts.UTC().Format(time.RFC3339),
	}, sep)
	return crypto.Keccak256Hash([]byte(payload)).Hex()
}

// AwardingDigest derives the attestation digest for a scholarship award.
func AwardingDigest(awardingID, applicationID, amountCents uint64, ts time.Time) string {
	payload := strings.Join([]string{
		strconv.FormatUint(awardingID, 10),
		strconv.FormatUint(applicationID, 10),
		strconv.FormatUint(amountCents, 10),
		ts.UTC().Format(time.RFC3339),
	}, sep)
	return crypto.Keccak256Hash([]byte(payload)).Hex()
}
