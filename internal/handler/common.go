package handler

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teyorkk/iskolarblock-sub001/internal/model"
	"github.com/teyorkk/iskolarblock-sub001/internal/repository"
)

// dbTimeout bounds the duration of database work per request.
const dbTimeout = 5 * time.Second

// getUserID extracts the user_id claim from the echo context as uint64.
// JWT numeric claims decode as float64, so several representations are
// accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return n, err == nil
}

// Attester is the slice of the attestation service the handlers call.
// *chain.Attestor implements it; tests substitute a stub.
type Attester interface {
	Attest(ctx context.Context, digest string) (txHash string, ok bool)
}

// recordAttestation runs the best-effort attestation tail shared by the
// submission and awarding flows: compute nothing here, just submit the
// prepared digest, and on success append the audit record.  Every failure
// is logged and swallowed; the business row is already committed and must
// stay committed.  Returns the transaction hash ("" when attestation did
// not produce one).
func recordAttestation(ctx context.Context, attestor Attester, records *repository.BlockchainRecordRepo, digest string, rec model.BlockchainRecord) string {
	if attestor == nil {
		log.Printf("attest: skipped: no signer key configured")
		return ""
	}
	txHash, ok := attestor.Attest(ctx, digest)
	if !ok {
		return ""
	}
	rec.TxHash = txHash
	insertCtx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	if err := records.Insert(insertCtx, &rec); err != nil {
		log.Printf("attest: audit record insert failed for %s %s: %v", rec.RecordType, txHash, err)
	}
	return txHash
}
