package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teyorkk/iskolarblock-sub001/internal/model"
	"github.com/teyorkk/iskolarblock-sub001/internal/repository"
)

// LedgerHandler exposes the append-only attestation ledger.  Each entry
// links the stored transaction hash to a public explorer page so auditors
// can verify the on-chain copy.
type LedgerHandler struct {
	Records  *repository.BlockchainRecordRepo
	Explorer string // e.g. https://sepolia.etherscan.io
}

func NewLedgerHandler(records *repository.BlockchainRecordRepo, explorer string) *LedgerHandler {
	return &LedgerHandler{Records: records, Explorer: strings.TrimRight(explorer, "/")}
}

type ledgerEntry struct {
	ID            uint64           `json:"id"`
	RecordType    model.RecordType `json:"record_type"`
	TxHash        string           `json:"tx_hash"`
	ExplorerURL   string           `json:"explorer_url,omitempty"`
	ApplicationID uint64           `json:"application_id"`
	AwardingID    *uint64          `json:"awarding_id,omitempty"`
	UserID        uint64           `json:"user_id"`
	CreatedAt     time.Time        `json:"created_at"`
}

// List handles GET /v1/admin/ledger with an optional limit query param.
func (h *LedgerHandler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	recs, err := h.Records.List(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	entries := make([]ledgerEntry, 0, len(recs))
	for _, rec := range recs {
		e := ledgerEntry{
			ID:            rec.ID,
			RecordType:    rec.RecordType,
			TxHash:        rec.TxHash,
			ApplicationID: rec.ApplicationID,
			AwardingID:    rec.AwardingID,
			UserID:        rec.UserID,
			CreatedAt:     rec.CreatedAt,
		}
		if h.Explorer != "" {
			e.ExplorerURL = h.Explorer + "/tx/" + rec.TxHash
		}
		entries = append(entries, e)
	}
	return c.JSON(http.StatusOK, echo.Map{"records": entries})
}
