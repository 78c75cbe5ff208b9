package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teyorkk/iskolarblock-sub001/internal/chain"
	"github.com/teyorkk/iskolarblock-sub001/internal/model"
	"github.com/teyorkk/iskolarblock-sub001/internal/repository"
)

// AdminHandler serves the screening, awarding and period-management
// endpoints used by administrators.
type AdminHandler struct {
	Apps     *repository.ApplicationRepo
	Certs    *repository.CertificateRepo
	Periods  *repository.PeriodRepo
	Awards   *repository.AwardingRepo
	Records  *repository.BlockchainRecordRepo
	Attestor Attester // nil when attestation is disabled
}

func NewAdminHandler(apps *repository.ApplicationRepo, certs *repository.CertificateRepo,
	periods *repository.PeriodRepo, awards *repository.AwardingRepo,
	records *repository.BlockchainRecordRepo, attestor *chain.Attestor) *AdminHandler {
	h := &AdminHandler{Apps: apps, Certs: certs, Periods: periods,
		Awards: awards, Records: records}
	// A nil pointer must stay a nil interface for the disabled check.
	if attestor != nil {
		h.Attestor = attestor
	}
	return h
}

// sweepStale runs the opportunistic expiry sweep.  Stale PENDING
// applications whose period has closed become REJECTED.  Any error is
// logged and swallowed; the caller's read proceeds regardless.
func (h *AdminHandler) sweepStale(ctx context.Context) {
	n, err := h.Apps.ExpireStale(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("expiry: sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("expiry: rejected %d stale pending applications", n)
	}
}

// List handles GET /v1/admin/applications with optional status, type and
// period_id query filters.  The expiry sweep runs first so listings never
// show pending applications whose period has already closed.
func (h *AdminHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	h.sweepStale(ctx)

	filter := repository.ApplicationFilter{}
	if s := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); s != "" {
		filter.Status = model.ApplicationStatus(s)
	}
	if t := strings.ToUpper(strings.TrimSpace(c.QueryParam("type"))); t != "" {
		filter.Type = model.ApplicationType(t)
	}
	if p := c.QueryParam("period_id"); p != "" {
		if n, err := strconv.ParseUint(p, 10, 64); err == nil {
			filter.PeriodID = n
		}
	}

	apps, err := h.Apps.List(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]applicationResp, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationResp(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": out})
}

// adminApplicationResp extends the applicant view with certificates,
// awarding and blockchain records for the screening detail page.
type adminApplicationResp struct {
	applicationResp
	UserID       uint64                           `json:"user_id"`
	Grades       *model.CertificateOfGrades       `json:"certificate_of_grades,omitempty"`
	Registration *model.CertificateOfRegistration `json:"certificate_of_registration,omitempty"`
	Awarding     *model.Awarding                  `json:"awarding,omitempty"`
	ChainRecords []model.BlockchainRecord         `json:"blockchain_records"`
}

// Get handles GET /v1/admin/applications/:id.  The expiry sweep runs
// first, so a stale pending application is reported as REJECTED here.
func (h *AdminHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	h.sweepStale(ctx)

	app, err := h.Apps.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	resp := adminApplicationResp{applicationResp: toApplicationResp(app), UserID: app.UserID}
	if cog, err := h.Certs.GradesByApplication(ctx, id); err == nil {
		resp.Grades = &cog
	}
	if cor, err := h.Certs.RegistrationByApplication(ctx, id); err == nil {
		resp.Registration = &cor
	}
	if award, err := h.Awards.GetByApplication(ctx, id); err == nil {
		resp.Awarding = &award
	}
	recs, err := h.Records.ListByApplication(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	resp.ChainRecords = recs
	return c.JSON(http.StatusOK, resp)
}

type statusReq struct {
	Action  string `json:"action"` // APPROVE | REJECT
	Remarks string `json:"remarks"`
}

// UpdateStatus handles PUT /v1/admin/applications/:id/status.  Only
// PENDING applications can be approved or rejected; anything else is a
// transition conflict.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var target model.ApplicationStatus
	switch strings.ToUpper(strings.TrimSpace(req.Action)) {
	case "APPROVE":
		target = model.StatusApproved
	case "REJECT":
		target = model.StatusRejected
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be APPROVE or REJECT"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	now := time.Now().UTC()

	var remarks *string
	if r := strings.TrimSpace(req.Remarks); r != "" {
		remarks = &r
	}
	if err := h.Apps.UpdateStatus(ctx, id, model.StatusPending, target, remarks, now); err != nil {
		switch {
		case err == sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
		case errors.Is(err, repository.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "application is not pending"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	app, err := h.Apps.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	publishStatus(app, 0, "", now)
	return c.JSON(http.StatusOK, toApplicationResp(app))
}

type awardReq struct {
	AmountCents uint64 `json:"amount_cents"`
	Remarks     string `json:"remarks"`
}

// Award handles POST /v1/admin/applications/:id/award: creates the
// awarding row for an APPROVED application, flips it to GRANTED, then runs
// the best-effort attestation tail with the AWARDING digest.
func (h *AdminHandler) Award(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	var req awardReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AmountCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount_cents must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	now := time.Now().UTC()

	app, err := h.Apps.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if app.Status != model.StatusApproved {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only approved applications can be awarded"})
	}

	var remarks *string
	if r := strings.TrimSpace(req.Remarks); r != "" {
		remarks = &r
	}
	award := model.Awarding{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		GrantedBy:     adminID,
		AmountCents:   req.AmountCents,
		Remarks:       remarks,
	}
	if err := h.Awards.Create(ctx, &award); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "application already awarded"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create awarding failed"})
	}
	if err := h.Apps.UpdateStatus(ctx, app.ID, model.StatusApproved, model.StatusGranted, nil, now); err != nil {
		// The award row exists; report the inconsistent flip but do not
		// undo the grant.
		log.Printf("awarding: status flip to GRANTED failed for application=%d: %v", app.ID, err)
	} else {
		app.Status = model.StatusGranted
	}

	digest := chain.AwardingDigest(award.ID, app.ID, award.AmountCents, now)
	txHash := recordAttestation(c.Request().Context(), h.Attestor, h.Records, digest, model.BlockchainRecord{
		RecordType:    model.RecordAwarding,
		ApplicationID: app.ID,
		AwardingID:    &award.ID,
		UserID:        app.UserID,
	})
	publishStatus(app, award.AmountCents, txHash, now)

	return c.JSON(http.StatusCreated, echo.Map{
		"awarding":    award,
		"application": toApplicationResp(app),
		"tx_hash":     txHash,
	})
}
