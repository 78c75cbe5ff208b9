package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teyorkk/iskolarblock-sub001/internal/chain"
	"github.com/teyorkk/iskolarblock-sub001/internal/model"
	"github.com/teyorkk/iskolarblock-sub001/internal/queue"
	"github.com/teyorkk/iskolarblock-sub001/internal/repository"
	queue_publisher "github.com/teyorkk/iskolarblock-sub001/internal/service"
	"github.com/teyorkk/iskolarblock-sub001/internal/storage"
)

// maxDocumentBytes caps one uploaded document (8 MiB).
const maxDocumentBytes = 8 << 20

// ApplicantHandler serves the endpoints applicants use to submit and track
// their scholarship applications.
type ApplicantHandler struct {
	Apps     *repository.ApplicationRepo
	Certs    *repository.CertificateRepo
	Periods  *repository.PeriodRepo
	Records  *repository.BlockchainRecordRepo
	Uploads  storage.Uploader
	Attestor Attester // nil when attestation is disabled
}

func NewApplicantHandler(apps *repository.ApplicationRepo, certs *repository.CertificateRepo,
	periods *repository.PeriodRepo, records *repository.BlockchainRecordRepo,
	uploads storage.Uploader, attestor *chain.Attestor) *ApplicantHandler {
	h := &ApplicantHandler{Apps: apps, Certs: certs, Periods: periods,
		Records: records, Uploads: uploads}
	// A nil pointer must stay a nil interface for the disabled check.
	if attestor != nil {
		h.Attestor = attestor
	}
	return h
}

// uploadedDoc is one file pulled out of the multipart form.
type uploadedDoc struct {
	name string
	data []byte
}

// formFile reads an optional multipart file field into memory.
func formFile(c echo.Context, field string) (*uploadedDoc, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil // field absent
	}
	if fh.Size > maxDocumentBytes {
		return nil, errors.New(field + " exceeds the size limit")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxDocumentBytes))
	if err != nil {
		return nil, err
	}
	return &uploadedDoc{name: fh.Filename, data: data}, nil
}

// applicationResp is the JSON shape returned for an application.
type applicationResp struct {
	ID            uint64                  `json:"id"`
	PeriodID      uint64                  `json:"period_id"`
	Type          model.ApplicationType   `json:"type"`
	Status        model.ApplicationStatus `json:"status"`
	PersonalInfo  model.PersonalInfo      `json:"personal_info"`
	IDDocumentURL *string                 `json:"id_document_url,omitempty"`
	Remarks       *string                 `json:"remarks,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

func toApplicationResp(app model.Application) applicationResp {
	return applicationResp{
		ID: app.ID, PeriodID: app.PeriodID, Type: app.Type, Status: app.Status,
		PersonalInfo: app.PersonalInfo, IDDocumentURL: app.IDDocumentURL,
		Remarks: app.Remarks, CreatedAt: app.CreatedAt, UpdatedAt: app.UpdatedAt,
	}
}

// Submit handles POST /v1/applications (multipart form).  Expected fields:
// application_type, personal_info (JSON object), the optional files
// id_document, cog_document, cor_document and the extracted certificate
// fields (cog_school_year, cog_semester, cog_gwa, cor_school_year,
// cor_semester, cor_student_number, cor_units).  A submission arriving
// with all three documents is approved outright, else it starts PENDING.
// Attestation and the audit record run after the database write and never
// fail the request.
func (h *ApplicantHandler) Submit(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var info model.PersonalInfo
	if raw := c.FormValue("personal_info"); raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "personal_info is required"})
	} else if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "personal_info must be a JSON object"})
	}
	if err := info.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	appType := model.ParseApplicationType(c.FormValue("application_type"))

	idDoc, err := formFile(c, "id_document")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	cogDoc, err := formFile(c, "cog_document")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	corDoc, err := formFile(c, "cor_document")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	now := time.Now().UTC()

	period, err := h.Periods.CurrentOpen(ctx, now)
	if err != nil {
		if errors.Is(err, repository.ErrPeriodClosed) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no open application period"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "period lookup failed"})
	}

	app := model.Application{
		UserID:       uid,
		PeriodID:     period.ID,
		Type:         appType,
		Status:       model.SubmissionStatus(idDoc != nil, cogDoc != nil, corDoc != nil),
		PersonalInfo: info,
	}

	if idDoc != nil {
		url, err := h.Uploads.Upload(ctx, idDoc.name, idDoc.data)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store id document failed"})
		}
		app.IDDocumentURL = &url
	}

	if err := h.Apps.Create(ctx, &app); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create application failed"})
	}

	if cogDoc != nil {
		if err := h.storeGrades(ctx, c, app.ID, cogDoc); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store certificate of grades failed"})
		}
	}
	if corDoc != nil {
		if err := h.storeRegistration(ctx, c, app.ID, corDoc); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store certificate of registration failed"})
		}
	}

	// Best-effort tail: the submission above is committed whatever happens
	// from here on.
	digest := chain.ApplicationDigest(app.ID, uid, now)
	txHash := recordAttestation(c.Request().Context(), h.Attestor, h.Records, digest, model.BlockchainRecord{
		RecordType:    model.RecordApplication,
		ApplicationID: app.ID,
		UserID:        uid,
	})
	publishStatus(app, 0, txHash, now)

	return c.JSON(http.StatusCreated, toApplicationResp(app))
}

func (h *ApplicantHandler) storeGrades(ctx context.Context, c echo.Context, appID uint64, doc *uploadedDoc) error {
	url, err := h.Uploads.Upload(ctx, doc.name, doc.data)
	if err != nil {
		return err
	}
	return h.Certs.ReplaceGrades(ctx, &model.CertificateOfGrades{
		ApplicationID: appID,
		SchoolYear:    strings.TrimSpace(c.FormValue("cog_school_year")),
		Semester:      strings.TrimSpace(c.FormValue("cog_semester")),
		GWA:           strings.TrimSpace(c.FormValue("cog_gwa")),
		FileURL:       url,
	})
}

func (h *ApplicantHandler) storeRegistration(ctx context.Context, c echo.Context, appID uint64, doc *uploadedDoc) error {
	url, err := h.Uploads.Upload(ctx, doc.name, doc.data)
	if err != nil {
		return err
	}
	return h.Certs.ReplaceRegistration(ctx, &model.CertificateOfRegistration{
		ApplicationID: appID,
		SchoolYear:    strings.TrimSpace(c.FormValue("cor_school_year")),
		Semester:      strings.TrimSpace(c.FormValue("cor_semester")),
		StudentNumber: strings.TrimSpace(c.FormValue("cor_student_number")),
		Units:         strings.TrimSpace(c.FormValue("cor_units")),
		FileURL:       url,
	})
}

// Mine handles GET /v1/applications/mine, listing the caller's applications.
func (h *ApplicantHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	apps, err := h.Apps.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]applicationResp, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationResp(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": out})
}

// Get handles GET /v1/applications/:id, owner-scoped.
func (h *ApplicantHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	app, err := h.Apps.GetByIDForUser(ctx, id, uid)
	if err != nil {
		switch {
		case err == sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toApplicationResp(app))
}

// CompleteDocuments handles PUT /v1/applications/:id/documents.  Allowed
// only while the application is PENDING; uploaded certificates replace any
// existing ones (delete+insert).  Once all three documents are present the
// application flips to APPROVED.  No re-attestation happens here; the
// submission was already attested.
func (h *ApplicantHandler) CompleteDocuments(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	app, err := h.Apps.GetByIDForUser(ctx, id, uid)
	if err != nil {
		switch {
		case err == sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if app.Status != model.StatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "documents can only be completed while pending"})
	}

	idDoc, err := formFile(c, "id_document")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	cogDoc, err := formFile(c, "cog_document")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	corDoc, err := formFile(c, "cor_document")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if idDoc == nil && cogDoc == nil && corDoc == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no documents provided"})
	}

	now := time.Now().UTC()
	if idDoc != nil {
		url, err := h.Uploads.Upload(ctx, idDoc.name, idDoc.data)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store id document failed"})
		}
		if err := h.Apps.SetIDDocument(ctx, app.ID, url, now); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update application failed"})
		}
		app.IDDocumentURL = &url
	}
	if cogDoc != nil {
		if err := h.storeGrades(ctx, c, app.ID, cogDoc); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store certificate of grades failed"})
		}
	}
	if corDoc != nil {
		if err := h.storeRegistration(ctx, c, app.ID, corDoc); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store certificate of registration failed"})
		}
	}

	hasCOG := cogDoc != nil
	if !hasCOG {
		_, err := h.Certs.GradesByApplication(ctx, app.ID)
		hasCOG = err == nil
	}
	hasCOR := corDoc != nil
	if !hasCOR {
		_, err := h.Certs.RegistrationByApplication(ctx, app.ID)
		hasCOR = err == nil
	}

	if model.SubmissionStatus(app.IDDocumentURL != nil, hasCOG, hasCOR) == model.StatusApproved {
		if err := h.Apps.UpdateStatus(ctx, app.ID, model.StatusPending, model.StatusApproved, nil, now); err != nil {
			log.Printf("applications: auto-approve after completion failed for id=%d: %v", app.ID, err)
		} else {
			app.Status = model.StatusApproved
			publishStatus(app, 0, "", now)
		}
	}

	got, err := h.Apps.GetByID(ctx, app.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toApplicationResp(got))
}

// publishStatus emits the status event with a short standalone context so
// broker slowness cannot hold the HTTP response.  Failures are already
// logged by the publisher and are ignored here.
func publishStatus(app model.Application, amountCents uint64, txHash string, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	_ = queue_publisher.PublishApplicationStatus(ctx, queue.ApplicationStatusEvent{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		PeriodID:      app.PeriodID,
		Type:          string(app.Type),
		Status:        string(app.Status),
		Remarks:       deref(app.Remarks),
		AmountCents:   amountCents,
		TxHash:        txHash,
		OccurredAt:    now.Format(time.RFC3339),
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
