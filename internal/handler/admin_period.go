package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/teyorkk/iskolarblock-sub001/internal/model"
)

type periodReq struct {
	Name        string  `json:"name"`
	StartDate   string  `json:"start_date"` // YYYY-MM-DD
	EndDate     string  `json:"end_date"`   // YYYY-MM-DD
	IsOpen      bool    `json:"is_open"`
	BudgetCents *uint64 `json:"budget_cents"`
}

func (r periodReq) toModel() (model.ApplicationPeriod, string) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return model.ApplicationPeriod{}, "name is required"
	}
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return model.ApplicationPeriod{}, "start_date must be YYYY-MM-DD"
	}
	end, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return model.ApplicationPeriod{}, "end_date must be YYYY-MM-DD"
	}
	// End of day, so the last day stays inside the window.
	end = end.Add(24*time.Hour - time.Second)
	if end.Before(start) {
		return model.ApplicationPeriod{}, "end_date must not precede start_date"
	}
	return model.ApplicationPeriod{
		Name:        name,
		StartDate:   start.UTC(),
		EndDate:     end.UTC(),
		IsOpen:      r.IsOpen,
		BudgetCents: r.BudgetCents,
	}, ""
}

// CreatePeriod handles POST /v1/admin/periods.
func (h *AdminHandler) CreatePeriod(c echo.Context) error {
	var req periodReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Periods.Create(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create period failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPeriods handles GET /v1/admin/periods.
func (h *AdminHandler) ListPeriods(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	periods, err := h.Periods.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"periods": periods})
}

// UpdatePeriod handles PUT /v1/admin/periods/:id.  Closing a period here
// (is_open=false or a past end_date) makes its pending applications
// eligible for the next expiry sweep.
func (h *AdminHandler) UpdatePeriod(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid period id"})
	}
	var req periodReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	p.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Periods.Update(ctx, &p); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "period not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update period failed"})
	}
	updated, err := h.Periods.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, updated)
}
