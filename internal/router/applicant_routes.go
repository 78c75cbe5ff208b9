package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/teyorkk/iskolarblock-sub001/internal/config"
	"github.com/teyorkk/iskolarblock-sub001/internal/handler"
	"github.com/teyorkk/iskolarblock-sub001/internal/middleware"
	"github.com/teyorkk/iskolarblock-sub001/internal/model"
)

// RegisterApplicant registers applicant-scoped endpoints under /v1.  All
// routes require a valid JWT and the USER role.  Applicants can submit an
// application during an open period, complete missing documents on a
// pending one, and view their own applications.
func RegisterApplicant(e *echo.Echo, h *handler.ApplicantHandler, cfg config.Config, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleUser),
	)
	// Submission is rate limited per user so a misbehaving client cannot
	// flood the uploads directory or the attestation wallet.
	g.POST("/applications", h.Submit,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	g.GET("/applications/mine", h.Mine)
	g.GET("/applications/:id", h.Get)
	g.PUT("/applications/:id/documents", h.CompleteDocuments)
}
