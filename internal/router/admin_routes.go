package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/teyorkk/iskolarblock-sub001/internal/config"
	"github.com/teyorkk/iskolarblock-sub001/internal/handler"
	"github.com/teyorkk/iskolarblock-sub001/internal/middleware"
	"github.com/teyorkk/iskolarblock-sub001/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.  All
// routes require a valid JWT and the ADMIN role.  Admins screen
// applications, manage enrollment periods, grant awards and inspect the
// attestation ledger.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, l *handler.LedgerHandler, cfg config.Config, rdb *redis.Client) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Applications ----
	g.GET("/applications", h.List)
	g.GET("/applications/:id", h.Get)
	g.PUT("/applications/:id/status", h.UpdateStatus)
	g.POST("/applications/:id/award", h.Award)

	// ---- Periods ----
	g.POST("/periods", h.CreatePeriod)
	g.GET("/periods", h.ListPeriods)
	g.PUT("/periods/:id", h.UpdatePeriod)

	// ---- Ledger ----
	// The ledger is append-only and read-heavy, so its listing sits
	// behind the Redis response cache.
	g.GET("/ledger", l.List, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
}
