package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lgu-facilities/internal/domain/user"
	"lgu-facilities/internal/handler/api"
	"lgu-facilities/internal/handler/middleware"
	"lgu-facilities/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	facilityHandler *api.FacilityHandler,
	reservationHandler *api.ReservationHandler,
	adminHandler *api.AdminReservationHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, authHandler, facilityHandler, reservationHandler, adminHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	facilityHandler *api.FacilityHandler,
	reservationHandler *api.ReservationHandler,
	adminHandler *api.AdminReservationHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: authHandler.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: authHandler.Me},
			})
		}

		facilities := apiGroup.Group("/facilities")
		facilities.Use(authMiddleware.RequireAuth())
		{
			addRoutes(facilities, []route{
				{Method: http.MethodGet, Path: "", Handler: facilityHandler.ListFacilities},
				{Method: http.MethodGet, Path: "/:id", Handler: facilityHandler.GetFacility},
				{Method: http.MethodGet, Path: "/:id/availability", Handler: facilityHandler.CheckAvailability},
			})
		}

		reservations := apiGroup.Group("/reservations")
		reservations.Use(authMiddleware.RequireAuth())
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: reservationHandler.CreateReservation},
				{Method: http.MethodGet, Path: "", Handler: reservationHandler.GetUserReservations},
				{Method: http.MethodGet, Path: "/:id", Handler: reservationHandler.GetReservation},
				{Method: http.MethodPost, Path: "/:id/reschedule", Handler: reservationHandler.Reschedule},
			})
		}

		admin := apiGroup.Group("/admin/reservations")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleStaff))
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/queue", Handler: adminHandler.ReviewQueue},
				{Method: http.MethodPost, Path: "/:id/approve", Handler: adminHandler.Approve},
				{Method: http.MethodPost, Path: "/:id/deny", Handler: adminHandler.Deny},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: adminHandler.Cancel},
				{Method: http.MethodPost, Path: "/:id/modify", Handler: adminHandler.Modify},
				{Method: http.MethodPost, Path: "/:id/postpone", Handler: adminHandler.Postpone},
				{Method: http.MethodPost, Path: "/expire-overdue", Handler: adminHandler.ExpireOverdue},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
