package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	"github.com/BruksfildServices01/hospital-device-booking/internal/auth"
	"github.com/BruksfildServices01/hospital-device-booking/internal/cache"
	"github.com/BruksfildServices01/hospital-device-booking/internal/config"
	"github.com/BruksfildServices01/hospital-device-booking/internal/domain/user"
	"github.com/BruksfildServices01/hospital-device-booking/internal/handlers"
	infraRepo "github.com/BruksfildServices01/hospital-device-booking/internal/infra/repository"
	"github.com/BruksfildServices01/hospital-device-booking/internal/middleware"
	ucBooking "github.com/BruksfildServices01/hospital-device-booking/internal/usecase/booking"
)

const (
	nsDevices  = "devices"
	nsBookings = "bookings"
)

type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Audit   audit.Recorder
	Cache   *cache.ResponseCache
	Limiter *middleware.RateLimiter
}

func viewerKey(c *gin.Context) string {
	return fmt.Sprintf("%s:%d", middleware.CurrentRole(c), middleware.CurrentUserID(c))
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	db := d.DB
	dev := cfg.IsDev()

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	format := audit.NewFormatter(audit.DefaultLabels(), audit.DefaultLocale)

	// ======================================================
	// USE CASES — BOOKINGS
	// ======================================================
	bookingUC := handlers.BookingUseCases{
		Create:  ucBooking.NewCreateBooking(bookingRepo, d.Audit, format, cfg.Timezone, cfg.PriorityOverride),
		Decide:  ucBooking.NewDecideBooking(bookingRepo, d.Audit, format),
		Request: ucBooking.NewRequestEdit(bookingRepo, d.Audit),
		Resolve: ucBooking.NewResolveEditRequest(bookingRepo, d.Audit),
		Update:  ucBooking.NewUpdateBooking(bookingRepo, d.Audit, format, cfg.Timezone, cfg.PriorityOverride),
		Get:     ucBooking.NewGetBooking(bookingRepo),
		List:    ucBooking.NewListBookings(bookingRepo),

		Complete: ucBooking.NewCompleteBooking(bookingRepo, d.Audit, format, cfg.Timezone),
		Schedule: ucBooking.NewDeviceSchedule(bookingRepo, cfg.Timezone),
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg, issuer, d.Audit, format)
	meHandler := handlers.NewMeHandler(db, d.Audit, format, dev)
	userHandler := handlers.NewUserHandler(db, d.Audit, format, cfg.PublicBaseURL, dev)
	deviceHandler := handlers.NewDeviceHandler(db, d.Audit, format, cfg.PublicBaseURL, dev)
	bookingHandler := handlers.NewBookingHandler(bookingUC, cfg.PublicBaseURL, dev)
	auditLogsHandler := handlers.NewAuditLogsHandler(db, cfg.PublicBaseURL, dev)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")

	requireAuth := middleware.AuthMiddleware(issuer)
	adminOnly := middleware.RequireRoles(user.RoleAdmin)
	moderators := middleware.RequireRoles(user.RoleAdmin, user.RoleApprover)
	bookers := middleware.RequireRoles(user.RoleAdmin, user.RoleUser)

	// user names are copied onto bookings
	bustBookings := d.Cache.Invalidates(nsBookings)

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if d.Limiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{d.Limiter.Middleware(), h}
	}

	// ------------------------------
	// AUTH
	// ------------------------------
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", limited(authHandler.Register)...)
		authGroup.POST("/login", limited(authHandler.Login)...)
		authGroup.POST("/refresh-token", limited(authHandler.Refresh)...)
		authGroup.POST("/logout", authHandler.Logout)

		authGroup.GET("/profile", requireAuth, meHandler.GetMe)
		authGroup.PUT("/profile", requireAuth, bustBookings, meHandler.UpdateMe)
		authGroup.PUT("/password", requireAuth, meHandler.ChangePassword)
	}

	// ------------------------------
	// USERS (admin)
	// ------------------------------
	users := api.Group("/users", requireAuth, adminOnly)
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id", bustBookings, userHandler.Update)
		users.DELETE("/:id", bustBookings, userHandler.Delete)
		users.POST("/:id/reset-password", userHandler.ResetPassword)
	}

	// ------------------------------
	// DEVICES
	// ------------------------------
	devices := api.Group("/devices", requireAuth)
	{
		cached := d.Cache.Middleware(nsDevices, viewerKey)
		// device names are copied onto bookings
		bust := d.Cache.Invalidates(nsDevices, nsBookings)

		devices.GET("", cached, deviceHandler.List)
		devices.GET("/:id", cached, deviceHandler.Get)
		devices.POST("", adminOnly, bust, deviceHandler.Create)
		devices.PUT("/:id", adminOnly, bust, deviceHandler.Update)
		devices.DELETE("/:id", adminOnly, bust, deviceHandler.Delete)
	}

	// ------------------------------
	// DEVICE BOOKINGS
	// ------------------------------
	bookings := api.Group("/device-bookings", requireAuth)
	{
		cached := d.Cache.Middleware(nsBookings, viewerKey)
		bust := d.Cache.Invalidates(nsBookings)

		bookings.POST("", bookers, bust, bookingHandler.Create)
		bookings.GET("", moderators, cached, bookingHandler.List)
		bookings.GET("/mine", cached, bookingHandler.ListMine)
		bookings.GET("/devices/:deviceId", cached, bookingHandler.ListForDevice)
		bookings.GET("/devices/:deviceId/schedule", cached, bookingHandler.Schedule)
		bookings.GET("/users/:userId", cached, bookingHandler.ListForUser)
		bookings.GET("/:id", cached, bookingHandler.Get)
		bookings.PUT("/:id", bust, bookingHandler.Update)
		bookings.PUT("/:id/status", moderators, bust, bookingHandler.Decide)
		bookings.PUT("/:id/complete", moderators, bust, bookingHandler.Complete)
		bookings.POST("/:id/edit-request", bust, bookingHandler.RequestEdit)
		bookings.PUT("/:id/edit-request", moderators, bust, bookingHandler.ResolveEditRequest)
	}

	// ------------------------------
	// AUDITS (admin)
	// ------------------------------
	audits := api.Group("/audits", requireAuth, adminOnly)
	{
		audits.GET("", auditLogsHandler.List)
		audits.GET("/:id", auditLogsHandler.Get)
	}
}
