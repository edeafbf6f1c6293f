package handlers

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/middleware"
	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/utils"
)

const healthTimeout = 2 * time.Second

// RegisterRoutes mounts the API under /api, behind limiter, plus /health.
func (h *Handler) RegisterRoutes(r *gin.Engine, limiter gin.HandlerFunc) {
	r.GET("/health", h.Health)

	auth := middleware.AuthMiddleware()
	admins := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
	superadmin := middleware.RequireRoles(models.RoleSuperAdmin)

	api := r.Group("/api")
	if limiter != nil {
		api.Use(limiter)
	}

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.RegisterUser)
		authRoutes.POST("/login", h.Login)
		authRoutes.GET("/me", auth, h.GetCurrentUser)
		authRoutes.PUT("/profile", auth, h.UpdateProfile)
	}

	hospitals := api.Group("/hospitals")
	{
		hospitals.GET("", h.ListHospitals)
		hospitals.GET("/search/:specialty", h.SearchHospitals)
		hospitals.GET("/:id", h.GetHospital)
		hospitals.POST("", auth, admins, h.CreateHospital)
		hospitals.PUT("/:id", auth, admins, h.UpdateHospital)
		hospitals.DELETE("/:id", auth, superadmin, h.DeleteHospital)
	}

	doctors := api.Group("/doctors")
	{
		doctorsOrAdmins := middleware.RequireRoles(models.RoleDoctor, models.RoleAdmin, models.RoleSuperAdmin)

		doctors.GET("", h.ListDoctors)
		doctors.GET("/search/:specialty", h.SearchDoctors)
		doctors.GET("/hospital/:hospitalId", h.DoctorsByHospital)
		doctors.GET("/:id", h.GetDoctor)
		doctors.POST("", auth, admins, h.CreateDoctor)
		doctors.PUT("/:id", auth, doctorsOrAdmins, h.UpdateDoctor)
		doctors.PUT("/:id/slots", auth, doctorsOrAdmins, h.UpdateSlots)
		doctors.DELETE("/:id", auth, superadmin, h.DeleteDoctor)
	}

	booking := api.Group("/booking", auth)
	{
		booking.POST("", h.CreateBooking)
		booking.GET("/my-bookings", h.MyBookings)
		booking.GET("/admin/all", admins, h.AllBookings)
		booking.GET("/:id", h.GetBooking)
		booking.PUT("/:id/cancel", h.CancelBooking)
		booking.PUT("/:id/status", admins, h.UpdateBookingStatus)
	}

	payment := api.Group("/payment")
	{
		payment.GET("/telebirr-info", h.TelebirrInfo)
		payment.POST("/upload", auth, h.UploadReceipt)
		payment.PUT("/verify/:bookingId", auth, admins, h.VerifyPayment)
		payment.GET("/pending", auth, admins, h.PendingPayments)
		payment.GET("/receipts/:name", auth, admins, h.Receipt)
	}

	ai := api.Group("/ai")
	{
		ai.POST("/chat", h.Chat)
		ai.POST("/suggest-doctors", h.SuggestDoctors)
	}

	admin := api.Group("/admin", auth)
	{
		admin.GET("/stats", admins, h.Stats)
		admin.GET("/users", admins, h.Users)
		admin.PUT("/users/:id/role", superadmin, h.UpdateUserRole)
		admin.GET("/bookings", admins, h.Bookings)
		admin.POST("/seed", superadmin, h.Seed)
	}
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		h.Log.Warn("health check failed", zap.Error(err))
		utils.Fail(c, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// ClientFallback answers unmatched routes. API paths get a JSON 404; any
// other path is served from staticDir, falling back to index.html so the
// client-side router can take over.
func ClientFallback(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/api" || strings.HasPrefix(p, "/api/") || staticDir == "" ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			utils.Fail(c, http.StatusNotFound, "Route not found")
			return
		}

		file := filepath.Join(staticDir, filepath.FromSlash(path.Clean("/"+p)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			utils.Fail(c, http.StatusNotFound, "Route not found")
			return
		}
		c.File(index)
	}
}
