package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/services"
	"github.com/tenaflow/tena-api/internal/utils"
)

const adminBookingsLimit = 100

// Stats reports the dashboard counters.
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	counters := []struct {
		key   string
		count func(context.Context) (int64, error)
	}{
		{"totalUsers", func(ctx context.Context) (int64, error) { return h.Store.CountUsers(ctx, "") }},
		{"totalHospitals", h.Store.CountHospitals},
		{"totalDoctors", h.Store.CountDoctors},
		{"totalBookings", func(ctx context.Context) (int64, error) {
			return h.Store.CountBookings(ctx, models.BookingFilter{})
		}},
		{"pendingPayments", func(ctx context.Context) (int64, error) {
			return h.Store.CountBookings(ctx, models.BookingFilter{PaymentStatus: models.PaymentPaid})
		}},
		{"confirmedBookings", func(ctx context.Context) (int64, error) {
			return h.Store.CountBookings(ctx, models.BookingFilter{Status: models.StatusConfirmed})
		}},
	}

	stats := make(gin.H, len(counters))
	for _, ctr := range counters {
		n, err := ctr.count(ctx)
		if err != nil {
			h.serverError(c, err)
			return
		}
		stats[ctr.key] = n
	}
	utils.Respond(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) Users(c *gin.Context) {
	users, err := h.Store.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		h.serverError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"count": len(users), "users": users})
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if !models.ValidRole(req.Role) {
		utils.Fail(c, http.StatusBadRequest, "Invalid role")
		return
	}

	user, err := h.Store.UpdateUserRole(c.Request.Context(), id, req.Role)
	if err != nil {
		h.storeError(c, err, "User not found")
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"msg": "User role updated to " + req.Role, "user": user})
}

// Bookings lists bookings created in an optional window, newest first.
func (h *Handler) Bookings(c *gin.Context) {
	f := models.BookingFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
		Limit:         adminBookingsLimit,
	}
	for _, bound := range []struct {
		param string
		dst   **time.Time
	}{
		{"startDate", &f.CreatedFrom},
		{"endDate", &f.CreatedTo},
	} {
		raw := c.Query(bound.param)
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid "+bound.param)
			return
		}
		*bound.dst = &t
	}
	h.listBookings(c, f)
}

func (h *Handler) Seed(c *gin.Context) {
	n, err := services.Seed(c.Request.Context(), h.Store)
	if errors.Is(err, services.ErrAlreadySeeded) {
		utils.Fail(c, http.StatusBadRequest, "Data already exists. Cannot seed again.")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"msg": "Sample data seeded successfully", "hospitals": n})
}
