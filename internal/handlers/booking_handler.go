package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/utils"
)

const msgBookingNotFound = "Booking not found"

type CreateBookingRequest struct {
	DoctorID        string `json:"doctorId" binding:"required"`
	HospitalID      string `json:"hospitalId"`
	AppointmentDate string `json:"appointmentDate" binding:"required"`
	AppointmentTime string `json:"appointmentTime" binding:"required"`
	Symptoms        string `json:"symptoms"`
}

// CreateBooking reserves one of the doctor's open slots for the caller.
// The slot stays open until the payment is verified.
func (h *Handler) CreateBooking(c *gin.Context) {
	patientID, _, ok := caller(c)
	if !ok {
		return
	}
	var req CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	doctorID, err := primitive.ObjectIDFromHex(req.DoctorID)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid doctor id")
		return
	}
	date, err := parseDate(req.AppointmentDate)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid appointment date")
		return
	}
	slot := strings.TrimSpace(req.AppointmentTime)

	ctx := c.Request.Context()
	doctor, err := h.Store.FindDoctor(ctx, doctorID)
	if err != nil {
		h.storeError(c, err, msgDoctorNotFound)
		return
	}
	if !doctor.HasSlot(slot) {
		utils.Fail(c, http.StatusBadRequest, "Selected time slot is not available")
		return
	}

	hospitalID := doctor.Hospital
	if req.HospitalID != "" {
		if hospitalID, err = primitive.ObjectIDFromHex(req.HospitalID); err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid hospital id")
			return
		}
	}

	booking := &models.Booking{
		Patient:         patientID,
		Doctor:          doctor.ID,
		Hospital:        hospitalID,
		AppointmentDate: date,
		AppointmentTime: slot,
		Status:          models.StatusPending,
		Symptoms:        strings.TrimSpace(req.Symptoms),
		PaymentStatus:   models.PaymentPending,
		PaymentAmount:   doctor.ConsultationFee,
	}
	if err := h.Store.CreateBooking(ctx, booking); err != nil {
		h.serverError(c, err)
		return
	}

	if patient := h.patient(ctx, patientID); patient != nil {
		h.Notifier.BookingCreated(patient, doctor, booking)
	}
	h.respondBooking(c, http.StatusCreated, booking, nil)
}

// MyBookings lists the caller's bookings, latest appointment first.
func (h *Handler) MyBookings(c *gin.Context) {
	patientID, _, ok := caller(c)
	if !ok {
		return
	}
	h.listBookings(c, models.BookingFilter{Patient: patientID, Sort: models.SortByAppointment})
}

func (h *Handler) GetBooking(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	booking, err := h.Store.FindBooking(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, msgBookingNotFound)
		return
	}
	if booking.Patient != userID && !isAdmin(role) {
		utils.Fail(c, http.StatusForbidden, "Not authorized to view this booking")
		return
	}
	h.respondBooking(c, http.StatusOK, booking, nil)
}

// CancelBooking lets the patient withdraw a pending booking and hands the
// slot back to the doctor.
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	booking, err := h.Store.FindBooking(ctx, id)
	if err != nil {
		h.storeError(c, err, msgBookingNotFound)
		return
	}
	if booking.Patient != userID {
		utils.Fail(c, http.StatusForbidden, "Not authorized to cancel this booking")
		return
	}
	if booking.Status != models.StatusPending {
		utils.Fail(c, http.StatusBadRequest, "Cannot cancel this booking")
		return
	}

	booking.Status = models.StatusCancelled
	booking.UpdatedAt = time.Now().UTC()
	if err := h.Store.SaveBooking(ctx, booking); err != nil {
		h.serverError(c, err)
		return
	}
	if err := h.Store.AddSlot(ctx, booking.Doctor, booking.AppointmentTime); err != nil {
		h.Log.Warn("slot not returned to doctor",
			zap.String("booking", booking.ID.Hex()),
			zap.String("doctor", booking.Doctor.Hex()),
			zap.Error(err),
		)
	}

	if patient := h.patient(ctx, booking.Patient); patient != nil {
		h.Notifier.BookingCancelled(patient, booking)
	}
	h.respondBooking(c, http.StatusOK, booking, gin.H{"msg": "Booking cancelled successfully"})
}

// UpdateBookingStatus sets the booking status as an administrator.
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if !models.ValidBookingStatus(req.Status) {
		utils.Fail(c, http.StatusBadRequest, "Invalid status")
		return
	}

	ctx := c.Request.Context()
	booking, err := h.Store.FindBooking(ctx, id)
	if err != nil {
		h.storeError(c, err, msgBookingNotFound)
		return
	}
	booking.Status = req.Status
	booking.UpdatedAt = time.Now().UTC()
	if err := h.Store.SaveBooking(ctx, booking); err != nil {
		h.storeError(c, err, msgBookingNotFound)
		return
	}
	h.respondBooking(c, http.StatusOK, booking, nil)
}

// AllBookings lists every booking for administrators, newest first.
// ?date=YYYY-MM-DD narrows to appointments on that day.
func (h *Handler) AllBookings(c *gin.Context) {
	f := models.BookingFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
	}
	if date := c.Query("date"); date != "" {
		from, to, err := dayBounds(date)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid date")
			return
		}
		f.AppointmentFrom, f.AppointmentTo = &from, &to
	}
	h.listBookings(c, f)
}

func (h *Handler) listBookings(c *gin.Context, f models.BookingFilter) {
	ctx := c.Request.Context()
	bookings, err := h.Store.ListBookings(ctx, f)
	if err != nil {
		h.serverError(c, err)
		return
	}
	views, err := h.resolver().bookings(ctx, bookings)
	if err != nil {
		h.serverError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"count": len(views), "bookings": views})
}

// respondBooking writes the populated booking, merged into extra.
func (h *Handler) respondBooking(c *gin.Context, status int, booking *models.Booking, extra gin.H) {
	view, err := h.resolver().booking(c.Request.Context(), booking)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if extra == nil {
		extra = gin.H{}
	}
	extra["booking"] = view
	utils.Respond(c, status, extra)
}

// patient loads the user to notify; failures only cost the notification.
func (h *Handler) patient(ctx context.Context, id primitive.ObjectID) *models.User {
	user, err := h.Store.FindUserByID(ctx, id)
	if err != nil {
		h.Log.Warn("patient lookup for notification failed", zap.String("user", id.Hex()), zap.Error(err))
		return nil
	}
	return user
}
