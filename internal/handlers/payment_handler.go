package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/services"
	"github.com/tenaflow/tena-api/internal/utils"
)

var telebirrInstructions = []string{
	"1. Open your Telebirr mobile app",
	"2. Send payment to the number shown",
	"3. Take a screenshot of the confirmation",
	"4. Upload the screenshot below",
	"5. Wait for admin verification",
}

// multipartOverhead is the slack allowed on top of the receipt size for
// the rest of the form.
const multipartOverhead = 1 << 20

func (h *Handler) TelebirrInfo(c *gin.Context) {
	utils.Respond(c, http.StatusOK, gin.H{
		"phoneNumber":  h.TelebirrNumber,
		"instructions": telebirrInstructions,
	})
}

// UploadReceipt stores the payment screenshot for one of the caller's
// bookings and marks the booking as paid, pending verification.
func (h *Handler) UploadReceipt(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Receipts.MaxBytes()+multipartOverhead)

	fh, err := c.FormFile("receipt")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.receiptTooLarge(c)
			return
		}
		utils.Fail(c, http.StatusBadRequest, "Please upload a receipt image")
		return
	}

	name, err := h.Receipts.Save(fh)
	switch {
	case errors.Is(err, services.ErrReceiptTooLarge):
		h.receiptTooLarge(c)
		return
	case errors.Is(err, services.ErrNotImage):
		utils.Fail(c, http.StatusBadRequest, "Only image files are allowed!")
		return
	case err != nil:
		h.serverError(c, err)
		return
	}

	// From here on the stored file is discarded unless the booking takes it.
	kept := false
	defer func() {
		if !kept {
			h.discardReceipt(name)
		}
	}()

	rawID := strings.TrimSpace(c.PostForm("bookingId"))
	if rawID == "" {
		utils.Fail(c, http.StatusBadRequest, "Booking ID is required")
		return
	}
	bookingID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid id")
		return
	}

	ctx := c.Request.Context()
	booking, err := h.Store.FindBooking(ctx, bookingID)
	if err != nil {
		h.storeError(c, err, msgBookingNotFound)
		return
	}
	if booking.Patient != userID {
		utils.Fail(c, http.StatusForbidden, "Not authorized")
		return
	}

	previous := booking.PaymentReceipt
	now := time.Now().UTC()
	booking.PaymentReceipt = name
	booking.PaymentStatus = models.PaymentPaid
	booking.PaymentDate = &now
	booking.UpdatedAt = now
	if err := h.Store.SaveBooking(ctx, booking); err != nil {
		h.storeError(c, err, msgBookingNotFound)
		return
	}
	kept = true
	if previous != "" && previous != name {
		h.discardReceipt(previous)
	}

	utils.Respond(c, http.StatusOK, gin.H{
		"msg":     "Payment receipt uploaded successfully. Waiting for verification.",
		"receipt": name,
	})
}

func (h *Handler) receiptTooLarge(c *gin.Context) {
	utils.Fail(c, http.StatusRequestEntityTooLarge, "File too large. Maximum size is "+formatSize(h.Receipts.MaxBytes()))
}

// formatSize renders n in the largest whole unit, e.g. 5MB or 512KB.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

func (h *Handler) discardReceipt(name string) {
	if err := h.Receipts.Remove(name); err != nil {
		h.Log.Warn("receipt not removed", zap.String("receipt", name), zap.Error(err))
	}
}

// VerifyPayment records the administrator's review of a receipt. A verified
// payment confirms the booking and takes its slot off the doctor's list.
func (h *Handler) VerifyPayment(c *gin.Context) {
	id, ok := pathID(c, "bookingId")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if !models.ValidPaymentStatus(req.Status) {
		utils.Fail(c, http.StatusBadRequest, "Invalid payment status")
		return
	}

	ctx := c.Request.Context()
	booking, err := h.Store.FindBooking(ctx, id)
	if err != nil {
		h.storeError(c, err, msgBookingNotFound)
		return
	}

	booking.PaymentStatus = req.Status
	if req.Status == models.PaymentVerified {
		booking.Status = models.StatusConfirmed
		if err := h.Store.RemoveSlot(ctx, booking.Doctor, booking.AppointmentTime); err != nil {
			h.Log.Warn("slot not removed from doctor",
				zap.String("booking", booking.ID.Hex()),
				zap.String("doctor", booking.Doctor.Hex()),
				zap.Error(err),
			)
		}
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		booking.Notes = notes
	}
	booking.UpdatedAt = time.Now().UTC()
	if err := h.Store.SaveBooking(ctx, booking); err != nil {
		h.storeError(c, err, msgBookingNotFound)
		return
	}

	if req.Status == models.PaymentVerified || req.Status == models.PaymentRejected {
		if patient := h.patient(ctx, booking.Patient); patient != nil {
			h.Notifier.PaymentReviewed(patient, booking)
		}
	}
	h.respondBooking(c, http.StatusOK, booking, gin.H{"msg": "Payment " + req.Status + " successfully"})
}

// PendingPayments lists paid bookings awaiting review, latest payment first.
func (h *Handler) PendingPayments(c *gin.Context) {
	h.listBookings(c, models.BookingFilter{
		PaymentStatus: models.PaymentPaid,
		ExcludeStatus: models.StatusCancelled,
		Sort:          models.SortByPaymentDate,
	})
}

// Receipt streams a stored receipt image to an administrator.
func (h *Handler) Receipt(c *gin.Context) {
	path, err := h.Receipts.Path(c.Param("name"))
	if err != nil {
		utils.Fail(c, http.StatusNotFound, "Receipt not found")
		return
	}
	c.File(path)
}
