package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/utils"
)

const msgDoctorNotFound = "Doctor not found"

type CreateDoctorRequest struct {
	Name            string   `json:"name" binding:"required"`
	Specialty       string   `json:"specialty" binding:"required"`
	Hospital        string   `json:"hospital" binding:"required"`
	User            string   `json:"user"`
	Qualification   string   `json:"qualification"`
	Experience      int      `json:"experience" binding:"min=0"`
	AvailableSlots  []string `json:"availableSlots"`
	ConsultationFee *float64 `json:"consultationFee" binding:"omitempty,min=0"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email" binding:"omitempty,email"`
	Image           string   `json:"image"`
	Rating          float64  `json:"rating" binding:"min=0,max=5"`
	IsAvailable     *bool    `json:"isAvailable"`
}

// ListDoctors returns available doctors, best rated first, optionally
// narrowed by ?specialty= (substring, any case) and ?hospital=<id>.
func (h *Handler) ListDoctors(c *gin.Context) {
	f := models.DoctorFilter{
		AvailableOnly: true,
		Specialty:     strings.TrimSpace(c.Query("specialty")),
	}
	if hospital := c.Query("hospital"); hospital != "" {
		id, err := primitive.ObjectIDFromHex(hospital)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid hospital id")
			return
		}
		f.HospitalID = id
	}
	h.listDoctors(c, f)
}

func (h *Handler) SearchDoctors(c *gin.Context) {
	h.listDoctors(c, models.DoctorFilter{
		AvailableOnly: true,
		Specialty:     strings.TrimSpace(c.Param("specialty")),
	})
}

// DoctorsByHospital lists a hospital's available doctors by specialty.
func (h *Handler) DoctorsByHospital(c *gin.Context) {
	id, ok := pathID(c, "hospitalId")
	if !ok {
		return
	}
	h.listDoctors(c, models.DoctorFilter{AvailableOnly: true, HospitalID: id, Sort: models.SortBySpecialty})
}

func (h *Handler) listDoctors(c *gin.Context, f models.DoctorFilter) {
	ctx := c.Request.Context()
	doctors, err := h.Store.ListDoctors(ctx, f)
	if err != nil {
		h.serverError(c, err)
		return
	}
	views, err := h.resolver().doctors(ctx, doctors)
	if err != nil {
		h.serverError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"count": len(views), "doctors": views})
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	doctor, err := h.Store.FindDoctor(ctx, id)
	if err != nil {
		h.storeError(c, err, msgDoctorNotFound)
		return
	}
	h.respondDoctor(c, http.StatusOK, doctor)
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !bindJSON(c, &req) {
		return
	}
	hospitalID, err := primitive.ObjectIDFromHex(req.Hospital)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid hospital id")
		return
	}
	var userID primitive.ObjectID
	if req.User != "" {
		if userID, err = primitive.ObjectIDFromHex(req.User); err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid user id")
			return
		}
	}

	ctx := c.Request.Context()
	if _, err := h.Store.FindHospital(ctx, hospitalID); err != nil {
		h.storeError(c, err, msgHospitalNotFound)
		return
	}

	doctor := &models.Doctor{
		Name:            strings.TrimSpace(req.Name),
		Specialty:       strings.TrimSpace(req.Specialty),
		Hospital:        hospitalID,
		User:            userID,
		Qualification:   strings.TrimSpace(req.Qualification),
		Experience:      req.Experience,
		AvailableSlots:  models.TrimAll(req.AvailableSlots),
		ConsultationFee: models.DefaultConsultationFee,
		Phone:           strings.TrimSpace(req.Phone),
		Email:           models.NormalizeEmail(req.Email),
		Image:           req.Image,
		Rating:          req.Rating,
		IsAvailable:     req.IsAvailable == nil || *req.IsAvailable,
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}
	if err := h.Store.CreateDoctors(ctx, doctor); err != nil {
		h.serverError(c, err)
		return
	}
	h.respondDoctor(c, http.StatusCreated, doctor)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	var req models.DoctorUpdate
	if !bindJSON(c, &req) {
		return
	}
	h.updateDoctor(c, req)
}

// UpdateSlots replaces the doctor's bookable time slots.
func (h *Handler) UpdateSlots(c *gin.Context) {
	var req struct {
		AvailableSlots *[]string `json:"availableSlots" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	h.updateDoctor(c, models.DoctorUpdate{AvailableSlots: req.AvailableSlots})
}

// updateDoctor applies u after checking that a doctor caller owns the
// profile. Admins may edit any profile.
func (h *Handler) updateDoctor(c *gin.Context, u models.DoctorUpdate) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	doctor, err := h.Store.FindDoctor(ctx, id)
	if err != nil {
		h.storeError(c, err, msgDoctorNotFound)
		return
	}
	if role == models.RoleDoctor && doctor.User != userID {
		utils.Fail(c, http.StatusForbidden, "Not authorized to update this profile")
		return
	}

	doctor, err = h.Store.UpdateDoctor(ctx, id, u)
	if err != nil {
		h.storeError(c, err, msgDoctorNotFound)
		return
	}
	h.respondDoctor(c, http.StatusOK, doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Store.DeleteDoctor(c.Request.Context(), id); err != nil {
		h.storeError(c, err, msgDoctorNotFound)
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"msg": "Doctor deleted successfully"})
}

func (h *Handler) respondDoctor(c *gin.Context, status int, doctor *models.Doctor) {
	view, err := h.resolver().doctor(c.Request.Context(), doctor)
	if err != nil {
		h.serverError(c, err)
		return
	}
	utils.Respond(c, status, gin.H{"doctor": view})
}
