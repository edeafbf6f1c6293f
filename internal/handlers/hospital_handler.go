package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/utils"
)

const msgHospitalNotFound = "Hospital not found"

type CreateHospitalRequest struct {
	Name           string   `json:"name" binding:"required"`
	Location       string   `json:"location" binding:"required"`
	Address        string   `json:"address"`
	Specialties    []string `json:"specialties"`
	Contact        string   `json:"contact" binding:"required"`
	Email          string   `json:"email" binding:"omitempty,email"`
	Website        string   `json:"website"`
	EmergencyPhone string   `json:"emergencyPhone"`
	Image          string   `json:"image"`
	Rating         float64  `json:"rating" binding:"min=0,max=5"`
	IsActive       *bool    `json:"isActive"`
}

// ListHospitals returns the active hospitals, newest first.
func (h *Handler) ListHospitals(c *gin.Context) {
	h.listHospitals(c, models.HospitalFilter{ActiveOnly: true})
}

// SearchHospitals matches the specialty path parameter against each
// hospital's specialties, ignoring case.
func (h *Handler) SearchHospitals(c *gin.Context) {
	h.listHospitals(c, models.HospitalFilter{ActiveOnly: true, Specialty: strings.TrimSpace(c.Param("specialty"))})
}

func (h *Handler) listHospitals(c *gin.Context, f models.HospitalFilter) {
	hospitals, err := h.Store.ListHospitals(c.Request.Context(), f)
	if err != nil {
		h.serverError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"count": len(hospitals), "hospitals": hospitals})
}

func (h *Handler) GetHospital(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	hospital, err := h.Store.FindHospital(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, msgHospitalNotFound)
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"hospital": hospital})
}

func (h *Handler) CreateHospital(c *gin.Context) {
	var req CreateHospitalRequest
	if !bindJSON(c, &req) {
		return
	}

	hospital := &models.Hospital{
		Name:           strings.TrimSpace(req.Name),
		Location:       strings.TrimSpace(req.Location),
		Address:        strings.TrimSpace(req.Address),
		Specialties:    models.TrimAll(req.Specialties),
		Contact:        strings.TrimSpace(req.Contact),
		Email:          models.NormalizeEmail(req.Email),
		Website:        strings.TrimSpace(req.Website),
		EmergencyPhone: strings.TrimSpace(req.EmergencyPhone),
		Image:          req.Image,
		Rating:         req.Rating,
		IsActive:       req.IsActive == nil || *req.IsActive,
	}
	if err := h.Store.CreateHospitals(c.Request.Context(), hospital); err != nil {
		h.serverError(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, gin.H{"hospital": hospital})
}

func (h *Handler) UpdateHospital(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.HospitalUpdate
	if !bindJSON(c, &req) {
		return
	}
	hospital, err := h.Store.UpdateHospital(c.Request.Context(), id, req)
	if err != nil {
		h.storeError(c, err, msgHospitalNotFound)
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"hospital": hospital})
}

func (h *Handler) DeleteHospital(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Store.DeleteHospital(c.Request.Context(), id); err != nil {
		h.storeError(c, err, msgHospitalNotFound)
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"msg": "Hospital deleted successfully"})
}
