package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/store"
	"github.com/tenaflow/tena-api/internal/utils"
)

const msgUserExists = "User already exists with this email"

type RegisterUserRequest struct {
	Name            string   `json:"name" binding:"required"`
	Email           string   `json:"email" binding:"required,email"`
	Password        string   `json:"password" binding:"required,min=6"`
	Role            string   `json:"role"`
	Phone           string   `json:"phone"`
	DateOfBirth     string   `json:"dateOfBirth"`
	Specialty       string   `json:"specialty"`
	Hospital        string   `json:"hospital"`
	AvailableSlots  []string `json:"availableSlots"`
	ConsultationFee *float64 `json:"consultationFee" binding:"omitempty,min=0"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if !bindJSON(c, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.Fail(c, http.StatusBadRequest, "name is required")
		return
	}
	role := req.Role
	if role == "" {
		role = models.RolePatient
	}
	// Staff roles are granted by a superadmin, never self-assigned.
	if role != models.RolePatient && role != models.RoleDoctor {
		utils.Fail(c, http.StatusBadRequest, "Invalid role")
		return
	}

	user := &models.User{
		Name:            name,
		Email:           models.NormalizeEmail(req.Email),
		Role:            role,
		Phone:           strings.TrimSpace(req.Phone),
		ConsultationFee: models.DefaultConsultationFee,
		PaymentStatus:   models.PaymentPending,
	}
	if req.ConsultationFee != nil && *req.ConsultationFee > 0 {
		user.ConsultationFee = *req.ConsultationFee
	}
	if req.DateOfBirth != "" {
		dob, err := parseDate(req.DateOfBirth)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid date of birth")
			return
		}
		user.DateOfBirth = &dob
	}
	if role == models.RoleDoctor {
		user.Specialty = strings.TrimSpace(req.Specialty)
		user.AvailableSlots = models.TrimAll(req.AvailableSlots)
		if req.Hospital != "" {
			hospitalID, err := primitive.ObjectIDFromHex(req.Hospital)
			if err != nil {
				utils.Fail(c, http.StatusBadRequest, "Invalid hospital id")
				return
			}
			user.Hospital = hospitalID
		}
	}

	ctx := c.Request.Context()
	if _, err := h.Store.FindUserByEmail(ctx, user.Email); err == nil {
		utils.Fail(c, http.StatusBadRequest, msgUserExists)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.serverError(c, err)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		h.serverError(c, err)
		return
	}
	user.Password = hashedPassword

	if err := h.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			utils.Fail(c, http.StatusBadRequest, msgUserExists)
			return
		}
		h.serverError(c, err)
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		h.serverError(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, gin.H{"token": token, "user": user.Summary()})
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Store.FindUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		utils.Fail(c, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		utils.Fail(c, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		h.serverError(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"token": token, "user": user.Summary()})
}

// GetCurrentUser returns the profile of the authenticated user.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	user, err := h.Store.FindUserByID(c.Request.Context(), userID)
	if err != nil {
		h.storeError(c, err, "User not found")
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"user": user})
}

// UpdateProfile changes the name, phone or date of birth of the caller.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Phone       *string `json:"phone"`
		DateOfBirth *string `json:"dateOfBirth"`
	}
	if !bindJSON(c, &req) {
		return
	}

	var update models.ProfileUpdate
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			utils.Fail(c, http.StatusBadRequest, "name cannot be empty")
			return
		}
		update.Name = &name
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		update.Phone = &phone
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := parseDate(*req.DateOfBirth)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "Invalid date of birth")
			return
		}
		update.DateOfBirth = &dob
	}

	user, err := h.Store.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		h.storeError(c, err, "User not found")
		return
	}
	utils.Respond(c, http.StatusOK, gin.H{"user": user})
}
