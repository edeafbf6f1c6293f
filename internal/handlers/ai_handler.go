package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/services"
	"github.com/tenaflow/tena-api/internal/utils"
)

type ChatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		utils.Fail(c, http.StatusBadRequest, "Message is required")
		return
	}

	reply := h.Assistant.Reply(c.Request.Context(), req.Message, req.Language)
	utils.Respond(c, http.StatusOK, gin.H{
		"reply":     reply,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// SuggestDoctors maps symptoms to specialties and lists the available
// doctors practising them.
func (h *Handler) SuggestDoctors(c *gin.Context) {
	var req struct {
		Symptoms string `json:"symptoms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Symptoms) == "" {
		utils.Fail(c, http.StatusBadRequest, "Symptoms are required")
		return
	}

	specialties := services.SuggestSpecialties(req.Symptoms)
	ctx := c.Request.Context()
	doctors, err := h.Store.ListDoctors(ctx, models.DoctorFilter{
		AvailableOnly: true,
		Specialties:   specialties,
	})
	if err != nil {
		h.serverError(c, err)
		return
	}
	views, err := h.resolver().doctors(ctx, doctors)
	if err != nil {
		h.serverError(c, err)
		return
	}

	utils.Respond(c, http.StatusOK, gin.H{
		"suggestedSpecialties": specialties,
		"message":              "Based on your symptoms, we recommend consulting these specialists.",
		"doctors":              views,
	})
}
