package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/middleware"
	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/services"
	"github.com/tenaflow/tena-api/internal/store"
	"github.com/tenaflow/tena-api/internal/utils"
)

// Handler holds everything the route handlers depend on.
type Handler struct {
	Store          store.Store
	Notifier       *services.NotificationService
	Assistant      *services.Assistant
	Receipts       *services.ReceiptStore
	TelebirrNumber string
	Log            *zap.Logger
}

func NewHandler(
	st store.Store,
	notifier *services.NotificationService,
	assistant *services.Assistant,
	receipts *services.ReceiptStore,
	telebirrNumber string,
	log *zap.Logger,
) *Handler {
	return &Handler{
		Store:          st,
		Notifier:       notifier,
		Assistant:      assistant,
		Receipts:       receipts,
		TelebirrNumber: telebirrNumber,
		Log:            log,
	}
}

// serverError logs err and answers 500 without leaking details.
func (h *Handler) serverError(c *gin.Context, err error) {
	h.Log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	_ = c.Error(err)
	utils.Fail(c, http.StatusInternalServerError, "Server error")
}

// storeError answers 404 with notFound for store.ErrNotFound and 500 otherwise.
func (h *Handler) storeError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, store.ErrNotFound) {
		utils.Fail(c, http.StatusNotFound, notFound)
		return
	}
	h.serverError(c, err)
}

// caller returns the authenticated user id and role set by AuthMiddleware.
func caller(c *gin.Context) (primitive.ObjectID, string, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.UserIDKey))
	if err != nil {
		utils.Fail(c, http.StatusUnauthorized, "Token is not valid")
		return primitive.NilObjectID, "", false
	}
	return id, c.GetString(middleware.UserRoleKey), true
}

func isAdmin(role string) bool {
	return role == models.RoleAdmin || role == models.RoleSuperAdmin
}

// pathID parses the ObjectID in path parameter name, answering 400 on failure.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseDate accepts a calendar date (2006-01-02) or a full RFC 3339 time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

// dayBounds returns the first and last instant of the day s names.
func dayBounds(s string) (time.Time, time.Time, error) {
	t, err := parseDate(s)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Millisecond), nil
}

// bindJSON binds the request body into req and answers 400 with a readable
// message when it does not validate.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.Fail(c, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	field := fe.Field()
	if field != "" {
		field = strings.ToLower(field[:1]) + field[1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please include a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	}
	return field + " is invalid"
}
