package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/services"
	"github.com/tenaflow/tena-api/internal/store/sqlstore"
	"github.com/tenaflow/tena-api/internal/utils"
)

const testUploadLimit = 1024

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitJWT("handlers-test-secret", time.Hour)
}

type testEnv struct {
	t      *testing.T
	store  *sqlstore.Store
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := sqlstore.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	receipts, err := services.NewReceiptStore(t.TempDir(), testUploadLimit)
	require.NoError(t, err)

	log := zap.NewNop()
	h := NewHandler(
		st,
		services.NewNotificationService("", "", log),
		services.NewAssistant(nil, log),
		receipts,
		"0978788034",
		log,
	)
	r := gin.New()
	h.RegisterRoutes(r, nil)
	r.NoRoute(ClientFallback(""))
	return &testEnv{t: t, store: st, router: r}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(req, token)
}

func (e *testEnv) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// user stores an account with the given role and returns it with a token.
func (e *testEnv) user(name, role string) (*models.User, string) {
	e.t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(e.t, err)
	u := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Password: hash,
		Role:     role,
		Phone:    "0911000000",
	}
	require.NoError(e.t, e.store.CreateUser(context.Background(), u))
	token, err := utils.GenerateJWT(u.ID.Hex(), role)
	require.NoError(e.t, err)
	return u, token
}

// seed loads the demo data and returns the doctors keyed by specialty.
func (e *testEnv) seed() map[string]models.Doctor {
	e.t.Helper()
	ctx := context.Background()
	_, err := services.Seed(ctx, e.store)
	require.NoError(e.t, err)
	doctors, err := e.store.ListDoctors(ctx, models.DoctorFilter{})
	require.NoError(e.t, err)
	bySpecialty := make(map[string]models.Doctor, len(doctors))
	for _, d := range doctors {
		bySpecialty[d.Specialty] = d
	}
	return bySpecialty
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func assertFailure(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, msg, body["msg"])
}

func TestRegisterAndLogin(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": " Sara ", "email": "Sara@Example.com", "password": "secret123", "phone": "0911223344",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "Sara", user["name"])
	assert.Equal(t, "sara@example.com", user["email"])
	assert.Equal(t, models.RolePatient, user["role"])

	w = e.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Sara", "email": "sara@example.com", "password": "secret123",
	})
	assertFailure(t, w, http.StatusBadRequest, "User already exists with this email")

	w = e.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Mallory", "email": "mallory@example.com", "password": "secret123", "role": "superadmin",
	})
	assertFailure(t, w, http.StatusBadRequest, "Invalid role")

	w = e.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Short", "email": "short@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "SARA@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode(t, w)["token"].(string)

	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "sara@example.com", "password": "wrong-pass"})
	assertFailure(t, w, http.StatusBadRequest, "Invalid credentials")
	w = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "nobody@example.com", "password": "secret123"})
	assertFailure(t, w, http.StatusBadRequest, "Invalid credentials")

	w = e.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "0911223344", me["phone"])
	assert.NotContains(t, me, "password")

	w = e.do(http.MethodPut, "/api/auth/profile", token, gin.H{"name": "Sara T.", "dateOfBirth": "1995-04-12"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me = decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "Sara T.", me["name"])
	assert.Equal(t, "1995-04-12T00:00:00Z", me["dateOfBirth"])

	w = e.do(http.MethodGet, "/api/auth/me", "", nil)
	assertFailure(t, w, http.StatusUnauthorized, "No token, authorization denied")
}

func TestHospitals(t *testing.T) {
	e := newTestEnv(t)
	e.seed()
	_, adminToken := e.user("Admin", models.RoleAdmin)
	_, superToken := e.user("Root", models.RoleSuperAdmin)
	_, patientToken := e.user("Patient", models.RolePatient)

	w := e.do(http.MethodGet, "/api/hospitals", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["count"])

	w = e.do(http.MethodGet, "/api/hospitals/search/CARDIO", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["count"])

	newHospital := gin.H{
		"name": "Gandhi Memorial Hospital", "location": "Addis Ababa", "contact": "011-551-8085",
		"specialties": []string{"Obstetrics & Gynecology"},
	}
	w = e.do(http.MethodPost, "/api/hospitals", patientToken, newHospital)
	assertFailure(t, w, http.StatusForbidden, "Access denied. Insufficient permissions.")

	w = e.do(http.MethodPost, "/api/hospitals", adminToken, gin.H{"name": "No Location"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/hospitals", adminToken, newHospital)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)["hospital"].(map[string]any)
	id := created["_id"].(string)
	assert.Equal(t, true, created["isActive"])

	w = e.do(http.MethodGet, "/api/hospitals/search/Obstetrics%20&%20Gynecology", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])
	w = e.do(http.MethodGet, "/api/hospitals/search/%22,%22", "", nil)
	assert.EqualValues(t, 0, decode(t, w)["count"])

	w = e.do(http.MethodPut, "/api/hospitals/"+id, adminToken, gin.H{"isActive": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = e.do(http.MethodGet, "/api/hospitals", "", nil)
	assert.EqualValues(t, 3, decode(t, w)["count"])

	w = e.do(http.MethodGet, "/api/hospitals/not-an-id", "", nil)
	assertFailure(t, w, http.StatusBadRequest, "Invalid id")

	w = e.do(http.MethodDelete, "/api/hospitals/"+id, adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(http.MethodDelete, "/api/hospitals/"+id, superToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hospital deleted successfully", decode(t, w)["msg"])
	w = e.do(http.MethodGet, "/api/hospitals/"+id, "", nil)
	assertFailure(t, w, http.StatusNotFound, "Hospital not found")
}

func TestDoctors(t *testing.T) {
	e := newTestEnv(t)
	doctors := e.seed()
	_, adminToken := e.user("Admin", models.RoleAdmin)
	doctorUser, doctorToken := e.user("Dr. Own", models.RoleDoctor)

	w := e.do(http.MethodGet, "/api/doctors", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 3, body["count"])
	list := body["doctors"].([]any)
	first := list[0].(map[string]any)
	assert.Equal(t, "Dr. Tigist Haile", first["name"], "highest rating first")
	hospital := first["hospital"].(map[string]any)
	assert.Equal(t, "Black Lion Hospital", hospital["name"])

	w = e.do(http.MethodGet, "/api/doctors?specialty=pediatric", "", nil)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	cardio := doctors["Cardiologist"]
	w = e.do(http.MethodGet, "/api/doctors/hospital/"+cardio.Hospital.Hex(), "", nil)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = e.do(http.MethodPost, "/api/doctors", adminToken, gin.H{
		"name": "Dr. Missing", "specialty": "Dermatologist", "hospital": "65a000000000000000000000",
	})
	assertFailure(t, w, http.StatusNotFound, "Hospital not found")

	w = e.do(http.MethodPost, "/api/doctors", adminToken, gin.H{
		"name": "Dr. Own", "specialty": "Dermatologist", "hospital": cardio.Hospital.Hex(),
		"user": doctorUser.ID.Hex(), "availableSlots": []string{"09:00"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	own := decode(t, w)["doctor"].(map[string]any)
	assert.EqualValues(t, models.DefaultConsultationFee, own["consultationFee"])
	ownID := own["_id"].(string)

	w = e.do(http.MethodPut, "/api/doctors/"+cardio.ID.Hex(), doctorToken, gin.H{"experience": 20})
	assertFailure(t, w, http.StatusForbidden, "Not authorized to update this profile")

	w = e.do(http.MethodPut, "/api/doctors/"+ownID+"/slots", doctorToken, gin.H{"availableSlots": []string{"08:00", " 09:30 "}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	slots := decode(t, w)["doctor"].(map[string]any)["availableSlots"].([]any)
	assert.Equal(t, []any{"08:00", "09:30"}, slots)

	w = e.do(http.MethodPut, "/api/doctors/"+cardio.ID.Hex(), adminToken, gin.H{"consultationFee": 250})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 250, decode(t, w)["doctor"].(map[string]any)["consultationFee"])

	w = e.do(http.MethodGet, "/api/doctors/65a000000000000000000000", "", nil)
	assertFailure(t, w, http.StatusNotFound, "Doctor not found")
}

func TestFallbackAndHealth(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/unknown", "", nil)
	assertFailure(t, w, http.StatusNotFound, "Route not found")

	w = e.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestResolverRendersMissingReferencesAsIDs(t *testing.T) {
	e := newTestEnv(t)
	doctor := e.seed()["Cardiologist"]
	patient, _ := e.user("Liya", models.RolePatient)
	h := &Handler{Store: e.store}

	ghost := models.Booking{Patient: patient.ID, Doctor: primitive.NewObjectID(), Hospital: doctor.Hospital}
	live := models.Booking{Patient: patient.ID, Doctor: doctor.ID, Hospital: doctor.Hospital}

	views, err := h.resolver().bookings(context.Background(), []models.Booking{ghost, live, live})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, ghost.Doctor, views[0].Doctor)
	assert.Equal(t, "Liya", views[0].Patient.(models.PatientRef).Name)
	assert.Equal(t, doctor.Name, views[1].Doctor.(*models.DoctorRef).Name)
	assert.Equal(t, "Black Lion Hospital", views[2].Hospital.(*models.HospitalRef).Name)
	assert.Nil(t, views[2].Hospital.(*models.HospitalRef).Specialties)
}
