package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	s, err := Open(dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := &models.User{Name: "Abebe", Email: "abebe@example.com", Password: "hash", Role: models.RolePatient}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.False(t, u.ID.IsZero())

	dup := &models.User{Name: "Other", Email: "abebe@example.com", Role: models.RolePatient}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrDuplicate)

	found, err := s.FindUserByEmail(ctx, "  ABEBE@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "hash", found.Password)

	phone := "0911000000"
	updated, err := s.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Abebe", updated.Name)

	updated, err = s.UpdateUserRole(ctx, u.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	users, err := s.ListUsers(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].Password)

	n, err := s.CountUsers(ctx, models.RolePatient)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.FindUserByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHospitalsAndDoctors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	blackLion := &models.Hospital{Name: "Black Lion", Location: "Addis Ababa", Contact: "+251111", Specialties: []string{"Cardiology", "Neurology"}, IsActive: true}
	closed := &models.Hospital{Name: "Closed", Location: "Adama", Contact: "+251222", Specialties: []string{"Pediatrics"}}
	require.NoError(t, s.CreateHospitals(ctx, blackLion, closed))

	active, err := s.ListHospitals(ctx, models.HospitalFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, []string{"Cardiology", "Neurology"}, active[0].Specialties)

	bySpecialty, err := s.ListHospitals(ctx, models.HospitalFilter{Specialty: "neuro"})
	require.NoError(t, err)
	require.Len(t, bySpecialty, 1)
	assert.Equal(t, blackLion.ID, bySpecialty[0].ID)

	rating := 4.5
	h, err := s.UpdateHospital(ctx, closed.ID, models.HospitalUpdate{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 4.5, h.Rating)

	low := &models.Doctor{Name: "Dr. Low", Specialty: "Cardiology", Hospital: blackLion.ID, Rating: 3, IsAvailable: true}
	high := &models.Doctor{Name: "Dr. High", Specialty: "Neurology", Hospital: blackLion.ID, Rating: 5, IsAvailable: true, AvailableSlots: []string{"09:00"}}
	away := &models.Doctor{Name: "Dr. Away", Specialty: "Cardiology", Hospital: closed.ID, Rating: 4}
	require.NoError(t, s.CreateDoctors(ctx, low, high, away))

	doctors, err := s.ListDoctors(ctx, models.DoctorFilter{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	assert.Equal(t, "Dr. High", doctors[0].Name)

	doctors, err = s.ListDoctors(ctx, models.DoctorFilter{Specialty: "CARDIO", HospitalID: closed.ID})
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, away.ID, doctors[0].ID)

	doctors, err = s.ListDoctors(ctx, models.DoctorFilter{Specialties: []string{"Neurology"}})
	require.NoError(t, err)
	require.Len(t, doctors, 1)

	require.NoError(t, s.AddSlot(ctx, high.ID, "10:00"))
	require.NoError(t, s.AddSlot(ctx, high.ID, "10:00"))
	require.NoError(t, s.RemoveSlot(ctx, high.ID, "09:00"))
	d, err := s.FindDoctor(ctx, high.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, d.AvailableSlots)

	assert.ErrorIs(t, s.AddSlot(ctx, primitive.NewObjectID(), "10:00"), store.ErrNotFound)

	require.NoError(t, s.DeleteDoctor(ctx, away.ID))
	assert.ErrorIs(t, s.DeleteDoctor(ctx, away.ID), store.ErrNotFound)
	n, err := s.CountDoctors(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.DeleteHospital(ctx, closed.ID))
	n, err = s.CountHospitals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBookings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	patient := primitive.NewObjectID()
	doctor := primitive.NewObjectID()
	hospital := primitive.NewObjectID()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	first := &models.Booking{Patient: patient, Doctor: doctor, Hospital: hospital, AppointmentDate: day, AppointmentTime: "09:00",
		Status: models.StatusPending, PaymentStatus: models.PaymentPending, CreatedAt: day.Add(-48 * time.Hour)}
	second := &models.Booking{Patient: patient, Doctor: doctor, Hospital: hospital, AppointmentDate: day.AddDate(0, 0, 1), AppointmentTime: "10:00",
		Status: models.StatusCancelled, PaymentStatus: models.PaymentPending, CreatedAt: day.Add(-24 * time.Hour)}
	require.NoError(t, s.CreateBooking(ctx, first))
	require.NoError(t, s.CreateBooking(ctx, second))

	all, err := s.ListBookings(ctx, models.BookingFilter{Patient: patient})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	open, err := s.ListBookings(ctx, models.BookingFilter{Doctor: doctor, ExcludeStatus: models.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, first.ID, open[0].ID)

	from := day
	to := day.Add(23 * time.Hour)
	n, err := s.CountBookings(ctx, models.BookingFilter{AppointmentFrom: &from, AppointmentTo: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	paid := time.Now().UTC()
	first.PaymentStatus = models.PaymentPaid
	first.PaymentReceipt = "receipt-1.png"
	first.PaymentDate = &paid
	require.NoError(t, s.SaveBooking(ctx, first))

	got, err := s.FindBooking(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, "receipt-1.png", got.PaymentReceipt)
	require.NotNil(t, got.PaymentDate)

	recent, err := s.ListBookings(ctx, models.BookingFilter{Sort: models.SortByPaymentDate, Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, first.ID, recent[0].ID)

	missing := &models.Booking{ID: primitive.NewObjectID()}
	assert.ErrorIs(t, s.SaveBooking(ctx, missing), store.ErrNotFound)
}

func TestContainsFoldEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, containsFold("50%_OFF"))
}

func TestHospitalSpecialtySearchMatchesElements(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	obgyn := &models.Hospital{Name: "Gandhi Memorial", Location: "Addis Ababa", Contact: "+251333", Specialties: []string{"Obstetrics & Gynecology"}, IsActive: true}
	general := &models.Hospital{Name: "Zewditu", Location: "Addis Ababa", Contact: "+251444", Specialties: []string{"General", "Surgery"}, IsActive: true}
	require.NoError(t, s.CreateHospitals(ctx, obgyn, general))

	found, err := s.ListHospitals(ctx, models.HospitalFilter{Specialty: "obstetrics & gynecology"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, obgyn.ID, found[0].ID)

	for _, term := range []string{`","`, `general","surgery`, `[`} {
		found, err = s.ListHospitals(ctx, models.HospitalFilter{Specialty: term})
		require.NoError(t, err)
		assert.Empty(t, found, term)
	}

	found, err = s.ListHospitals(ctx, models.HospitalFilter{Specialty: "SURG"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, general.ID, found[0].ID)
}

func TestUpdateDoctorKeepsSlotChanges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	h := &models.Hospital{Name: "St. Paulos", Location: "Addis Ababa", Contact: "+251555", IsActive: true}
	require.NoError(t, s.CreateHospitals(ctx, h))
	d := &models.Doctor{Name: "Dr. Selam", Specialty: "Pediatrician", Hospital: h.ID, AvailableSlots: []string{"09:00", "10:00"}, IsAvailable: true}
	require.NoError(t, s.CreateDoctors(ctx, d))

	require.NoError(t, s.RemoveSlot(ctx, d.ID, "09:00"))
	fee := 90.0
	updated, err := s.UpdateDoctor(ctx, d.ID, models.DoctorUpdate{ConsultationFee: &fee})
	require.NoError(t, err)
	assert.Equal(t, 90.0, updated.ConsultationFee)
	assert.Equal(t, []string{"10:00"}, updated.AvailableSlots)

	_, err = s.UpdateDoctor(ctx, primitive.NewObjectID(), models.DoctorUpdate{ConsultationFee: &fee})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
