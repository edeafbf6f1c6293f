package handlers

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/store"
)

// resolver populates references, remembering what it has already loaded so
// a list of bookings costs one lookup per distinct document.
type resolver struct {
	st            store.Store
	userCache     map[primitive.ObjectID]*models.User
	doctorCache   map[primitive.ObjectID]*models.Doctor
	hospitalCache map[primitive.ObjectID]*models.Hospital
}

func (h *Handler) resolver() *resolver {
	return &resolver{
		st:            h.Store,
		userCache:     map[primitive.ObjectID]*models.User{},
		doctorCache:   map[primitive.ObjectID]*models.Doctor{},
		hospitalCache: map[primitive.ObjectID]*models.Hospital{},
	}
}

// lookup loads id through find unless cached. A missing document is cached
// as nil and is not an error.
func lookup[T any](ctx context.Context, cache map[primitive.ObjectID]*T, id primitive.ObjectID,
	find func(context.Context, primitive.ObjectID) (*T, error)) (*T, error) {
	if v, ok := cache[id]; ok {
		return v, nil
	}
	v, err := find(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		v, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	cache[id] = v
	return v, nil
}

func (r *resolver) doctor(ctx context.Context, d *models.Doctor) (models.DoctorView, error) {
	view := models.DoctorView{Doctor: *d}
	hosp, err := lookup(ctx, r.hospitalCache, d.Hospital, r.st.FindHospital)
	if err != nil {
		return view, err
	}
	if hosp != nil {
		view.Hospital = hosp.Ref()
	}
	return view, nil
}

func (r *resolver) doctors(ctx context.Context, ds []models.Doctor) ([]models.DoctorView, error) {
	views := make([]models.DoctorView, 0, len(ds))
	for i := range ds {
		v, err := r.doctor(ctx, &ds[i])
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// booking embeds patient, doctor and hospital. References to deleted
// documents are rendered as their bare id.
func (r *resolver) booking(ctx context.Context, b *models.Booking) (models.BookingView, error) {
	view := models.BookingView{Booking: *b, Patient: b.Patient, Doctor: b.Doctor, Hospital: b.Hospital}

	patient, err := lookup(ctx, r.userCache, b.Patient, r.st.FindUserByID)
	if err != nil {
		return view, err
	}
	if patient != nil {
		view.Patient = models.PatientRef{ID: patient.ID, Name: patient.Name, Email: patient.Email, Phone: patient.Phone}
	}

	doctor, err := lookup(ctx, r.doctorCache, b.Doctor, r.st.FindDoctor)
	if err != nil {
		return view, err
	}
	if doctor != nil {
		view.Doctor = doctor.Ref()
	}

	hosp, err := lookup(ctx, r.hospitalCache, b.Hospital, r.st.FindHospital)
	if err != nil {
		return view, err
	}
	if hosp != nil {
		ref := hosp.Ref()
		ref.Specialties = nil
		view.Hospital = ref
	}
	return view, nil
}

func (r *resolver) bookings(ctx context.Context, bs []models.Booking) ([]models.BookingView, error) {
	views := make([]models.BookingView, 0, len(bs))
	for i := range bs {
		v, err := r.booking(ctx, &bs[i])
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}
