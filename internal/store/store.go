// Package store defines the persistence boundary of the API. Two
// implementations exist: mongostore, the primary document store, and
// sqlstore, the in-memory fallback used for demos and tests.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tenaflow/tena-api/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.ProfileUpdate) (*models.User, error)
	UpdateUserRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error)
	ListUsers(ctx context.Context, role string) ([]models.User, error)
	CountUsers(ctx context.Context, role string) (int64, error)
}

type Hospitals interface {
	CreateHospitals(ctx context.Context, hs ...*models.Hospital) error
	FindHospital(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error)
	ListHospitals(ctx context.Context, f models.HospitalFilter) ([]models.Hospital, error)
	UpdateHospital(ctx context.Context, id primitive.ObjectID, u models.HospitalUpdate) (*models.Hospital, error)
	DeleteHospital(ctx context.Context, id primitive.ObjectID) error
	CountHospitals(ctx context.Context) (int64, error)
}

type Doctors interface {
	CreateDoctors(ctx context.Context, ds ...*models.Doctor) error
	FindDoctor(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	ListDoctors(ctx context.Context, f models.DoctorFilter) ([]models.Doctor, error)
	UpdateDoctor(ctx context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error)
	// AddSlot returns slot to the doctor's availability unless already present.
	AddSlot(ctx context.Context, id primitive.ObjectID, slot string) error
	// RemoveSlot takes slot out of the doctor's availability.
	RemoveSlot(ctx context.Context, id primitive.ObjectID, slot string) error
	DeleteDoctor(ctx context.Context, id primitive.ObjectID) error
	CountDoctors(ctx context.Context) (int64, error)
}

type Bookings interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	FindBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	// SaveBooking overwrites the mutable fields of an existing booking.
	SaveBooking(ctx context.Context, b *models.Booking) error
	ListBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error)
	CountBookings(ctx context.Context, f models.BookingFilter) (int64, error)
}

// Store is everything the handlers need from persistence.
type Store interface {
	Users
	Hospitals
	Doctors
	Bookings
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
