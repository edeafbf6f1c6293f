package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Doctor struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name            string             `bson:"name" json:"name"`
	Specialty       string             `bson:"specialty" json:"specialty"`
	Hospital        primitive.ObjectID `bson:"hospital" json:"-"`
	User            primitive.ObjectID `bson:"user,omitempty" json:"user,omitzero"` // linked doctor account
	Qualification   string             `bson:"qualification,omitempty" json:"qualification,omitempty"`
	Experience      int                `bson:"experience" json:"experience"`
	AvailableSlots  []string           `bson:"availableSlots" json:"availableSlots"`
	ConsultationFee float64            `bson:"consultationFee" json:"consultationFee"`
	Phone           string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email           string             `bson:"email,omitempty" json:"email,omitempty"`
	Image           string             `bson:"image,omitempty" json:"image,omitempty"`
	Rating          float64            `bson:"rating" json:"rating"`
	IsAvailable     bool               `bson:"isAvailable" json:"isAvailable"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// HasSlot reports whether slot is currently open for booking.
func (d *Doctor) HasSlot(slot string) bool {
	for _, s := range d.AvailableSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// DoctorView is a doctor with its hospital populated.
type DoctorView struct {
	Doctor
	Hospital *HospitalRef `json:"hospital"`
}

// DoctorRef is the embedded form used in bookings.
type DoctorRef struct {
	ID              primitive.ObjectID `json:"_id"`
	Name            string             `json:"name"`
	Specialty       string             `json:"specialty"`
	ConsultationFee float64            `json:"consultationFee"`
}

func (d *Doctor) Ref() *DoctorRef {
	return &DoctorRef{ID: d.ID, Name: d.Name, Specialty: d.Specialty, ConsultationFee: d.ConsultationFee}
}

// DoctorUpdate is a partial update; nil fields are left untouched.
type DoctorUpdate struct {
	Name            *string   `json:"name"`
	Specialty       *string   `json:"specialty"`
	Qualification   *string   `json:"qualification"`
	Experience      *int      `json:"experience" binding:"omitempty,min=0"`
	AvailableSlots  *[]string `json:"availableSlots"`
	ConsultationFee *float64  `json:"consultationFee" binding:"omitempty,min=0"`
	Phone           *string   `json:"phone"`
	Email           *string   `json:"email"`
	Image           *string   `json:"image"`
	Rating          *float64  `json:"rating" binding:"omitempty,min=0,max=5"`
	IsAvailable     *bool     `json:"isAvailable"`
}

func (u *DoctorUpdate) Apply(d *Doctor) {
	setString(&d.Name, u.Name)
	setString(&d.Specialty, u.Specialty)
	setString(&d.Qualification, u.Qualification)
	setString(&d.Phone, u.Phone)
	setString(&d.Image, u.Image)
	if u.Email != nil {
		d.Email = NormalizeEmail(*u.Email)
	}
	if u.Experience != nil {
		d.Experience = *u.Experience
	}
	if u.AvailableSlots != nil {
		d.AvailableSlots = TrimAll(*u.AvailableSlots)
	}
	if u.ConsultationFee != nil {
		d.ConsultationFee = *u.ConsultationFee
	}
	if u.Rating != nil {
		d.Rating = *u.Rating
	}
	if u.IsAvailable != nil {
		d.IsAvailable = *u.IsAvailable
	}
}

type DoctorSort int

const (
	// SortByRating orders by rating desc, then newest first.
	SortByRating DoctorSort = iota
	// SortBySpecialty orders alphabetically by specialty.
	SortBySpecialty
)

// DoctorFilter selects doctors for listing.
type DoctorFilter struct {
	AvailableOnly bool
	Specialty     string // case-insensitive substring
	HospitalID    primitive.ObjectID
	Specialties   []string // exact match on any, used for suggestions
	Sort          DoctorSort
}
