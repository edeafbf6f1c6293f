package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Hospital struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Location       string             `bson:"location" json:"location"`
	Address        string             `bson:"address,omitempty" json:"address,omitempty"`
	Specialties    []string           `bson:"specialties" json:"specialties"`
	Contact        string             `bson:"contact" json:"contact"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	Website        string             `bson:"website,omitempty" json:"website,omitempty"`
	EmergencyPhone string             `bson:"emergencyPhone,omitempty" json:"emergencyPhone,omitempty"`
	Image          string             `bson:"image,omitempty" json:"image,omitempty"`
	Rating         float64            `bson:"rating" json:"rating"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// HospitalRef is the embedded form used when a hospital is populated into
// doctors and bookings.
type HospitalRef struct {
	ID          primitive.ObjectID `json:"_id"`
	Name        string             `json:"name"`
	Location    string             `json:"location"`
	Contact     string             `json:"contact,omitempty"`
	Specialties []string           `json:"specialties,omitempty"`
}

func (h *Hospital) Ref() *HospitalRef {
	return &HospitalRef{
		ID:          h.ID,
		Name:        h.Name,
		Location:    h.Location,
		Contact:     h.Contact,
		Specialties: h.Specialties,
	}
}

// HospitalUpdate is a partial update; nil fields are left untouched.
type HospitalUpdate struct {
	Name           *string   `json:"name"`
	Location       *string   `json:"location"`
	Address        *string   `json:"address"`
	Specialties    *[]string `json:"specialties"`
	Contact        *string   `json:"contact"`
	Email          *string   `json:"email"`
	Website        *string   `json:"website"`
	EmergencyPhone *string   `json:"emergencyPhone"`
	Image          *string   `json:"image"`
	Rating         *float64  `json:"rating" binding:"omitempty,min=0,max=5"`
	IsActive       *bool     `json:"isActive"`
}

// Apply copies the set fields onto h.
func (u *HospitalUpdate) Apply(h *Hospital) {
	setString(&h.Name, u.Name)
	setString(&h.Location, u.Location)
	setString(&h.Address, u.Address)
	setString(&h.Contact, u.Contact)
	setString(&h.Website, u.Website)
	setString(&h.EmergencyPhone, u.EmergencyPhone)
	setString(&h.Image, u.Image)
	if u.Email != nil {
		h.Email = NormalizeEmail(*u.Email)
	}
	if u.Specialties != nil {
		h.Specialties = TrimAll(*u.Specialties)
	}
	if u.Rating != nil {
		h.Rating = *u.Rating
	}
	if u.IsActive != nil {
		h.IsActive = *u.IsActive
	}
}

// HospitalFilter selects hospitals for listing.
type HospitalFilter struct {
	ActiveOnly bool
	Specialty  string // case-insensitive substring of any specialty
}
