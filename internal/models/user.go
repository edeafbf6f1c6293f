package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RolePatient    = "patient"
	RoleDoctor     = "doctor"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"` // bcrypt hash, never serialized
	Role        string             `bson:"role" json:"role"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	DateOfBirth *time.Time         `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`

	// Only set for doctor accounts.
	Specialty       string             `bson:"specialty,omitempty" json:"specialty,omitempty"`
	Hospital        primitive.ObjectID `bson:"hospital,omitempty" json:"hospital,omitzero"`
	AvailableSlots  []string           `bson:"availableSlots,omitempty" json:"availableSlots,omitempty"`
	ConsultationFee float64            `bson:"consultationFee" json:"consultationFee"`

	PaymentStatus  string    `bson:"paymentStatus" json:"paymentStatus"` // "pending", "approved", "rejected"
	PaymentReceipt string    `bson:"paymentReceipt,omitempty" json:"paymentReceipt,omitempty"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// UserSummary is the public identity returned by the auth endpoints.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role}
}

// ProfileUpdate carries the fields a user may change on their own account.
type ProfileUpdate struct {
	Name        *string
	Phone       *string
	DateOfBirth *time.Time
}
