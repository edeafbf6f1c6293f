package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentVerified = "verified"
	PaymentRejected = "rejected"
)

const DefaultConsultationFee = 50

func ValidBookingStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentVerified, PaymentRejected:
		return true
	}
	return false
}

type Booking struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Patient         primitive.ObjectID `bson:"patient" json:"-"`
	Doctor          primitive.ObjectID `bson:"doctor" json:"-"`
	Hospital        primitive.ObjectID `bson:"hospital" json:"-"`
	AppointmentDate time.Time          `bson:"appointmentDate" json:"appointmentDate"`
	AppointmentTime string             `bson:"appointmentTime" json:"appointmentTime"`
	Status          string             `bson:"status" json:"status"`
	Symptoms        string             `bson:"symptoms,omitempty" json:"symptoms,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	PaymentAmount   float64            `bson:"paymentAmount" json:"paymentAmount"`
	PaymentReceipt  string             `bson:"paymentReceipt,omitempty" json:"paymentReceipt,omitempty"`
	PaymentDate     *time.Time         `bson:"paymentDate,omitempty" json:"paymentDate,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PatientRef is the embedded form of the booking's patient.
type PatientRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Phone string             `json:"phone,omitempty"`
}

// BookingView is a booking with patient, doctor and hospital populated.
// A reference whose document no longer exists is rendered as its bare id.
type BookingView struct {
	Booking
	Patient  any `json:"patient"`
	Doctor   any `json:"doctor"`
	Hospital any `json:"hospital"`
}

type BookingSort int

const (
	SortByCreated BookingSort = iota
	SortByAppointment
	SortByPaymentDate
)

// BookingFilter selects bookings; zero values are ignored.
type BookingFilter struct {
	Patient         primitive.ObjectID
	Doctor          primitive.ObjectID
	Status          string
	ExcludeStatus   string
	PaymentStatus   string
	AppointmentFrom *time.Time
	AppointmentTo   *time.Time
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	Sort            BookingSort // always newest first
	Limit           int64
}
