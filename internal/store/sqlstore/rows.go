package sqlstore

import (
	"time"

	"github.com/tenaflow/tena-api/internal/models"
)

type userRow struct {
	ID              string `gorm:"primaryKey;size:24"`
	Name            string
	Email           string `gorm:"uniqueIndex;not null"`
	Password        string
	Role            string `gorm:"index"`
	Phone           string
	DateOfBirth     *time.Time
	Specialty       string
	Hospital        string   `gorm:"size:24"`
	AvailableSlots  []string `gorm:"serializer:json"`
	ConsultationFee float64
	PaymentStatus   string
	PaymentReceipt  string
	CreatedAt       time.Time `gorm:"index"`
}

func (userRow) TableName() string { return "users" }

func newUserRow(u *models.User) *userRow {
	return &userRow{
		ID:              hexID(u.ID),
		Name:            u.Name,
		Email:           u.Email,
		Password:        u.Password,
		Role:            u.Role,
		Phone:           u.Phone,
		DateOfBirth:     u.DateOfBirth,
		Specialty:       u.Specialty,
		Hospital:        hexID(u.Hospital),
		AvailableSlots:  u.AvailableSlots,
		ConsultationFee: u.ConsultationFee,
		PaymentStatus:   u.PaymentStatus,
		PaymentReceipt:  u.PaymentReceipt,
		CreatedAt:       u.CreatedAt,
	}
}

func (r *userRow) model() models.User {
	return models.User{
		ID:              objectID(r.ID),
		Name:            r.Name,
		Email:           r.Email,
		Password:        r.Password,
		Role:            r.Role,
		Phone:           r.Phone,
		DateOfBirth:     r.DateOfBirth,
		Specialty:       r.Specialty,
		Hospital:        objectID(r.Hospital),
		AvailableSlots:  r.AvailableSlots,
		ConsultationFee: r.ConsultationFee,
		PaymentStatus:   r.PaymentStatus,
		PaymentReceipt:  r.PaymentReceipt,
		CreatedAt:       r.CreatedAt,
	}
}

type hospitalRow struct {
	ID             string `gorm:"primaryKey;size:24"`
	Name           string `gorm:"not null"`
	Location       string `gorm:"not null"`
	Address        string
	Specialties    []string `gorm:"serializer:json"`
	Contact        string   `gorm:"not null"`
	Email          string
	Website        string
	EmergencyPhone string
	Image          string
	Rating         float64
	IsActive       bool      `gorm:"index"`
	CreatedAt      time.Time `gorm:"index"`
}

func (hospitalRow) TableName() string { return "hospitals" }

func newHospitalRow(h *models.Hospital) *hospitalRow {
	return &hospitalRow{
		ID:             hexID(h.ID),
		Name:           h.Name,
		Location:       h.Location,
		Address:        h.Address,
		Specialties:    h.Specialties,
		Contact:        h.Contact,
		Email:          h.Email,
		Website:        h.Website,
		EmergencyPhone: h.EmergencyPhone,
		Image:          h.Image,
		Rating:         h.Rating,
		IsActive:       h.IsActive,
		CreatedAt:      h.CreatedAt,
	}
}

func (r *hospitalRow) model() models.Hospital {
	specialties := r.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	return models.Hospital{
		ID:             objectID(r.ID),
		Name:           r.Name,
		Location:       r.Location,
		Address:        r.Address,
		Specialties:    specialties,
		Contact:        r.Contact,
		Email:          r.Email,
		Website:        r.Website,
		EmergencyPhone: r.EmergencyPhone,
		Image:          r.Image,
		Rating:         r.Rating,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
	}
}

type doctorRow struct {
	ID              string `gorm:"primaryKey;size:24"`
	Name            string `gorm:"not null"`
	Specialty       string `gorm:"index:idx_doctor_specialty_hospital;not null"`
	Hospital        string `gorm:"index:idx_doctor_specialty_hospital;size:24;not null"`
	User            string `gorm:"size:24"`
	Qualification   string
	Experience      int
	AvailableSlots  []string `gorm:"serializer:json"`
	ConsultationFee float64
	Phone           string
	Email           string
	Image           string
	Rating          float64
	IsAvailable     bool
	CreatedAt       time.Time
}

func (doctorRow) TableName() string { return "doctors" }

func newDoctorRow(d *models.Doctor) *doctorRow {
	return &doctorRow{
		ID:              hexID(d.ID),
		Name:            d.Name,
		Specialty:       d.Specialty,
		Hospital:        hexID(d.Hospital),
		User:            hexID(d.User),
		Qualification:   d.Qualification,
		Experience:      d.Experience,
		AvailableSlots:  d.AvailableSlots,
		ConsultationFee: d.ConsultationFee,
		Phone:           d.Phone,
		Email:           d.Email,
		Image:           d.Image,
		Rating:          d.Rating,
		IsAvailable:     d.IsAvailable,
		CreatedAt:       d.CreatedAt,
	}
}

func (r *doctorRow) model() models.Doctor {
	slots := r.AvailableSlots
	if slots == nil {
		slots = []string{}
	}
	return models.Doctor{
		ID:              objectID(r.ID),
		Name:            r.Name,
		Specialty:       r.Specialty,
		Hospital:        objectID(r.Hospital),
		User:            objectID(r.User),
		Qualification:   r.Qualification,
		Experience:      r.Experience,
		AvailableSlots:  slots,
		ConsultationFee: r.ConsultationFee,
		Phone:           r.Phone,
		Email:           r.Email,
		Image:           r.Image,
		Rating:          r.Rating,
		IsAvailable:     r.IsAvailable,
		CreatedAt:       r.CreatedAt,
	}
}

type bookingRow struct {
	ID              string    `gorm:"primaryKey;size:24"`
	Patient         string    `gorm:"index:idx_booking_patient_status;size:24;not null"`
	Doctor          string    `gorm:"index:idx_booking_doctor_date;size:24;not null"`
	Hospital        string    `gorm:"size:24;not null"`
	AppointmentDate time.Time `gorm:"index:idx_booking_doctor_date"`
	AppointmentTime string
	Status          string `gorm:"index:idx_booking_patient_status"`
	Symptoms        string
	Notes           string
	PaymentStatus   string `gorm:"index"`
	PaymentAmount   float64
	PaymentReceipt  string
	PaymentDate     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (bookingRow) TableName() string { return "bookings" }

func newBookingRow(b *models.Booking) *bookingRow {
	return &bookingRow{
		ID:              hexID(b.ID),
		Patient:         hexID(b.Patient),
		Doctor:          hexID(b.Doctor),
		Hospital:        hexID(b.Hospital),
		AppointmentDate: b.AppointmentDate,
		AppointmentTime: b.AppointmentTime,
		Status:          b.Status,
		Symptoms:        b.Symptoms,
		Notes:           b.Notes,
		PaymentStatus:   b.PaymentStatus,
		PaymentAmount:   b.PaymentAmount,
		PaymentReceipt:  b.PaymentReceipt,
		PaymentDate:     b.PaymentDate,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (r *bookingRow) model() models.Booking {
	return models.Booking{
		ID:              objectID(r.ID),
		Patient:         objectID(r.Patient),
		Doctor:          objectID(r.Doctor),
		Hospital:        objectID(r.Hospital),
		AppointmentDate: r.AppointmentDate,
		AppointmentTime: r.AppointmentTime,
		Status:          r.Status,
		Symptoms:        r.Symptoms,
		Notes:           r.Notes,
		PaymentStatus:   r.PaymentStatus,
		PaymentAmount:   r.PaymentAmount,
		PaymentReceipt:  r.PaymentReceipt,
		PaymentDate:     r.PaymentDate,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
