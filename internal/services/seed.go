package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/store"
	"github.com/tenaflow/tena-api/internal/utils"
)

var ErrAlreadySeeded = errors.New("data already exists")

func demoHospitals() []*models.Hospital {
	return []*models.Hospital{
		{
			Name:           "Tikur Anbessa Specialized Hospital",
			Location:       "Addis Ababa",
			Address:        "Mexico Square, Addis Ababa",
			Specialties:    []string{"General", "Surgery", "Pediatrics", "Cardiology", "Oncology"},
			Contact:        "011-123-4567",
			EmergencyPhone: "907",
			Rating:         4.5,
			IsActive:       true,
		},
		{
			Name:           "St. Paulos Hospital",
			Location:       "Addis Ababa",
			Address:        "Kirkos, Addis Ababa",
			Specialties:    []string{"General", "Orthopedics", "Neurology", "Gastroenterology"},
			Contact:        "011-156-7890",
			EmergencyPhone: "939",
			Rating:         4.3,
			IsActive:       true,
		},
		{
			Name:           "Black Lion Hospital",
			Location:       "Addis Ababa",
			Address:        "Gurd Shola, Addis Ababa",
			Specialties:    []string{"Cardiology", "Cancer Center", "Emergency", "Surgery"},
			Contact:        "011-234-5678",
			EmergencyPhone: "907",
			Rating:         4.7,
			IsActive:       true,
		},
	}
}

// Seed inserts the demo hospitals and their doctors. It refuses to run
// once any hospital exists.
func Seed(ctx context.Context, st store.Store) (int, error) {
	n, err := st.CountHospitals(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, ErrAlreadySeeded
	}

	hospitals := demoHospitals()
	if err := st.CreateHospitals(ctx, hospitals...); err != nil {
		return 0, err
	}

	doctors := []*models.Doctor{
		{
			Name:            "Dr. Alemayehu Worku",
			Specialty:       GeneralPhysician,
			Hospital:        hospitals[0].ID,
			Qualification:   "MD, MPH",
			Experience:      15,
			AvailableSlots:  []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"},
			ConsultationFee: 100,
			Rating:          4.8,
			IsAvailable:     true,
		},
		{
			Name:            "Dr. Tigist Haile",
			Specialty:       "Cardiologist",
			Hospital:        hospitals[2].ID,
			Qualification:   "MD, Cardiology Specialist",
			Experience:      12,
			AvailableSlots:  []string{"10:00", "11:00", "14:00", "15:00"},
			ConsultationFee: 200,
			Rating:          4.9,
			IsAvailable:     true,
		},
		{
			Name:            "Dr. Bekele Dessalegn",
			Specialty:       "Pediatrician",
			Hospital:        hospitals[1].ID,
			Qualification:   "MD, Pediatrics",
			Experience:      8,
			AvailableSlots:  []string{"09:00", "10:00", "11:00", "12:00", "13:00"},
			ConsultationFee: 80,
			Rating:          4.6,
			IsAvailable:     true,
		},
	}
	if err := st.CreateDoctors(ctx, doctors...); err != nil {
		return 0, err
	}
	return len(hospitals), nil
}

// EnsureSuperAdmin creates the superadmin account unless a user with that
// email already exists.
func EnsureSuperAdmin(ctx context.Context, st store.Store, name, email, password string, log *zap.Logger) error {
	_, err := st.FindUserByEmail(ctx, email)
	if err == nil {
		log.Debug("superadmin already present", zap.String("email", email))
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.User{
		Name:            name,
		Email:           models.NormalizeEmail(email),
		Password:        hash,
		Role:            models.RoleSuperAdmin,
		ConsultationFee: models.DefaultConsultationFee,
		PaymentStatus:   models.PaymentPending,
	}
	if err := st.CreateUser(ctx, admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil
		}
		return err
	}
	log.Info("superadmin created", zap.String("email", admin.Email))
	return nil
}
