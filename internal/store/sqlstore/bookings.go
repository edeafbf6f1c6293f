package sqlstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/store"
)

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(newBookingRow(b)).Error; err != nil {
		return fmt.Errorf("create booking: %w", translate(err))
	}
	return nil
}

func (s *Store) FindBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var row bookingRow
	if err := s.first(ctx, &row, id); err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	b := row.model()
	return &b, nil
}

func (s *Store) SaveBooking(ctx context.Context, b *models.Booking) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&bookingRow{}).Where("id = ?", hexID(b.ID)).Count(&n).Error; err != nil {
		return fmt.Errorf("save booking: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("save booking: %w", store.ErrNotFound)
	}
	if err := s.db.WithContext(ctx).Save(newBookingRow(b)).Error; err != nil {
		return fmt.Errorf("save booking: %w", translate(err))
	}
	return nil
}

func (s *Store) ListBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	q := bookingScope(f)(s.db.WithContext(ctx)).Order(bookingOrder(f.Sort))
	if f.Limit > 0 {
		q = q.Limit(int(f.Limit))
	}
	var rows []bookingRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	bookings := make([]models.Booking, len(rows))
	for i := range rows {
		bookings[i] = rows[i].model()
	}
	return bookings, nil
}

func (s *Store) CountBookings(ctx context.Context, f models.BookingFilter) (int64, error) {
	return s.count(ctx, &bookingRow{}, bookingScope(f))
}

func bookingScope(f models.BookingFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !f.Patient.IsZero() {
			db = db.Where("patient = ?", f.Patient.Hex())
		}
		if !f.Doctor.IsZero() {
			db = db.Where("doctor = ?", f.Doctor.Hex())
		}
		switch {
		case f.Status != "":
			db = db.Where("status = ?", f.Status)
		case f.ExcludeStatus != "":
			db = db.Where("status <> ?", f.ExcludeStatus)
		}
		if f.PaymentStatus != "" {
			db = db.Where("payment_status = ?", f.PaymentStatus)
		}
		db = timeScope(db, "appointment_date", f.AppointmentFrom, f.AppointmentTo)
		return timeScope(db, "created_at", f.CreatedFrom, f.CreatedTo)
	}
}

func timeScope(db *gorm.DB, column string, from, to *time.Time) *gorm.DB {
	if from != nil {
		db = db.Where(column+" >= ?", from.UTC())
	}
	if to != nil {
		db = db.Where(column+" <= ?", to.UTC())
	}
	return db
}

// bookingOrder is always newest first; rows without the column sort last.
func bookingOrder(s models.BookingSort) string {
	switch s {
	case models.SortByAppointment:
		return "appointment_date DESC"
	case models.SortByPaymentDate:
		return "payment_date DESC"
	}
	return "created_at DESC"
}
