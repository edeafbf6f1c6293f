package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tenaflow/tena-api/internal/models"
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
	if _, err := s.db.Collection(bookingsCollection).InsertOne(ctx, b); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (s *Store) FindBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var b models.Booking
	if err := s.findOne(ctx, bookingsCollection, bson.M{"_id": id}, &b); err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &b, nil
}

func (s *Store) SaveBooking(ctx context.Context, b *models.Booking) error {
	if err := s.replace(ctx, bookingsCollection, b.ID, b); err != nil {
		return fmt.Errorf("save booking: %w", err)
	}
	return nil
}

func (s *Store) ListBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: bookingSortField(f.Sort), Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	bookings := make([]models.Booking, 0)
	if err := s.findMany(ctx, bookingsCollection, bookingFilter(f), &bookings, opts); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (s *Store) CountBookings(ctx context.Context, f models.BookingFilter) (int64, error) {
	return s.db.Collection(bookingsCollection).CountDocuments(ctx, bookingFilter(f))
}

func bookingFilter(f models.BookingFilter) bson.M {
	q := bson.M{}
	if !f.Patient.IsZero() {
		q["patient"] = f.Patient
	}
	if !f.Doctor.IsZero() {
		q["doctor"] = f.Doctor
	}
	switch {
	case f.Status != "":
		q["status"] = f.Status
	case f.ExcludeStatus != "":
		q["status"] = bson.M{"$ne": f.ExcludeStatus}
	}
	if f.PaymentStatus != "" {
		q["paymentStatus"] = f.PaymentStatus
	}
	if r := timeRange(f.AppointmentFrom, f.AppointmentTo); r != nil {
		q["appointmentDate"] = r
	}
	if r := timeRange(f.CreatedFrom, f.CreatedTo); r != nil {
		q["createdAt"] = r
	}
	return q
}

func bookingSortField(s models.BookingSort) string {
	switch s {
	case models.SortByAppointment:
		return "appointmentDate"
	case models.SortByPaymentDate:
		return "paymentDate"
	}
	return "createdAt"
}
