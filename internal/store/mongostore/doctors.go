package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/store"
)

func (s *Store) CreateDoctors(ctx context.Context, ds ...*models.Doctor) error {
	if len(ds) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]any, len(ds))
	for i, d := range ds {
		if d.ID.IsZero() {
			d.ID = primitive.NewObjectID()
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		if d.AvailableSlots == nil {
			d.AvailableSlots = []string{}
		}
		docs[i] = d
	}
	if _, err := s.db.Collection(doctorsCollection).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("create doctors: %w", err)
	}
	return nil
}

func (s *Store) FindDoctor(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	var d models.Doctor
	if err := s.findOne(ctx, doctorsCollection, bson.M{"_id": id}, &d); err != nil {
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	return &d, nil
}

func (s *Store) ListDoctors(ctx context.Context, f models.DoctorFilter) ([]models.Doctor, error) {
	opts := options.Find().SetSort(doctorSort(f.Sort))
	doctors := make([]models.Doctor, 0)
	if err := s.findMany(ctx, doctorsCollection, doctorFilter(f), &doctors, opts); err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

func doctorFilter(f models.DoctorFilter) bson.M {
	q := bson.M{}
	if f.AvailableOnly {
		q["isAvailable"] = true
	}
	if !f.HospitalID.IsZero() {
		q["hospital"] = f.HospitalID
	}
	var specialty bson.A
	if f.Specialty != "" {
		specialty = append(specialty, bson.M{"specialty": containsFold(f.Specialty)})
	}
	if len(f.Specialties) > 0 {
		specialty = append(specialty, bson.M{"specialty": bson.M{"$in": f.Specialties}})
	}
	switch len(specialty) {
	case 1:
		for k, v := range specialty[0].(bson.M) {
			q[k] = v
		}
	case 2:
		q["$and"] = specialty
	}
	return q
}

func doctorSort(s models.DoctorSort) bson.D {
	if s == models.SortBySpecialty {
		return bson.D{{Key: "specialty", Value: 1}}
	}
	return bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}}
}

// UpdateDoctor sets only the fields present in u, leaving concurrent slot
// changes from bookings intact.
func (s *Store) UpdateDoctor(ctx context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error) {
	set := doctorSet(u)
	if len(set) == 0 {
		return s.FindDoctor(ctx, id)
	}
	var d models.Doctor
	if err := s.setAndReturn(ctx, doctorsCollection, id, set, &d); err != nil {
		return nil, fmt.Errorf("update doctor: %w", err)
	}
	return &d, nil
}

// doctorSet builds the $set document for u, normalized the same way Apply
// normalizes a loaded doctor.
func doctorSet(u models.DoctorUpdate) bson.M {
	var d models.Doctor
	u.Apply(&d)

	set := bson.M{}
	add := func(present bool, key string, value any) {
		if present {
			set[key] = value
		}
	}
	add(u.Name != nil, "name", d.Name)
	add(u.Specialty != nil, "specialty", d.Specialty)
	add(u.Qualification != nil, "qualification", d.Qualification)
	add(u.Experience != nil, "experience", d.Experience)
	add(u.AvailableSlots != nil, "availableSlots", d.AvailableSlots)
	add(u.ConsultationFee != nil, "consultationFee", d.ConsultationFee)
	add(u.Phone != nil, "phone", d.Phone)
	add(u.Email != nil, "email", d.Email)
	add(u.Image != nil, "image", d.Image)
	add(u.Rating != nil, "rating", d.Rating)
	add(u.IsAvailable != nil, "isAvailable", d.IsAvailable)
	return set
}

func (s *Store) AddSlot(ctx context.Context, id primitive.ObjectID, slot string) error {
	return s.updateSlots(ctx, id, bson.M{"$addToSet": bson.M{"availableSlots": slot}})
}

func (s *Store) RemoveSlot(ctx context.Context, id primitive.ObjectID, slot string) error {
	return s.updateSlots(ctx, id, bson.M{"$pull": bson.M{"availableSlots": slot}})
}

func (s *Store) updateSlots(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := s.db.Collection(doctorsCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update slots: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update slots: %w", store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteDoctor(ctx context.Context, id primitive.ObjectID) error {
	if err := s.deleteByID(ctx, doctorsCollection, id); err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	return nil
}

func (s *Store) CountDoctors(ctx context.Context) (int64, error) {
	return s.db.Collection(doctorsCollection).CountDocuments(ctx, bson.M{})
}
