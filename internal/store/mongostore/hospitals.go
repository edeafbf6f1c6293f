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

func (s *Store) CreateHospitals(ctx context.Context, hs ...*models.Hospital) error {
	if len(hs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]any, len(hs))
	for i, h := range hs {
		if h.ID.IsZero() {
			h.ID = primitive.NewObjectID()
		}
		if h.CreatedAt.IsZero() {
			h.CreatedAt = now
		}
		if h.Specialties == nil {
			h.Specialties = []string{}
		}
		docs[i] = h
	}
	if _, err := s.db.Collection(hospitalsCollection).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("create hospitals: %w", err)
	}
	return nil
}

func (s *Store) FindHospital(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error) {
	var h models.Hospital
	if err := s.findOne(ctx, hospitalsCollection, bson.M{"_id": id}, &h); err != nil {
		return nil, fmt.Errorf("find hospital: %w", err)
	}
	return &h, nil
}

func (s *Store) ListHospitals(ctx context.Context, f models.HospitalFilter) ([]models.Hospital, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	hospitals := make([]models.Hospital, 0)
	if err := s.findMany(ctx, hospitalsCollection, hospitalFilter(f), &hospitals, opts); err != nil {
		return nil, fmt.Errorf("list hospitals: %w", err)
	}
	return hospitals, nil
}

func hospitalFilter(f models.HospitalFilter) bson.M {
	q := bson.M{}
	if f.ActiveOnly {
		q["isActive"] = true
	}
	if f.Specialty != "" {
		q["specialties"] = containsFold(f.Specialty)
	}
	return q
}

func (s *Store) UpdateHospital(ctx context.Context, id primitive.ObjectID, u models.HospitalUpdate) (*models.Hospital, error) {
	h, err := s.FindHospital(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Apply(h)
	if err := s.replace(ctx, hospitalsCollection, id, h); err != nil {
		return nil, fmt.Errorf("update hospital: %w", err)
	}
	return h, nil
}

func (s *Store) DeleteHospital(ctx context.Context, id primitive.ObjectID) error {
	if err := s.deleteByID(ctx, hospitalsCollection, id); err != nil {
		return fmt.Errorf("delete hospital: %w", err)
	}
	return nil
}

func (s *Store) CountHospitals(ctx context.Context) (int64, error) {
	return s.db.Collection(hospitalsCollection).CountDocuments(ctx, bson.M{})
}
