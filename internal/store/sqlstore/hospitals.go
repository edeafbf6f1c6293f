package sqlstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/tenaflow/tena-api/internal/models"
)

func (s *Store) CreateHospitals(ctx context.Context, hs ...*models.Hospital) error {
	if len(hs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]*hospitalRow, len(hs))
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
		rows[i] = newHospitalRow(h)
	}
	if err := s.db.WithContext(ctx).Create(rows).Error; err != nil {
		return fmt.Errorf("create hospitals: %w", translate(err))
	}
	return nil
}

func (s *Store) FindHospital(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error) {
	var row hospitalRow
	if err := s.first(ctx, &row, id); err != nil {
		return nil, fmt.Errorf("find hospital: %w", err)
	}
	h := row.model()
	return &h, nil
}

func (s *Store) ListHospitals(ctx context.Context, f models.HospitalFilter) ([]models.Hospital, error) {
	var rows []hospitalRow
	if err := hospitalScope(f)(s.db.WithContext(ctx)).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list hospitals: %w", err)
	}
	hospitals := make([]models.Hospital, len(rows))
	for i := range rows {
		hospitals[i] = rows[i].model()
	}
	return hospitals, nil
}

// hospitalScope matches the specialty substring against each element of the
// stored list.
func hospitalScope(f models.HospitalFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.ActiveOnly {
			db = db.Where("is_active = ?", true)
		}
		if f.Specialty != "" {
			db = db.Where("EXISTS (SELECT 1 FROM json_each(hospitals.specialties) "+
				"WHERE LOWER(json_each.value) LIKE ? ESCAPE '\\')", containsFold(f.Specialty))
		}
		return db
	}
}

func (s *Store) UpdateHospital(ctx context.Context, id primitive.ObjectID, u models.HospitalUpdate) (*models.Hospital, error) {
	h, err := s.FindHospital(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Apply(h)
	if err := s.db.WithContext(ctx).Save(newHospitalRow(h)).Error; err != nil {
		return nil, fmt.Errorf("update hospital: %w", translate(err))
	}
	return h, nil
}

func (s *Store) DeleteHospital(ctx context.Context, id primitive.ObjectID) error {
	if err := s.deleteByID(ctx, &hospitalRow{}, id); err != nil {
		return fmt.Errorf("delete hospital: %w", err)
	}
	return nil
}

func (s *Store) CountHospitals(ctx context.Context) (int64, error) {
	return s.count(ctx, &hospitalRow{}, nil)
}
