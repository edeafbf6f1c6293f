package sqlstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/tenaflow/tena-api/internal/models"
)

func (s *Store) CreateDoctors(ctx context.Context, ds ...*models.Doctor) error {
	if len(ds) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]*doctorRow, len(ds))
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
		rows[i] = newDoctorRow(d)
	}
	if err := s.db.WithContext(ctx).Create(rows).Error; err != nil {
		return fmt.Errorf("create doctors: %w", translate(err))
	}
	return nil
}

func (s *Store) FindDoctor(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	var row doctorRow
	if err := s.first(ctx, &row, id); err != nil {
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	d := row.model()
	return &d, nil
}

func (s *Store) ListDoctors(ctx context.Context, f models.DoctorFilter) ([]models.Doctor, error) {
	var rows []doctorRow
	if err := doctorScope(f)(s.db.WithContext(ctx)).Order(doctorOrder(f.Sort)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	doctors := make([]models.Doctor, len(rows))
	for i := range rows {
		doctors[i] = rows[i].model()
	}
	return doctors, nil
}

func doctorScope(f models.DoctorFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.AvailableOnly {
			db = db.Where("is_available = ?", true)
		}
		if !f.HospitalID.IsZero() {
			db = db.Where("hospital = ?", f.HospitalID.Hex())
		}
		if f.Specialty != "" {
			db = db.Where("LOWER(specialty) LIKE ? ESCAPE '\\'", containsFold(f.Specialty))
		}
		if len(f.Specialties) > 0 {
			db = db.Where("specialty IN ?", f.Specialties)
		}
		return db
	}
}

func doctorOrder(s models.DoctorSort) string {
	if s == models.SortBySpecialty {
		return "specialty ASC"
	}
	return "rating DESC, created_at DESC"
}

func (s *Store) UpdateDoctor(ctx context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error) {
	d, err := s.mutateDoctor(ctx, id, u.Apply)
	if err != nil {
		return nil, fmt.Errorf("update doctor: %w", err)
	}
	return d, nil
}

func (s *Store) AddSlot(ctx context.Context, id primitive.ObjectID, slot string) error {
	return s.updateSlots(ctx, id, func(d *models.Doctor) {
		if !d.HasSlot(slot) {
			d.AvailableSlots = append(d.AvailableSlots, slot)
		}
	})
}

func (s *Store) RemoveSlot(ctx context.Context, id primitive.ObjectID, slot string) error {
	return s.updateSlots(ctx, id, func(d *models.Doctor) {
		kept := d.AvailableSlots[:0]
		for _, v := range d.AvailableSlots {
			if v != slot {
				kept = append(kept, v)
			}
		}
		d.AvailableSlots = kept
	})
}

func (s *Store) updateSlots(ctx context.Context, id primitive.ObjectID, mutate func(*models.Doctor)) error {
	if _, err := s.mutateDoctor(ctx, id, mutate); err != nil {
		return fmt.Errorf("update slots: %w", err)
	}
	return nil
}

// mutateDoctor runs the read-modify-write in one transaction so profile
// edits and slot changes on the same doctor do not lose each other's writes.
func (s *Store) mutateDoctor(ctx context.Context, id primitive.ObjectID, mutate func(*models.Doctor)) (*models.Doctor, error) {
	var d models.Doctor
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row doctorRow
		if err := tx.Where("id = ?", hexID(id)).First(&row).Error; err != nil {
			return translate(err)
		}
		d = row.model()
		mutate(&d)
		return translate(tx.Save(newDoctorRow(&d)).Error)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) DeleteDoctor(ctx context.Context, id primitive.ObjectID) error {
	if err := s.deleteByID(ctx, &doctorRow{}, id); err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	return nil
}

func (s *Store) CountDoctors(ctx context.Context) (int64, error) {
	return s.count(ctx, &doctorRow{}, nil)
}
