package sqlstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/tenaflow/tena-api/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(newUserRow(u)).Error; err != nil {
		return fmt.Errorf("create user %s: %w", u.Email, translate(err))
	}
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var row userRow
	if err := s.first(ctx, &row, id); err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u := row.model()
	return &u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", translate(err))
	}
	u := row.model()
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, p models.ProfileUpdate) (*models.User, error) {
	return s.updateUser(ctx, id, func(r *userRow) {
		if p.Name != nil {
			r.Name = *p.Name
		}
		if p.Phone != nil {
			r.Phone = *p.Phone
		}
		if p.DateOfBirth != nil {
			r.DateOfBirth = p.DateOfBirth
		}
	})
}

func (s *Store) UpdateUserRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	return s.updateUser(ctx, id, func(r *userRow) { r.Role = role })
}

func (s *Store) updateUser(ctx context.Context, id primitive.ObjectID, mutate func(*userRow)) (*models.User, error) {
	var row userRow
	if err := s.first(ctx, &row, id); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	mutate(&row)
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", translate(err))
	}
	u := row.model()
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	var rows []userRow
	err := roleScope(role)(s.db.WithContext(ctx)).
		Omit("password").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]models.User, len(rows))
	for i := range rows {
		users[i] = rows[i].model()
	}
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context, role string) (int64, error) {
	return s.count(ctx, &userRow{}, roleScope(role))
}

func roleScope(role string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if role == "" {
			return db
		}
		return db.Where("role = ?", role)
	}
}
