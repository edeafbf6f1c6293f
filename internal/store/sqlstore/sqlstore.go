// Package sqlstore implements store.Store with gorm on sqlite. With the
// default in-memory DSN it is the demo server's storage: nothing survives a
// restart, and the demo hospitals and doctors are seeded on every boot.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tenaflow/tena-api/internal/store"
)

// MemoryDSN is a private, process-wide in-memory database.
const MemoryDSN = "file:tena?mode=memory&cache=shared"

type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn and migrates the schema.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	level := gormlogger.Silent
	if log.Core().Enabled(zap.DebugLevel) {
		level = gormlogger.Info
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// A shared-cache memory database lives as long as one connection does;
	// a single connection also keeps sqlite's table locks out of the way.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.AutoMigrate(&userRow{}, &hospitalRow{}, &doctorRow{}, &bookingRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	log.Info("sqlite store ready", zap.String("dsn", dsn))
	return &Store{db: db, log: log}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) first(ctx context.Context, out any, id primitive.ObjectID) error {
	return translate(s.db.WithContext(ctx).Where("id = ?", hexID(id)).First(out).Error)
}

func (s *Store) count(ctx context.Context, model any, scope func(*gorm.DB) *gorm.DB) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(model)
	if scope != nil {
		q = scope(q)
	}
	err := q.Count(&n).Error
	return n, err
}

func hexID(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}

func objectID(hex string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsFold builds a case-insensitive LIKE pattern matching s anywhere.
func containsFold(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func (s *Store) deleteByID(ctx context.Context, model any, id primitive.ObjectID) error {
	res := s.db.WithContext(ctx).Where("id = ?", hexID(id)).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
