package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"w3bbot/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("storage: not found")

// Store is the durable record store for applications and the admin
// allow-list, backed by a SQLite file.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Application{}, &models.Admin{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateApplication persists a completed draft as a pending application and
// returns the assigned id.
func (s *Store) CreateApplication(ctx context.Context, d models.Draft) (uint, error) {
	app := models.Application{
		TelegramID:          d.TelegramID,
		Username:            d.Username,
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		PhoneNumber:         d.PhoneNumber,
		Age:                 d.Age,
		Occupation:          d.Occupation,
		InterestTopic:       d.InterestTopic,
		Source:              d.Source,
		Language:            d.Language,
		SubscribedToChannel: d.Subscribed.Bool(),
		RulesAgreed:         d.RulesAgreed,
		Status:              models.StatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&app).Error; err != nil {
		return 0, err
	}
	return app.ID, nil
}

func (s *Store) GetApplication(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	err := s.db.WithContext(ctx).First(&app, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListApplications returns all applications, newest first.
func (s *Store) ListApplications(ctx context.Context) ([]models.Application, error) {
	var apps []models.Application
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&apps).Error
	return apps, err
}

// UpdateApplicationStatus applies a decision unconditionally and stamps the
// processing time. The returned count is zero when the id does not exist.
// Concurrent decisions on the same row are serialized by the database; the
// last write wins.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id uint, status models.ApplicationStatus, notes string) (int64, error) {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       status,
		"processed_at": &now,
		"admin_notes":  notes,
	})
	return res.RowsAffected, res.Error
}

func (s *Store) CountByStatus(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := s.db.WithContext(ctx).Model(&models.Application{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	type pair struct {
		Status models.ApplicationStatus
		N      int64
	}
	var rows []pair
	err := s.db.WithContext(ctx).Model(&models.Application{}).
		Select("status, count(*) as n").Group("status").Scan(&rows).Error
	if err != nil {
		return stats, err
	}
	for _, r := range rows {
		switch r.Status {
		case models.StatusPending:
			stats.Pending = r.N
		case models.StatusApproved:
			stats.Approved = r.N
		case models.StatusRejected:
			stats.Rejected = r.N
		}
	}
	return stats, nil
}

func (s *Store) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	var admin models.Admin
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	var admins []models.Admin
	err := s.db.WithContext(ctx).Find(&admins).Error
	return admins, err
}

// SeedAdmin inserts an admin if absent; an existing row is left untouched.
func (s *Store) SeedAdmin(ctx context.Context, telegramID int64, username, firstName string) error {
	admin := models.Admin{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "telegram_id"}}, DoNothing: true}).
		Create(&admin).Error
}
