// Package store persists assignment records in PostgreSQL so several service
// instances can share one curated dataset.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	ouidb "github.com/pre-history/mac-oui"
)

const insertBatchSize = 1000

// Assignment is one stored record. Prefix is kept in the canonical CSV form so
// rows read back go through the same validation as file rows.
type Assignment struct {
	ID             uint   `gorm:"primaryKey"`
	Prefix         string `gorm:"size:24;uniqueIndex;not null"`
	IsPrivate      bool   `gorm:"not null;default:false"`
	CompanyName    string `gorm:"not null;index"`
	CompanyAddress string
	CountryCode    string `gorm:"size:2"`
	BlockSize      string `gorm:"size:8"`
	DateCreated    string `gorm:"size:10"`
	DateUpdated    string `gorm:"size:10"`
	UpdatedAt      time.Time
}

func (Assignment) TableName() string { return "oui_assignments" }

type Store struct {
	db *gorm.DB
}

// Open connects to PostgreSQL and migrates the schema.
func Open(dsn string) (*Store, error) {
	silent := logger.New(
		log.Default(),
		logger.Config{
			LogLevel: logger.Silent,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: silent,
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&Assignment{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRecords upserts recs keyed on prefix.
func (s *Store) SaveRecords(ctx context.Context, recs []ouidb.Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	rows := make([]Assignment, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, FromRecord(r))
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "prefix"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_private", "company_name", "company_address", "country_code",
			"block_size", "date_created", "date_updated", "updated_at",
		}),
	}).CreateInBatches(&rows, insertBatchSize).Error
	if err != nil {
		return 0, fmt.Errorf("upsert assignments: %w", err)
	}
	return len(rows), nil
}

// ReplaceRecords makes recs the whole stored dataset in one transaction.
// Stored prefixes missing from recs are deleted and ids follow the order of
// recs, so LoadRows returns them in that order.
func (s *Store) ReplaceRecords(ctx context.Context, recs []ouidb.Record) (int, error) {
	if len(recs) == 0 {
		return 0, errors.New("refusing to replace assignments with an empty set")
	}
	rows := make([]Assignment, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, FromRecord(r))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Assignment{}).Error; err != nil {
			return fmt.Errorf("clear assignments: %w", err)
		}
		if err := tx.CreateInBatches(&rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert assignments: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// LoadRows returns every stored assignment in insertion order.
func (s *Store) LoadRows(ctx context.Context) ([]ouidb.RawRow, error) {
	var stored []Assignment
	if err := s.db.WithContext(ctx).Order("id").Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	rows := make([]ouidb.RawRow, 0, len(stored))
	for i, a := range stored {
		rows = append(rows, a.RawRow(i+1))
	}
	return rows, nil
}

func FromRecord(r ouidb.Record) Assignment {
	row := ouidb.RowFromRecord(r)
	return Assignment{
		Prefix:         row.Prefix,
		IsPrivate:      r.IsPrivate,
		CompanyName:    row.CompanyName,
		CompanyAddress: row.CompanyAddress,
		CountryCode:    row.CountryCode,
		BlockSize:      row.BlockSize,
		DateCreated:    row.DateCreated,
		DateUpdated:    row.DateUpdated,
	}
}

// RawRow converts a stored assignment back into a builder row; line is the
// position reported in build warnings.
func (a Assignment) RawRow(line int) ouidb.RawRow {
	private := "0"
	if a.IsPrivate {
		private = "1"
	}
	return ouidb.RawRow{
		Line:           line,
		Prefix:         a.Prefix,
		IsPrivate:      private,
		CompanyName:    a.CompanyName,
		CompanyAddress: a.CompanyAddress,
		CountryCode:    a.CountryCode,
		BlockSize:      a.BlockSize,
		DateCreated:    a.DateCreated,
		DateUpdated:    a.DateUpdated,
	}
}
