package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/jsamuelsen/quote-engine/internal/adapters/wire"
	"github.com/jsamuelsen/quote-engine/internal/domain"
)

// quotationRecord is one row per quotation. Document holds the legacy JSON;
// the numeric columns duplicate its totals for reporting queries.
type quotationRecord struct {
	ID            string         `gorm:"primaryKey;size:128"`
	Document      datatypes.JSON `gorm:"not null"`
	ServiceCount  int
	Subtotal      float64
	GSTPercentage float64
	GrandTotal    float64
	UpdatedAt     time.Time
}

// GormStore persists quotations in a relational table through gorm.
type GormStore struct {
	db    *gorm.DB
	name  string
	table string
}

// OpenGorm connects with the sqlite or postgres dialector and migrates table.
// verbose turns on gorm's SQL logging.
func OpenGorm(driver, dsn, table string, verbose bool) (*GormStore, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", driver)
	}

	level := logger.Silent
	if verbose {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", driver, err)
	}

	return NewGormStore(db, driver, table)
}

// NewGormStore wraps an open connection and migrates table.
func NewGormStore(db *gorm.DB, name, table string) (*GormStore, error) {
	if table == "" {
		table = "quotations"
	}

	if err := db.Table(table).AutoMigrate(&quotationRecord{}); err != nil {
		return nil, fmt.Errorf("migrating %s: %w", table, err)
	}

	return &GormStore{db: db, name: name, table: table}, nil
}

// Name implements ports.QuotationStore.
func (s *GormStore) Name() string { return s.name }

// Sync upserts the row for q.ID.
func (s *GormStore) Sync(ctx context.Context, q *domain.Quotation) error {
	if q == nil {
		return domain.NewValidationError("quotation", "is required")
	}

	doc, err := wire.Marshal(q)
	if err != nil {
		return fmt.Errorf("encoding quotation %s: %w", q.ID, err)
	}

	rec := quotationRecord{
		ID:            q.ID,
		Document:      datatypes.JSON(doc),
		ServiceCount:  len(q.Services),
		Subtotal:      q.Subtotal,
		GSTPercentage: q.GSTPercentage,
		GrandTotal:    q.GrandTotal,
		UpdatedAt:     time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Table(s.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&rec).Error
	if err != nil {
		return domain.NewUnavailableError(s.name, err.Error())
	}

	return nil
}

// Load reads the row for id.
func (s *GormStore) Load(ctx context.Context, id string) (*domain.Quotation, error) {
	var rec quotationRecord

	err := s.db.WithContext(ctx).Table(s.table).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("quotation", id)
	}
	if err != nil {
		return nil, domain.NewUnavailableError(s.name, err.Error())
	}

	q, err := wire.Unmarshal(rec.Document)
	if err != nil {
		return nil, fmt.Errorf("decoding quotation %s: %w", id, err)
	}

	q.ID = rec.ID

	return q, nil
}

// Check pings the database.
func (s *GormStore) Check(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
