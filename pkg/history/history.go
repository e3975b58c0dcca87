// Package history persists ingestion runs so benchmark results can be
// compared across commits after the scrape snapshot has moved on.
package history

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/benchmark"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/config"
)

// Store provides persistence for ingestion runs.
type Store interface {
	Start(ctx context.Context) error
	Stop() error

	// RecordRun persists a run and its benchmark records, filling in
	// run.ID on success.
	RecordRun(ctx context.Context, run *Run, records []benchmark.Record) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// GetRun returns one run and its benchmark records.
	GetRun(ctx context.Context, id uint) (*Run, []Benchmark, error)
}

// Compile-time interface check.
var _ Store = (*store)(nil)

type store struct {
	log logrus.FieldLogger
	cfg *config.DatabaseConfig
	db  *gorm.DB
}

// NewStore creates a new Store backed by the configured database driver.
func NewStore(
	log logrus.FieldLogger,
	cfg *config.DatabaseConfig,
) Store {
	return &store{
		log: log.WithField("component", "history"),
		cfg: cfg,
	}
}

// Start opens the database connection and runs migrations.
func (s *store) Start(ctx context.Context) error {
	var dialector gorm.Dialector

	gormCfg := &gorm.Config{
		Logger: logger.Discard,
	}

	switch s.cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(s.cfg.SQLite.Path)
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			s.cfg.Postgres.Host,
			s.cfg.Postgres.Port,
			s.cfg.Postgres.User,
			s.cfg.Postgres.Password,
			s.cfg.Postgres.Database,
			s.cfg.Postgres.SSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver: %s", s.cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	s.db = db

	if err := s.db.WithContext(ctx).AutoMigrate(
		&Run{},
		&Benchmark{},
	); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	s.log.WithField("driver", s.cfg.Driver).Info("History store started")

	return nil
}

// Stop closes the underlying database connection.
func (s *store) Stop() error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting database handle: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	return nil
}

// RecordRun persists a run and its records in one transaction.
func (s *store) RecordRun(
	ctx context.Context,
	run *Run,
	records []benchmark.Record,
) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("creating run: %w", err)
		}

		if len(records) == 0 {
			return nil
		}

		rows := make([]Benchmark, 0, len(records))
		for _, rec := range records {
			rows = append(rows, Benchmark{
				RunID:                 run.ID,
				TestName:              rec.TestName,
				ClassName:             rec.ClassName,
				MethodName:            rec.MethodName,
				MinTimeNs:             rec.MinTimeNs,
				MedianTimeNs:          rec.MedianTimeNs,
				MaxTimeNs:             rec.MaxTimeNs,
				MinAllocationCount:    rec.MinAllocationCount,
				MedianAllocationCount: rec.MedianAllocationCount,
				MaxAllocationCount:    rec.MaxAllocationCount,
				Iterations:            rec.Iterations,
				Device:                rec.Device,
				Brand:                 rec.Brand,
			})
		}

		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("creating benchmark rows: %w", err)
		}

		return nil
	})
}

// ListRuns returns the most recent runs, newest first.
func (s *store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []Run
	if err := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	return runs, nil
}

// GetRun returns one run with its benchmark records in insertion order.
func (s *store) GetRun(ctx context.Context, id uint) (*Run, []Benchmark, error) {
	var run Run
	if err := s.db.WithContext(ctx).
		First(&run, id).Error; err != nil {
		return nil, nil, fmt.Errorf("loading run %d: %w", id, err)
	}

	var rows []Benchmark
	if err := s.db.WithContext(ctx).
		Where("run_id = ?", id).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("loading benchmarks for run %d: %w", id, err)
	}

	return &run, rows, nil
}
