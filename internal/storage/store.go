// Package storage persists the summaries of a pipeline run to a SQL
// database through gorm. SQLite and PostgreSQL are supported. Runs are only
// ever written; nothing is read back by the pipeline.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "procurekpi/internal/errors"
	"procurekpi/pkg/contracts/domain"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store writes report runs to the database
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to the database and migrates the schema
func Open(ctx context.Context, driver, dsn string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unsupported database driver %q", driver), nil)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open database", err).WithContext("driver", driver)
	}

	if driver != DriverPostgres {
		// an in-memory sqlite database exists per connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, apperrors.NewStorageError("failed to access connection pool", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	store := &Store{db: db, logger: log.With(slog.String("component", "storage"))}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wraps an existing gorm connection. The schema is not migrated.
func NewStore(db *gorm.DB, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, logger: log}
}

// DB returns the underlying gorm handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates every table
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return apperrors.NewStorageError("failed to migrate schema", err)
	}
	return nil
}

// SaveReport inserts the run and all of its summary rows in one transaction
func (s *Store) SaveReport(ctx context.Context, report *domain.Report) error {
	run := ReportRun{
		ID:                  report.RunID,
		Source:              report.Source,
		GeneratedAt:         report.GeneratedAt,
		FillStrategy:        report.Stats.FillStrategy,
		RowsLoaded:          report.Stats.RowsLoaded,
		UnparsedDates:       report.Stats.UnparsedOrderDates + report.Stats.UnparsedDeliveries,
		ForwardFilled:       report.Stats.ForwardFilled,
		Imputed:             report.Stats.Imputed,
		UndefinedDefectRate: report.Stats.UndefinedDefectRate,
		DurationMillis:      report.Stats.Duration.Milliseconds(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		if risks := riskRows(report); len(risks) > 0 {
			if err := tx.CreateInBatches(risks, 500).Error; err != nil {
				return fmt.Errorf("insert supplier risks: %w", err)
			}
		}
		if savings := savingsRows(report); len(savings) > 0 {
			if err := tx.CreateInBatches(savings, 500).Error; err != nil {
				return fmt.Errorf("insert supplier savings: %w", err)
			}
		}
		if trends := trendRows(report); len(trends) > 0 {
			if err := tx.CreateInBatches(trends, 500).Error; err != nil {
				return fmt.Errorf("insert price trends: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewStorageError("failed to save report", err).WithContext("run_id", report.RunID)
	}

	s.logger.InfoContext(ctx, "Report saved to database",
		slog.String("run_id", report.RunID),
		slog.Int("suppliers", len(report.Savings)),
		slog.Int("months", len(report.Trends)))
	return nil
}

// Close releases the connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func riskRows(report *domain.Report) []SupplierRiskRow {
	rows := make([]SupplierRiskRow, 0, len(report.Risk))
	for i, r := range report.Risk {
		rows = append(rows, SupplierRiskRow{
			RunID:           report.RunID,
			Supplier:        r.Supplier,
			Rank:            i + 1,
			TotalOrders:     r.TotalOrders,
			HighDefectCount: r.HighDefectCount,
			DelayedCount:    r.DelayedCount,
			DefectRatePct:   r.DefectRatePct,
			DelayRatePct:    r.DelayRatePct,
		})
	}
	return rows
}

func savingsRows(report *domain.Report) []SupplierSavingsRow {
	rows := make([]SupplierSavingsRow, 0, len(report.Savings))
	for i, s := range report.Savings {
		rows = append(rows, SupplierSavingsRow{
			RunID:          report.RunID,
			Supplier:       s.Supplier,
			Rank:           i + 1,
			TotalOrders:    s.TotalOrders,
			TotalQuantity:  s.TotalQuantity,
			TotalCost:      s.TotalCost,
			NegotiatedCost: s.NegotiatedCost,
			TotalSavings:   s.TotalSavings,
			SavingsPct:     s.SavingsPct,
		})
	}
	return rows
}

func trendRows(report *domain.Report) []MonthlyPriceTrendRow {
	rows := make([]MonthlyPriceTrendRow, 0, len(report.Trends))
	for _, t := range report.Trends {
		rows = append(rows, MonthlyPriceTrendRow{
			RunID:              report.RunID,
			Month:              t.Month,
			AvgUnitPrice:       t.AvgUnitPrice,
			AvgNegotiatedPrice: t.AvgNegotiatedPrice,
			OrderCount:         t.OrderCount,
		})
	}
	return rows
}

// Sink adapts a Store to the report sink interface
type Sink struct {
	store *Store
}

// NewSink creates a database sink over store
func NewSink(store *Store) *Sink {
	return &Sink{store: store}
}

// Name implements the sink interface
func (s *Sink) Name() string { return "sql" }

// Write implements the sink interface
func (s *Sink) Write(ctx context.Context, report *domain.Report) error {
	return s.store.SaveReport(ctx, report)
}

// Close closes the underlying store
func (s *Sink) Close() error {
	return s.store.Close()
}
