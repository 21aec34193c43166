package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	boltRepo "github.com/cmlabs-hris/timeclock-backend-go/internal/repository/bolt"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/timeclock-backend-go/migrations"
)

// openStore builds the record store selected by STORE_TYPE. The returned
// func releases it.
func openStore(ctx context.Context, cfg *config.Config) (attendance.RecordStore, func(), error) {
	switch cfg.App.StoreType {
	case config.StorePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx, migrations.FS); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		slog.Info("Using PostgreSQL attendance store", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return postgresql.NewAttendanceRepository(db), db.Close, nil

	case config.StoreBolt:
		db, err := database.NewBoltDB(cfg.Bolt.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bolt database: %w", err)
		}
		store, err := boltRepo.NewAttendanceRepository(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("Using bolt attendance store", "path", cfg.Bolt.Path)
		return store, func() {
			if err := db.Close(); err != nil {
				slog.Error("Failed to close bolt database", "error", err)
			}
		}, nil

	case config.StoreMemory:
		slog.Warn("Using in-memory attendance store; records are lost on restart")
		return memory.NewAttendanceRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unsupported store type: %s", cfg.App.StoreType)
}
