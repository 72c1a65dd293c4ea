package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"codista-cms/internal/config"
	"codista-cms/pkg/logger"
)

// maintenanceDatabase is connected to while the application database is
// dropped and recreated.
const maintenanceDatabase = "postgres"

var ErrProductionReset = errors.New("database reset is only allowed in development")

// Recreate terminates every session on the configured database, drops it and
// creates it again, empty, owned by the configured user.
func Recreate(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if !cfg.IsDevelopment() {
		return ErrProductionReset
	}

	conn, err := pgx.Connect(ctx, cfg.DSN(maintenanceDatabase))
	if err != nil {
		return fmt.Errorf("failed to connect to maintenance database: %w", err)
	}
	defer conn.Close(ctx)

	tag, err := conn.Exec(ctx,
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()",
		cfg.DBName,
	)
	if err != nil {
		return fmt.Errorf("failed to terminate connections: %w", err)
	}
	logger.Info("Terminated database connections", map[string]interface{}{
		"database":    cfg.DBName,
		"connections": tag.RowsAffected(),
	})

	name := pgx.Identifier{cfg.DBName}.Sanitize()
	owner := pgx.Identifier{cfg.DBUser}.Sanitize()

	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+name); err != nil {
		return fmt.Errorf("failed to drop database %s: %w", cfg.DBName, err)
	}
	logger.Info("Dropped database", map[string]interface{}{"database": cfg.DBName})

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+name+" OWNER "+owner); err != nil {
		return fmt.Errorf("failed to create database %s: %w", cfg.DBName, err)
	}
	logger.Info("Created database", map[string]interface{}{"database": cfg.DBName})

	return nil
}
