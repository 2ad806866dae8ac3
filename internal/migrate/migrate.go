// Package migrate applies the embedded goose migrations that create the tasks table.
package migrate

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var migrations embed.FS

const dir = "sql"

// Up brings the schema to the latest version.
func Up(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if err := setup(logger); err != nil {
		return err
	}
	// goose работает через database/sql, поэтому оборачиваем пул
	db := stdlib.OpenDBFromPool(pool)
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Version reports the currently applied schema version.
func Version(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (int64, error) {
	if err := setup(logger); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, stdlib.OpenDBFromPool(pool))
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func setup(logger *zap.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{log: logger.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// gooseLogger routes goose output into zap.
type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Infof(strings.TrimSpace(format), v...)
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatalf(strings.TrimSpace(format), v...)
}
