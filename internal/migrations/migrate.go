// Package migrations applies the catalog schema with goose.
package migrations

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/sensorline/levelquote/internal/logging"
)

// gooseLogger routes goose's chatter through the structured logger.
type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...any) {
	logging.Fatal(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (gooseLogger) Printf(format string, v ...any) {
	logging.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Up applies every pending SQL migration in migrationsDir.
func Up(db *sql.DB, migrationsDir string) error {
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
