package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, db, dir)
	case "down":
		return goose.DownContext(ctx, db, dir)
	case "status":
		return goose.StatusContext(ctx, db, dir)
	case "version":
		_, err := goose.GetDBVersionContext(ctx, db)
		return err
	case "up-to", "down-to":
		if len(args) != 1 {
			return fmt.Errorf("%s requires a version argument", command)
		}
		version, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing version %q: %w", args[0], err)
		}
		if command == "up-to" {
			return goose.UpToContext(ctx, db, dir, version)
		}
		return goose.DownToContext(ctx, db, dir, version)
	default:
		return fmt.Errorf("unsupported goose command %q", command)
	}
}
