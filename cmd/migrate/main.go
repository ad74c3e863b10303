package main

import (
	"context"
	"fmt"
	"os"

	"geoverify/adapters/sqlstore"
	"geoverify/internal"
	"geoverify/internal/migration"
	"geoverify/internal/session"
)

const usage = `Usage: migrate <postgres|sqlite> <dsn> [session_dir]

Creates or upgrades the critique session schema. When session_dir is given,
every session stored there by the file backend is copied into the database.`

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	logger := internal.NewStderrLogger(os.Getenv("LOG_LEVEL"))

	var sessionDir string
	if len(os.Args) > 3 {
		sessionDir = os.Args[3]
	}
	if err := run(context.Background(), os.Args[1], os.Args[2], sessionDir, logger); err != nil {
		logger.Error("migration failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, driver, dsn, sessionDir string, logger *internal.Logger) error {
	db, err := sqlstore.Open(ctx, driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := migration.NewRunner().CurrentVersion(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("%s schema at version %s", driver, version)

	if sessionDir == "" {
		return nil
	}

	files, err := session.NewLocalFileStore(sessionDir)
	if err != nil {
		return err
	}
	sessions, err := files.List(ctx, 0)
	if err != nil {
		return err
	}
	logger.Info("found %d sessions to import from %s", len(sessions), sessionDir)

	repo := sqlstore.NewCritiqueSessionRepository(db)
	imported, skipped := 0, 0
	for _, s := range sessions {
		if err := repo.Save(ctx, s); err != nil {
			logger.Warn("failed to import session %s: %v", s.ID, err)
			skipped++
			continue
		}
		imported++
		logger.Debug("imported session %s (%s)", s.ID, s.PaperTitle)
	}

	logger.Info("import complete: %d imported, %d skipped", imported, skipped)
	return nil
}
