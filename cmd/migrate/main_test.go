package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoverify/adapters/sqlstore"
	"geoverify/domain/claim"
	"geoverify/internal"
	"geoverify/internal/critique"
	"geoverify/internal/session"
)

func TestRunImportsFileSessions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	files, err := session.NewLocalFileStore(filepath.Join(dir, "sessions"))
	require.NoError(t, err)
	svc := critique.NewService(files, 0, nil)
	for _, title := range []string{"Cirrus thinning", "Ocean alkalinity enhancement"} {
		_, err := svc.StartSession(ctx, claim.ParsedPaper{Title: title}, "climate", nil)
		require.NoError(t, err)
	}

	dsn := filepath.Join(dir, "sessions.db")
	require.NoError(t, run(ctx, sqlstore.DriverSQLite, dsn, filepath.Join(dir, "sessions"), internal.NopLogger()))

	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, dsn)
	require.NoError(t, err)
	defer db.Close()

	imported, err := sqlstore.NewCritiqueSessionRepository(db).List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, imported, 2)
}

func TestRunRejectsUnknownDriver(t *testing.T) {
	err := run(context.Background(), "oracle", "dsn", "", internal.NopLogger())
	assert.Error(t, err)
}
