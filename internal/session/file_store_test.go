package session

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoverify/domain/claim"
	"geoverify/domain/core"
	dcritique "geoverify/domain/critique"
	"geoverify/internal/critique"
)

func TestLocalBlobStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.StoreBlob(ctx, "critique/a.json", []byte(`{"a":1}`)))
	require.NoError(t, store.StoreBlob(ctx, "other/b.json", []byte(`{}`)))

	exists, err := store.BlobExists(ctx, "critique/a.json")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := store.GetBlob(ctx, "critique/a.json")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	keys, err := store.ListBlobs(ctx, "critique/")
	require.NoError(t, err)
	assert.Equal(t, []string{"critique/a.json"}, keys)

	meta, err := store.GetBlobMetadata(ctx, "critique/a.json")
	require.NoError(t, err)
	assert.Equal(t, int64(7), meta.Size)

	require.NoError(t, store.DeleteBlob(ctx, "critique/a.json"))
	require.NoError(t, store.DeleteBlob(ctx, "critique/a.json"))
	_, err = store.GetBlob(ctx, "critique/a.json")
	assert.True(t, stderrors.Is(err, ErrBlobNotFound))
}

func TestLocalBlobStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../x.json", "/etc/passwd", "a/../../x"} {
		err := store.StoreBlob(context.Background(), key, []byte("x"))
		assert.Error(t, err, key)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalFileStore(dir)
	require.NoError(t, err)

	session := dcritique.NewSession(core.NewSessionID(), "Aerosol control", "climate")
	session.Iterations = append(session.Iterations, &dcritique.Iteration{
		Number: 1,
		Stage:  dcritique.StageInitialReview,
		Prompt: "ADVERSARIAL CRITIQUE - INITIAL REVIEW",
	})
	require.NoError(t, store.Save(ctx, session))

	raw, err := os.ReadFile(filepath.Join(dir, "critique", session.ID.String()+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"stage": "initial_review"`)
	assert.Contains(t, string(raw), `"overall_result": "passed"`)

	loaded, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.PaperTitle, loaded.PaperTitle)
	require.Len(t, loaded.Iterations, 1)
	assert.Equal(t, dcritique.StageInitialReview, loaded.Iterations[0].Stage)
	assert.False(t, loaded.Iterations[0].Processed())
}

func TestFileStoreNotFound(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), core.NewSessionID())
	assert.True(t, stderrors.Is(err, core.ErrSessionNotFound))

	_, err = store.Get(context.Background(), core.SessionID("../../etc/passwd"))
	assert.True(t, stderrors.Is(err, core.ErrSessionNotFound))
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []core.SessionID
	for i := 0; i < 3; i++ {
		s := dcritique.NewSession(core.NewSessionID(), "paper", "climate")
		s.UpdatedAt = core.NewTimestamp(base.Add(time.Duration(i) * time.Hour))
		require.NoError(t, store.Save(ctx, s))
		ids = append(ids, s.ID)
	}

	sessions, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, ids[2], sessions[0].ID)
	assert.Equal(t, ids[1], sessions[1].ID)
}

func TestFileStoreBacksCritiqueService(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	svc := critique.NewService(store, critique.MaxIterations, nil)

	id, err := svc.StartSession(ctx, claim.ParsedPaper{Title: "Aerosol control"}, "climate", nil)
	require.NoError(t, err)

	result, err := svc.ProcessResponse(ctx, id, 1, "The approach has fundamental flaws, it is invalid and unsupported.")
	require.NoError(t, err)
	assert.Equal(t, dcritique.ResultFundamentalFlaws, result.Result)

	status, err := svc.GetSessionStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalIterations)
	assert.Equal(t, dcritique.ResultFundamentalFlaws, status.OverallResult)
	assert.Equal(t, 0.7, status.PlausibilityTrapScore)
}
