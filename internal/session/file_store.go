// Package session persists critique sessions as JSON documents in a blob store.
package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"geoverify/domain/core"
	dcritique "geoverify/domain/critique"
	"geoverify/internal/critique"
	"geoverify/internal/errors"
)

const sessionPrefix = "critique/"

// FileStore implements ports.CritiqueSessionRepository on a BlobStore, one
// document per session
type FileStore struct {
	blobs BlobStore
}

// NewFileStore creates a session store on blobs
func NewFileStore(blobs BlobStore) *FileStore {
	return &FileStore{blobs: blobs}
}

// NewLocalFileStore creates a session store rooted at dir
func NewLocalFileStore(dir string) (*FileStore, error) {
	blobs, err := NewLocalBlobStore(dir)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfiguration, err)
	}
	return NewFileStore(blobs), nil
}

func sessionKey(id core.SessionID) string {
	return sessionPrefix + id.String() + ".json"
}

// Get loads a session by ID
func (f *FileStore) Get(ctx context.Context, id core.SessionID) (*dcritique.Session, error) {
	if _, err := core.ParseSessionID(id.String()); err != nil {
		return nil, errors.SessionNotFound(id.String())
	}

	rc, err := f.blobs.GetBlob(ctx, sessionKey(id))
	if err != nil {
		if stderrors.Is(err, ErrBlobNotFound) {
			return nil, errors.SessionNotFound(id.String())
		}
		return nil, errors.DatabaseError("failed to read session", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.DatabaseError("failed to read session", err)
	}

	var session dcritique.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.DatabaseError("failed to decode session "+id.String(), err)
	}
	return &session, nil
}

// Save writes the full session document
func (f *FileStore) Save(ctx context.Context, session *dcritique.Session) error {
	if _, err := core.ParseSessionID(session.ID.String()); err != nil {
		return errors.InvalidInput("session id must be a UUID")
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode session %s", session.ID)
	}
	if err := f.blobs.StoreBlob(ctx, sessionKey(session.ID), data); err != nil {
		return errors.DatabaseError("failed to write session", err)
	}
	return nil
}

// List returns sessions ordered by most recent update
func (f *FileStore) List(ctx context.Context, limit int) ([]*dcritique.Session, error) {
	keys, err := f.blobs.ListBlobs(ctx, sessionPrefix)
	if err != nil {
		return nil, errors.DatabaseError("failed to list sessions", err)
	}

	sessions := make([]*dcritique.Session, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimSuffix(strings.TrimPrefix(key, sessionPrefix), ".json")
		id, err := core.ParseSessionID(name)
		if err != nil {
			continue
		}
		s, err := f.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	critique.SortByRecency(sessions)
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}
