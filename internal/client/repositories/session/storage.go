// Package session persists the authenticated session (bearer token plus
// cached user profile) in the local metadata table. Both entries are always
// written and cleared together.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/briefly/internal/client/models"
	"github.com/dmitrijs2005/briefly/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/briefly/internal/common"
	"github.com/dmitrijs2005/briefly/internal/dbx"
)

var (
	// ErrNoSession means nothing (or only half a session) is persisted.
	ErrNoSession = errors.New("no persisted session")
	// ErrCorruptSession means the persisted user profile could not be decoded.
	ErrCorruptSession = errors.New("corrupt persisted session")
	// ErrEmptyToken is returned by Save for a blank token.
	ErrEmptyToken = errors.New("empty auth token")
)

// Record is the persisted pair.
type Record struct {
	Token string
	User  models.User
}

// Storage is the persistence contract used by the session store.
type Storage interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

// SQLiteStorage keeps the session under the auth_token and user_data keys.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// Load returns the persisted session. A missing key on either side yields
// ErrNoSession; an undecodable profile yields ErrCorruptSession.
func (s *SQLiteStorage) Load(ctx context.Context) (*Record, error) {
	entries, err := metadata.NewSQLiteRepository(s.db).GetMany(ctx, common.AuthTokenKey, common.UserDataKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	token, userData := entries[common.AuthTokenKey], entries[common.UserDataKey]

	if len(token) == 0 || len(userData) == 0 {
		return nil, ErrNoSession
	}

	var user models.User
	if err := json.Unmarshal(userData, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}

	return &Record{Token: string(token), User: user}, nil
}

// Save writes token and user in a single transaction.
func (s *SQLiteStorage) Save(ctx context.Context, rec Record) error {
	if rec.Token == "" {
		return ErrEmptyToken
	}

	userData, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetMany(ctx, map[string][]byte{
			common.AuthTokenKey: []byte(rec.Token),
			common.UserDataKey:  userData,
		})
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes both entries. Clearing an empty store is not an error.
func (s *SQLiteStorage) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, common.AuthTokenKey, common.UserDataKey)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
