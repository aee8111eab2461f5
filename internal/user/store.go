package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/monsterswithink/dazzle-resume/internal/auth"
	"github.com/monsterswithink/dazzle-resume/internal/db"

	"github.com/google/uuid"
)

// Store loads users and their linked identities.
type Store interface {
	GetByID(ctx context.Context, userID string) (*User, error)
}

// DBStore is the postgres-backed user store.
type DBStore struct {
	db *db.DB
}

func NewDBStore(db *db.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) GetByID(ctx context.Context, userID string) (*User, error) {

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("user: invalid id: %w", err)
	}

	var u User
	err = s.db.QueryRowContext(ctx, `
		SELECT id, email, email_verified, status, created_at, updated_at
		FROM public.users
		WHERE id = $1
	`, uid).Scan(
		&u.ID,
		&u.Email,
		&u.EmailVerified,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, provider, provider_user_id, identity_data
		FROM public.identities
		WHERE user_id = $1
		ORDER BY created_at
	`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ident LinkedIdentity
			raw   []byte
		)
		if err := rows.Scan(
			&ident.ID,
			&ident.Provider,
			&ident.ProviderUserID,
			&raw,
		); err != nil {
			return nil, err
		}

		if len(raw) > 0 {
			var data auth.IdentityData
			if err := json.Unmarshal(raw, &data); err != nil {
				return nil, fmt.Errorf("user: bad identity_data for identity %s: %w", ident.ID, err)
			}
			ident.Data = data
		}

		u.Identities = append(u.Identities, ident)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &u, nil
}
