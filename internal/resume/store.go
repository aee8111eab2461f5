package resume

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/monsterswithink/dazzle-resume/internal/db"

	"github.com/google/uuid"
)

// Store persists resume records. All writes are keyed by user id; the
// upsert must be atomic so concurrent syncs for one user converge to a
// single row.
type Store interface {
	GetByUserID(ctx context.Context, userID string) (*Record, error)

	// Upsert creates the row if absent and applies the sync results in
	// one atomic statement. An empty profileURL leaves the stored URL
	// alone; a stored URL is never replaced here (idempotent-on-URL).
	// A nil payload leaves the stored payload alone; a non-nil payload
	// overwrites it wholesale and marks the record connected.
	Upsert(ctx context.Context, userID, profileURL string, payload json.RawMessage) error

	// OverwriteProfileURL replaces the stored URL unconditionally.
	// Used for the explicit refresh override only.
	OverwriteProfileURL(ctx context.Context, userID, profileURL string) error

	// ApplyUpdate performs the partial edit-surface update and returns
	// the resulting row.
	ApplyUpdate(ctx context.Context, userID string, upd Update) (*Record, error)

	// AppendSuggestions adds generated suggestions to the row and
	// returns the resulting row.
	AppendSuggestions(ctx context.Context, userID string, sugs []AISuggestion) (*Record, error)
}

// DBStore is the postgres-backed resume store.
type DBStore struct {
	db *db.DB
}

func NewDBStore(db *db.DB) *DBStore {
	return &DBStore{db: db}
}

const recordColumns = `
	id, user_id, linkedin_profile_url, linkedin_data, linkedin_connected,
	custom_sections, ai_suggestions, theme, created_at, updated_at
`

func scanRecord(row *sql.Row) (*Record, error) {
	var (
		rec      Record
		url      sql.NullString
		data     []byte
		sections []byte
		sugs     []byte
	)

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&url,
		&data,
		&rec.LinkedInConnected,
		&sections,
		&sugs,
		&rec.Theme,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	if url.Valid {
		rec.LinkedInProfileURL = url.String
	}
	if len(data) > 0 {
		rec.LinkedInData = json.RawMessage(data)
	}
	if err := json.Unmarshal(sections, &rec.CustomSections); err != nil {
		return nil, fmt.Errorf("resume: bad custom_sections for user %s: %w", rec.UserID, err)
	}
	if err := json.Unmarshal(sugs, &rec.AISuggestions); err != nil {
		return nil, fmt.Errorf("resume: bad ai_suggestions for user %s: %w", rec.UserID, err)
	}

	return &rec, nil
}

func (s *DBStore) GetByUserID(ctx context.Context, userID string) (*Record, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("resume: invalid user id: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM public.resumes
		WHERE user_id = $1
	`, uid)

	return scanRecord(row)
}

func (s *DBStore) Upsert(ctx context.Context, userID, profileURL string, payload json.RawMessage) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("resume: invalid user id: %w", err)
	}

	var urlArg sql.NullString
	if profileURL != "" {
		urlArg = sql.NullString{String: profileURL, Valid: true}
	}

	var dataArg []byte
	if payload != nil {
		dataArg = payload
	}

	// COALESCE keeps the stored URL when one exists and keeps the
	// stored payload when this sync carries none. The row-level
	// ON CONFLICT serializes concurrent syncs for the same user.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO public.resumes
			(user_id, linkedin_profile_url, linkedin_data, linkedin_connected)
		VALUES
			($1, $2, $3::jsonb, $3::jsonb IS NOT NULL)
		ON CONFLICT (user_id) DO UPDATE SET
			linkedin_profile_url = COALESCE(resumes.linkedin_profile_url, EXCLUDED.linkedin_profile_url),
			linkedin_data        = COALESCE(EXCLUDED.linkedin_data, resumes.linkedin_data),
			linkedin_connected   = resumes.linkedin_connected OR EXCLUDED.linkedin_connected,
			updated_at           = NOW()
	`, uid, urlArg, dataArg)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *DBStore) OverwriteProfileURL(ctx context.Context, userID, profileURL string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("resume: invalid user id: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO public.resumes (user_id, linkedin_profile_url)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			linkedin_profile_url = EXCLUDED.linkedin_profile_url,
			updated_at           = NOW()
	`, uid, profileURL)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *DBStore) ApplyUpdate(ctx context.Context, userID string, upd Update) (*Record, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("resume: invalid user id: %w", err)
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	var (
		sectionsArg []byte
		sugsArg     []byte
		themeArg    sql.NullString
	)
	if upd.CustomSections != nil {
		sectionsArg, err = json.Marshal(*upd.CustomSections)
		if err != nil {
			return nil, err
		}
	}
	if upd.AISuggestions != nil {
		sugsArg, err = json.Marshal(*upd.AISuggestions)
		if err != nil {
			return nil, err
		}
	}
	if upd.Theme != nil {
		themeArg = sql.NullString{String: *upd.Theme, Valid: true}
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE public.resumes SET
			custom_sections = COALESCE($2::jsonb, custom_sections),
			ai_suggestions  = COALESCE($3::jsonb, ai_suggestions),
			theme           = COALESCE($4::text, theme),
			updated_at      = NOW()
		WHERE user_id = $1
		RETURNING `+recordColumns+`
	`, uid, sectionsArg, sugsArg, themeArg)

	rec, err := scanRecord(row)
	if err == ErrRecordNotFound {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return rec, nil
}

func (s *DBStore) AppendSuggestions(ctx context.Context, userID string, sugs []AISuggestion) (*Record, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("resume: invalid user id: %w", err)
	}

	data, err := json.Marshal(sugs)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE public.resumes SET
			ai_suggestions = ai_suggestions || $2::jsonb,
			updated_at     = NOW()
		WHERE user_id = $1
		RETURNING `+recordColumns+`
	`, uid, data)

	rec, err := scanRecord(row)
	if err == ErrRecordNotFound {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return rec, nil
}
