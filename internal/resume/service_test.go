package resume

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/monsterswithink/dazzle-resume/internal/auth"
	"github.com/monsterswithink/dazzle-resume/internal/enrich"
	"github.com/monsterswithink/dazzle-resume/internal/profile"
	"github.com/monsterswithink/dazzle-resume/internal/retry"
	"github.com/monsterswithink/dazzle-resume/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "11111111-1111-1111-1111-111111111111"

// fakeUsers fails the first failBefore lookups, then serves u.
type fakeUsers struct {
	u          *user.User
	failBefore int
	calls      int
}

func (f *fakeUsers) GetByID(ctx context.Context, userID string) (*user.User, error) {
	f.calls++
	if f.calls <= f.failBefore {
		return nil, user.ErrNotFound
	}
	if f.u == nil || f.u.ID != userID {
		return nil, user.ErrNotFound
	}
	return f.u, nil
}

// fakeStore is an in-memory Store with the same upsert semantics as
// the postgres statement: URL idempotent, payload last-write-wins.
type fakeStore struct {
	recs   map[string]*Record
	writes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: map[string]*Record{}}
}

func (f *fakeStore) GetByUserID(ctx context.Context, userID string) (*Record, error) {
	rec, ok := f.recs[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeStore) Upsert(ctx context.Context, userID, profileURL string, payload json.RawMessage) error {
	f.writes++
	rec, ok := f.recs[userID]
	if !ok {
		rec = &Record{
			ID:        "r-" + userID,
			UserID:    userID,
			Theme:     ThemeModern,
			CreatedAt: time.Now(),
		}
		f.recs[userID] = rec
	}
	if rec.LinkedInProfileURL == "" {
		rec.LinkedInProfileURL = profileURL
	}
	if payload != nil {
		rec.LinkedInData = payload
		rec.LinkedInConnected = true
	}
	rec.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) OverwriteProfileURL(ctx context.Context, userID, profileURL string) error {
	f.writes++
	rec, ok := f.recs[userID]
	if !ok {
		rec = &Record{ID: "r-" + userID, UserID: userID, Theme: ThemeModern, CreatedAt: time.Now()}
		f.recs[userID] = rec
	}
	rec.LinkedInProfileURL = profileURL
	rec.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) ApplyUpdate(ctx context.Context, userID string, upd Update) (*Record, error) {
	rec, ok := f.recs[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	if upd.CustomSections != nil {
		rec.CustomSections = *upd.CustomSections
	}
	if upd.AISuggestions != nil {
		rec.AISuggestions = *upd.AISuggestions
	}
	if upd.Theme != nil {
		rec.Theme = *upd.Theme
	}
	rec.UpdatedAt = time.Now()
	cp := *rec
	return &cp, nil
}

func (f *fakeStore) AppendSuggestions(ctx context.Context, userID string, sugs []AISuggestion) (*Record, error) {
	rec, ok := f.recs[userID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	rec.AISuggestions = append(rec.AISuggestions, sugs...)
	rec.UpdatedAt = time.Now()
	cp := *rec
	return &cp, nil
}

type fakeEnricher struct {
	payload json.RawMessage
	err     error
	gotURLs []string
}

func (f *fakeEnricher) FetchProfile(ctx context.Context, profileURL string) (json.RawMessage, error) {
	f.gotURLs = append(f.gotURLs, profileURL)
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func linkedinUser(data auth.IdentityData) *user.User {
	return &user.User{
		ID:    testUserID,
		Email: "jdoe@example.com",
		Identities: []user.LinkedIdentity{
			{Provider: "linkedin", ProviderUserID: "abc123", Data: data},
		},
	}
}

func fastPolicy() retry.Policy {
	return retry.Policy{
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		Sleep:    func(ctx context.Context, d time.Duration) error { return nil },
	}
}

func newService(users *fakeUsers, store *fakeStore, enricher *fakeEnricher) *SyncService {
	return NewSyncService(users, store, profile.NewResolver(nil), enricher, fastPolicy())
}

func TestSyncCreatesAndPopulatesRecord(t *testing.T) {
	payload := json.RawMessage(`{"full_name":"Jane Doe","headline":"Engineer"}`)

	users := &fakeUsers{u: linkedinUser(auth.IdentityData{VanityName: "jdoe"})}
	store := newFakeStore()
	enricher := &fakeEnricher{payload: payload}

	rec, err := newService(users, store, enricher).Sync(context.Background(), testUserID, "")
	require.NoError(t, err)

	assert.Equal(t, "https://www.linkedin.com/in/jdoe", rec.LinkedInProfileURL)
	assert.JSONEq(t, string(payload), string(rec.LinkedInData))
	assert.True(t, rec.LinkedInConnected)
	assert.Equal(t, testUserID, rec.UserID)

	require.Len(t, enricher.gotURLs, 1)
	assert.Equal(t, "https://www.linkedin.com/in/jdoe", enricher.gotURLs[0])

	// exactly one row exists for the user
	assert.Len(t, store.recs, 1)
}

func TestSyncNoResolvableURLWritesNothing(t *testing.T) {
	users := &fakeUsers{u: linkedinUser(auth.IdentityData{})}
	store := newFakeStore()
	enricher := &fakeEnricher{payload: json.RawMessage(`{}`)}

	_, err := newService(users, store, enricher).Sync(context.Background(), testUserID, "")
	assert.ErrorIs(t, err, profile.ErrProfileURLNotFound)
	assert.Zero(t, store.writes)
	assert.Empty(t, enricher.gotURLs)
}

func TestSyncEnrichmentFailureIsFatalAndPreservesPayload(t *testing.T) {
	users := &fakeUsers{u: linkedinUser(auth.IdentityData{VanityName: "jdoe"})}
	store := newFakeStore()

	// seed a previously synced row
	prior := json.RawMessage(`{"full_name":"Old Sync"}`)
	require.NoError(t, store.Upsert(context.Background(), testUserID, "https://www.linkedin.com/in/jdoe", prior))
	store.writes = 0

	enricher := &fakeEnricher{err: enrich.ErrUnavailable}

	_, err := newService(users, store, enricher).Sync(context.Background(), testUserID, "")
	assert.ErrorIs(t, err, enrich.ErrUnavailable)
	assert.Zero(t, store.writes)

	rec, err := store.GetByUserID(context.Background(), testUserID)
	require.NoError(t, err)
	assert.JSONEq(t, string(prior), string(rec.LinkedInData))
}

func TestSyncIsIdempotent(t *testing.T) {
	payload := json.RawMessage(`{"full_name":"Jane Doe"}`)

	users := &fakeUsers{u: linkedinUser(auth.IdentityData{VanityName: "jdoe"})}
	store := newFakeStore()
	enricher := &fakeEnricher{payload: payload}
	svc := newService(users, store, enricher)

	first, err := svc.Sync(context.Background(), testUserID, "")
	require.NoError(t, err)

	second, err := svc.Sync(context.Background(), testUserID, "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.LinkedInProfileURL, second.LinkedInProfileURL)
	assert.JSONEq(t, string(first.LinkedInData), string(second.LinkedInData))
	assert.Equal(t, first.LinkedInConnected, second.LinkedInConnected)
	assert.Len(t, store.recs, 1)
}

func TestSyncStoredURLWinsOverStrategies(t *testing.T) {
	users := &fakeUsers{u: linkedinUser(auth.IdentityData{VanityName: "from-identity"})}
	store := newFakeStore()
	require.NoError(t, store.Upsert(context.Background(), testUserID, "https://www.linkedin.com/in/stored", nil))

	enricher := &fakeEnricher{payload: json.RawMessage(`{}`)}

	rec, err := newService(users, store, enricher).Sync(context.Background(), testUserID, "")
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/in/stored", rec.LinkedInProfileURL)
	require.Len(t, enricher.gotURLs, 1)
	assert.Equal(t, "https://www.linkedin.com/in/stored", enricher.gotURLs[0])
}

func TestSyncOverrideURLRefreshesStoredURL(t *testing.T) {
	users := &fakeUsers{u: linkedinUser(auth.IdentityData{VanityName: "jdoe"})}
	store := newFakeStore()
	require.NoError(t, store.Upsert(context.Background(), testUserID, "https://www.linkedin.com/in/stored", nil))

	enricher := &fakeEnricher{payload: json.RawMessage(`{}`)}

	rec, err := newService(users, store, enricher).Sync(
		context.Background(), testUserID, "https://www.linkedin.com/in/override",
	)
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/in/override", rec.LinkedInProfileURL)
}

func TestSyncRejectsBogusOverrideURL(t *testing.T) {
	users := &fakeUsers{u: linkedinUser(auth.IdentityData{VanityName: "jdoe"})}
	store := newFakeStore()
	enricher := &fakeEnricher{payload: json.RawMessage(`{}`)}

	_, err := newService(users, store, enricher).Sync(
		context.Background(), testUserID, "https://evil.example.com/jdoe",
	)
	assert.ErrorIs(t, err, ErrInvalidProfileURL)
	assert.Zero(t, store.writes)
}

func TestSyncUserLookupRetryBudget(t *testing.T) {
	tests := []struct {
		name       string
		failBefore int
		wantErr    error
		wantCalls  int
	}{
		{"succeeds on attempt 3", 2, nil, 3},
		{"exhausts the budget", 3, ErrUnauthorized, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{
				u:          linkedinUser(auth.IdentityData{VanityName: "jdoe"}),
				failBefore: tt.failBefore,
			}
			store := newFakeStore()
			enricher := &fakeEnricher{payload: json.RawMessage(`{}`)}

			_, err := newService(users, store, enricher).Sync(context.Background(), testUserID, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, users.calls)
		})
	}
}

func TestUpdateValidatesTheme(t *testing.T) {
	bad := "neon"
	err := Update{Theme: &bad}.Validate()
	assert.Error(t, err)

	good := ThemeClassic
	assert.NoError(t, Update{Theme: &good}.Validate())
}

func TestSyncPayloadStoredWholesale(t *testing.T) {
	// a payload with fields our typed Profile does not know about must
	// survive byte-for-byte
	payload := json.RawMessage(`{"full_name":"Jane","unknown_field":{"nested":[1,2,3]}}`)

	users := &fakeUsers{u: linkedinUser(auth.IdentityData{VanityName: "jdoe"})}
	store := newFakeStore()
	enricher := &fakeEnricher{payload: payload}

	rec, err := newService(users, store, enricher).Sync(context.Background(), testUserID, "")
	require.NoError(t, err)
	assert.Equal(t, string(payload), string(rec.LinkedInData))
}

func TestSyncStageInErrorMessage(t *testing.T) {
	users := &fakeUsers{u: linkedinUser(auth.IdentityData{})}
	store := newFakeStore()
	enricher := &fakeEnricher{}

	_, err := newService(users, store, enricher).Sync(context.Background(), testUserID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving_profile_url")
	assert.True(t, errors.Is(err, profile.ErrProfileURLNotFound))
}
