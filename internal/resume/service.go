package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/monsterswithink/dazzle-resume/internal/logger"
	"github.com/monsterswithink/dazzle-resume/internal/retry"
	"github.com/monsterswithink/dazzle-resume/internal/user"
)

// ErrUnauthorized means the authenticated user row could not be loaded
// even after the consistency retries.
var ErrUnauthorized = errors.New("user lookup failed")

// ErrInvalidProfileURL rejects override URLs that are not public
// linkedin profile URLs.
var ErrInvalidProfileURL = errors.New("invalid linkedin profile url")

// Sync pipeline stages, in order. Any stage can fail terminally; a new
// sync always starts from the top.
const (
	stageResolvingIdentity   = "resolving_identity"
	stageResolvingProfileURL = "resolving_profile_url"
	stageCallingEnrichment   = "calling_enrichment"
	stageReconciling         = "reconciling"
)

// URLResolver extracts a profile URL from a user's identity metadata.
type URLResolver interface {
	Resolve(ctx context.Context, u *user.User) (string, error)
}

// Enricher fetches the enrichment payload for a profile URL.
type Enricher interface {
	FetchProfile(ctx context.Context, profileURL string) (json.RawMessage, error)
}

// SyncService runs the LinkedIn profile synchronization flow: resolve
// the user's profile URL, fetch the enrichment payload, reconcile it
// into the resume row, and return the canonical row. The three network
// calls are strictly sequential; each depends on the previous result.
type SyncService struct {
	users    user.Store
	store    Store
	urls     URLResolver
	enricher Enricher
	retry    retry.Policy
}

func NewSyncService(
	users user.Store,
	store Store,
	urls URLResolver,
	enricher Enricher,
	policy retry.Policy,
) *SyncService {
	return &SyncService{
		users:    users,
		store:    store,
		urls:     urls,
		enricher: enricher,
		retry:    policy,
	}
}

// Sync executes one full synchronization for userID. overrideURL, when
// set, replaces the stored profile URL before enrichment (explicit
// refresh). The returned record is the canonical post-sync row.
func (s *SyncService) Sync(ctx context.Context, userID, overrideURL string) (*Record, error) {

	// The users table may lag right after a redirect-based sign-in, so
	// the lookup is retried on a fixed-delay budget.
	var u *user.User
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		var lookupErr error
		u, lookupErr = s.users.GetByID(ctx, userID)
		return lookupErr
	})
	if err != nil {
		return nil, fmt.Errorf("sync %s: %w: %v", stageResolvingIdentity, ErrUnauthorized, err)
	}

	profileURL, forceURL, err := s.profileURL(ctx, u, overrideURL)
	if err != nil {
		return nil, fmt.Errorf("sync %s: %w", stageResolvingProfileURL, err)
	}

	payload, err := s.enricher.FetchProfile(ctx, profileURL)
	if err != nil {
		// Fatal: storing an empty payload would silently destroy a
		// previously synced one.
		return nil, fmt.Errorf("sync %s: %w", stageCallingEnrichment, err)
	}

	if forceURL {
		if err := s.store.OverwriteProfileURL(ctx, u.ID, profileURL); err != nil {
			return nil, fmt.Errorf("sync %s: %w", stageReconciling, err)
		}
	}
	if err := s.store.Upsert(ctx, u.ID, profileURL, payload); err != nil {
		return nil, fmt.Errorf("sync %s: %w", stageReconciling, err)
	}

	// Re-read the canonical row, again tolerating read-after-write lag.
	var rec *Record
	err = s.retry.Do(ctx, func(ctx context.Context) error {
		var readErr error
		rec, readErr = s.store.GetByUserID(ctx, u.ID)
		return readErr
	})
	if err != nil {
		return nil, fmt.Errorf("sync %s: %w", stageReconciling, err)
	}

	logger.Info("linkedin sync complete", map[string]any{
		"user_id":     u.ID,
		"profile_url": profileURL,
		"payload_len": len(payload),
	})

	return rec, nil
}

// Get returns the user's resume row without syncing.
func (s *SyncService) Get(ctx context.Context, userID string) (*Record, error) {
	return s.store.GetByUserID(ctx, userID)
}

// Update applies the edit-surface partial update.
func (s *SyncService) Update(ctx context.Context, userID string, upd Update) (*Record, error) {
	return s.store.ApplyUpdate(ctx, userID, upd)
}

// Append stores generated suggestions on the user's row.
func (s *SyncService) Append(ctx context.Context, userID string, sugs []AISuggestion) (*Record, error) {
	return s.store.AppendSuggestions(ctx, userID, sugs)
}

// profileURL decides which URL to enrich. Precedence: explicit
// override, then the stored row value, then identity metadata
// strategies. forceURL is true only for the override case.
func (s *SyncService) profileURL(ctx context.Context, u *user.User, overrideURL string) (string, bool, error) {

	if overrideURL != "" {
		if !strings.Contains(overrideURL, "linkedin.com/in/") {
			return "", false, fmt.Errorf("%w: %q", ErrInvalidProfileURL, overrideURL)
		}
		return overrideURL, true, nil
	}

	rec, err := s.store.GetByUserID(ctx, u.ID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return "", false, err
	}
	if rec != nil && rec.LinkedInProfileURL != "" {
		return rec.LinkedInProfileURL, false, nil
	}

	url, err := s.urls.Resolve(ctx, u)
	if err != nil {
		return "", false, err
	}
	return url, false, nil
}
