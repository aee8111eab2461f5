package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/monsterswithink/dazzle-resume/internal/logger"
	"github.com/monsterswithink/dazzle-resume/internal/user"
)

// ErrProfileURLNotFound means no extraction strategy produced a URL.
// Callers must surface this as a client error, never retry it.
var ErrProfileURLNotFound = errors.New("no linkedin profile url found")

// Provider tags that carry linkedin identity metadata.
var linkedinProviders = []string{"linkedin", "linkedin_oidc"}

const profileURLPrefix = "https://www.linkedin.com/in/"

// Strategy is one named way of extracting a profile URL from a linked
// identity. It returns ("", nil) when it simply has nothing to offer;
// errors are reserved for failed live calls.
type Strategy struct {
	Name    string
	Extract func(ctx context.Context, ident *user.LinkedIdentity) (string, error)
}

// Resolver turns an authenticated user into a canonical public profile
// URL by trying an ordered list of strategies, first match wins.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds the canonical strategy order:
// stored URL, vanity name, public identifier, then a live call to the
// member profile endpoint. me may be nil, which disables the live
// fallback.
func NewResolver(me *MeClient) *Resolver {

	strategies := []Strategy{
		{
			Name: "profile-url",
			Extract: func(_ context.Context, ident *user.LinkedIdentity) (string, error) {
				return ident.Data.ProfileURL, nil
			},
		},
		{
			Name: "vanity-name",
			Extract: func(_ context.Context, ident *user.LinkedIdentity) (string, error) {
				return composeURL(ident.Data.VanityName), nil
			},
		},
		{
			Name: "public-identifier",
			Extract: func(_ context.Context, ident *user.LinkedIdentity) (string, error) {
				return composeURL(ident.Data.PublicIdentifier), nil
			},
		},
	}

	if me != nil {
		strategies = append(strategies, Strategy{
			Name: "me-endpoint",
			Extract: func(ctx context.Context, ident *user.LinkedIdentity) (string, error) {
				if ident.Data.AccessToken == "" {
					return "", nil
				}
				vanity, err := me.VanityName(ctx, ident.Data.AccessToken)
				if err != nil {
					return "", err
				}
				return composeURL(vanity), nil
			},
		})
	}

	return &Resolver{strategies: strategies}
}

// Resolve returns the canonical profile URL for u, or
// ErrProfileURLNotFound when u has no linkedin identity or every
// strategy comes up empty. Live-call failures are logged and treated as
// a miss so later strategies still run.
func (r *Resolver) Resolve(ctx context.Context, u *user.User) (string, error) {

	ident := u.IdentityFor(linkedinProviders...)
	if ident == nil {
		return "", fmt.Errorf("%w: no linkedin identity", ErrProfileURLNotFound)
	}

	for _, s := range r.strategies {
		url, err := s.Extract(ctx, ident)
		if err != nil {
			logger.Warn("profile url strategy failed", map[string]any{
				"strategy": s.Name,
				"error":    err.Error(),
			})
			continue
		}
		if url != "" {
			return url, nil
		}
	}

	return "", ErrProfileURLNotFound
}

// composeURL builds the canonical public URL from a handle.
// Empty handles compose to "".
func composeURL(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return ""
	}
	if strings.HasPrefix(handle, "http://") || strings.HasPrefix(handle, "https://") {
		return handle
	}
	return profileURLPrefix + handle
}
