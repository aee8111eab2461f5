package user

import (
	"errors"
	"time"

	"github.com/monsterswithink/dazzle-resume/internal/auth"
)

var ErrNotFound = errors.New("user not found")

// User is the read model for an authenticated account, including every
// linked external identity. Read-only to the sync flow.
type User struct {
	ID            string
	Email         string
	EmailVerified bool
	Status        string
	Identities    []LinkedIdentity
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LinkedIdentity is one row of the identities table.
type LinkedIdentity struct {
	ID             string
	Provider       string
	ProviderUserID string
	Data           auth.IdentityData
}

// IdentityFor returns the first identity matching any of the given
// provider tags, or nil.
func (u *User) IdentityFor(providers ...string) *LinkedIdentity {
	for i := range u.Identities {
		for _, p := range providers {
			if u.Identities[i].Provider == p {
				return &u.Identities[i]
			}
		}
	}
	return nil
}
