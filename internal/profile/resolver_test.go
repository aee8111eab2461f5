package profile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/monsterswithink/dazzle-resume/internal/auth"
	"github.com/monsterswithink/dazzle-resume/internal/user"
)

func userWith(provider string, data auth.IdentityData) *user.User {
	return &user.User{
		ID:    "11111111-1111-1111-1111-111111111111",
		Email: "jdoe@example.com",
		Identities: []user.LinkedIdentity{
			{Provider: provider, ProviderUserID: "abc123", Data: data},
		},
	}
}

func TestResolveStrategyOrder(t *testing.T) {
	tests := []struct {
		name    string
		data    auth.IdentityData
		want    string
		wantErr error
	}{
		{
			name: "direct profile url wins",
			data: auth.IdentityData{
				ProfileURL: "https://www.linkedin.com/in/stored",
				VanityName: "ignored",
			},
			want: "https://www.linkedin.com/in/stored",
		},
		{
			name: "vanity name composes url",
			data: auth.IdentityData{VanityName: "jdoe"},
			want: "https://www.linkedin.com/in/jdoe",
		},
		{
			name: "public identifier composes url",
			data: auth.IdentityData{PublicIdentifier: "jane-doe-42"},
			want: "https://www.linkedin.com/in/jane-doe-42",
		},
		{
			name: "vanity name beats public identifier",
			data: auth.IdentityData{
				VanityName:       "jdoe",
				PublicIdentifier: "jane-doe-42",
			},
			want: "https://www.linkedin.com/in/jdoe",
		},
		{
			name:    "nothing resolvable",
			data:    auth.IdentityData{Picture: "https://cdn.example.com/p.jpg"},
			wantErr: ErrProfileURLNotFound,
		},
	}

	r := NewResolver(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), userWith("linkedin", tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("url = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveNoLinkedInIdentity(t *testing.T) {
	u := userWith("google", auth.IdentityData{VanityName: "jdoe"})

	_, err := NewResolver(nil).Resolve(context.Background(), u)
	if !errors.Is(err, ErrProfileURLNotFound) {
		t.Fatalf("err = %v, want ErrProfileURLNotFound", err)
	}
}

func TestResolveAcceptsOIDCProviderTag(t *testing.T) {
	u := userWith("linkedin_oidc", auth.IdentityData{VanityName: "jdoe"})

	got, err := NewResolver(nil).Resolve(context.Background(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://www.linkedin.com/in/jdoe" {
		t.Errorf("url = %q", got)
	}
}

func TestResolveMeEndpointFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("projection"); got != "(id,vanityName)" {
			t.Errorf("projection = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"abc123","vanityName":"jdoe"}`))
	}))
	defer srv.Close()

	r := NewResolver(NewMeClient(srv.URL, time.Second))
	u := userWith("linkedin", auth.IdentityData{AccessToken: "tok-123"})

	got, err := r.Resolve(context.Background(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://www.linkedin.com/in/jdoe" {
		t.Errorf("url = %q", got)
	}
}

func TestResolveMeEndpointFailureIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	r := NewResolver(NewMeClient(srv.URL, time.Second))
	u := userWith("linkedin", auth.IdentityData{AccessToken: "expired"})

	_, err := r.Resolve(context.Background(), u)
	if !errors.Is(err, ErrProfileURLNotFound) {
		t.Fatalf("err = %v, want ErrProfileURLNotFound", err)
	}
}
