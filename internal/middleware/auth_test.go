package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/monsterswithink/dazzle-resume/internal/session"
)

type memStore struct {
	sessions map[string]session.Session
}

func (m *memStore) Create(ctx context.Context, s session.Session) error {
	m.sessions[s.SessionID] = s
	return nil
}

func (m *memStore) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) Update(ctx context.Context, s session.Session) error {
	m.sessions[s.SessionID] = s
	return nil
}

func (m *memStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

func TestRequireAuth(t *testing.T) {
	store := &memStore{sessions: map[string]session.Session{
		"tok-valid": {
			SessionID: "tok-valid",
			UserID:    "user-1",
			ExpiresAt: time.Now().Add(time.Hour),
		},
		"tok-expired": {
			SessionID: "tok-expired",
			UserID:    "user-2",
			ExpiresAt: time.Now().Add(-time.Minute),
		},
	}}

	mw := NewAuthMiddleware(store)

	var gotUserID string
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		bearer     string
		cookie     string
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid bearer token",
			bearer:     "Bearer tok-valid",
			wantStatus: http.StatusOK,
			wantUserID: "user-1",
		},
		{
			name:       "valid session cookie",
			cookie:     "tok-valid",
			wantStatus: http.StatusOK,
			wantUserID: "user-1",
		},
		{
			name:       "missing credentials",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown token",
			bearer:     "Bearer tok-nope",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired session",
			bearer:     "Bearer tok-expired",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed authorization header",
			bearer:     "Basic dXNlcjpwdw==",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""

			req := httptest.NewRequest(http.MethodPost, "/api/linkedin/fetch", nil)
			if tt.bearer != "" {
				req.Header.Set("Authorization", tt.bearer)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tt.cookie})
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantUserID != "" && gotUserID != tt.wantUserID {
				t.Errorf("userID = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestExpiredSessionIsDeleted(t *testing.T) {
	store := &memStore{sessions: map[string]session.Session{
		"tok-expired": {
			SessionID: "tok-expired",
			UserID:    "user-2",
			ExpiresAt: time.Now().Add(-time.Minute),
		},
	}}

	mw := NewAuthMiddleware(store)
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/resume", nil)
	req.Header.Set("Authorization", "Bearer tok-expired")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if _, ok := store.sessions["tok-expired"]; ok {
		t.Fatal("expired session should have been deleted")
	}
}
