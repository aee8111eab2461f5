package resume

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRecordNotFound means no resume row exists for the user.
	ErrRecordNotFound = errors.New("resume record not found")

	// ErrPersistence wraps failed writes to the record store.
	ErrPersistence = errors.New("resume persistence failure")
)

// Themes the renderer understands.
const (
	ThemeModern   = "modern"
	ThemeClassic  = "classic"
	ThemeMinimal  = "minimal"
	ThemeCreative = "creative"
)

// ValidTheme reports whether t names a known theme.
func ValidTheme(t string) bool {
	switch t {
	case ThemeModern, ThemeClassic, ThemeMinimal, ThemeCreative:
		return true
	}
	return false
}

// CustomSection is one user-arranged resume section.
type CustomSection struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"` // personal|experience|education|skills|projects|certifications|custom
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
	Order   int             `json:"order"`
	Visible bool            `json:"visible"`
}

// AISuggestion is one generated improvement tied to a resume section.
type AISuggestion struct {
	Section    string `json:"section"`
	Suggestion string `json:"suggestion"`
	Applied    bool   `json:"applied"`
}

// Record is the canonical resume row, one per user. The enrichment
// payload (LinkedInData) is opaque: written wholesale, never merged.
type Record struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	LinkedInProfileURL string          `json:"linkedin_profile_url,omitempty"`
	LinkedInData       json.RawMessage `json:"linkedin_data"`
	LinkedInConnected  bool            `json:"linkedin_connected"`
	CustomSections     []CustomSection `json:"custom_sections"`
	AISuggestions      []AISuggestion  `json:"ai_suggestions"`
	Theme              string          `json:"theme"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Update carries the partial-update fields of the edit endpoint.
// Nil means "leave unchanged".
type Update struct {
	CustomSections *[]CustomSection `json:"custom_sections,omitempty"`
	AISuggestions  *[]AISuggestion  `json:"ai_suggestions,omitempty"`
	Theme          *string          `json:"theme,omitempty"`
}

// Validate rejects updates that would store an unknown theme.
func (u Update) Validate() error {
	if u.Theme != nil && !ValidTheme(*u.Theme) {
		return fmt.Errorf("unknown theme %q", *u.Theme)
	}
	return nil
}
