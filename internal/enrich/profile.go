package enrich

import "encoding/json"

// Date is the provider's date sub-object. Fields arrive as strings and
// any of them may be absent.
type Date struct {
	Day   string `json:"day,omitempty"`
	Month string `json:"month,omitempty"`
	Year  string `json:"year,omitempty"`
}

type Experience struct {
	Company     string `json:"company"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartsAt    *Date  `json:"starts_at,omitempty"`
	EndsAt      *Date  `json:"ends_at,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
}

type Education struct {
	ActivitiesAndSocieties   string `json:"activities_and_societies"`
	DegreeName               string `json:"degree_name"`
	Description              string `json:"description"`
	EndsAt                   *Date  `json:"ends_at,omitempty"`
	FieldOfStudy             string `json:"field_of_study"`
	Grade                    string `json:"grade"`
	LogoURL                  string `json:"logo_url"`
	School                   string `json:"school"`
	SchoolLinkedInProfileURL string `json:"school_linkedin_profile_url"`
	StartsAt                 *Date  `json:"starts_at,omitempty"`
}

type Certification struct {
	Authority     string `json:"authority"`
	DisplaySource string `json:"display_source"`
	EndsAt        string `json:"ends_at"`
	LicenseNumber string `json:"license_number"`
	Name          string `json:"name"`
	StartsAt      string `json:"starts_at"`
	URL           string `json:"url"`
}

type Project struct {
	Description string `json:"description"`
	EndsAt      *Date  `json:"ends_at,omitempty"`
	StartsAt    *Date  `json:"starts_at,omitempty"`
	Title       string `json:"title"`
	URL         string `json:"url"`
}

type Activity struct {
	ActivityStatus string `json:"activity_status"`
	Link           string `json:"link"`
	Title          string `json:"title"`
}

type SimilarProfile struct {
	Link     string `json:"link"`
	Location string `json:"location"`
	Name     string `json:"name"`
	Summary  string `json:"summary"`
}

// Profile is the decoded shape of the enrichment payload. The payload
// itself is persisted wholesale as raw JSON; this type exists for the
// consumers that need fields (AI suggestions, previews).
type Profile struct {
	FirstName               string `json:"first_name"`
	LastName                string `json:"last_name"`
	FullName                string `json:"full_name"`
	Headline                string `json:"headline"`
	Occupation              string `json:"occupation"`
	Summary                 string `json:"summary"`
	ProfilePicURL           string `json:"profile_pic_url,omitempty"`
	BackgroundCoverImageURL string `json:"background_cover_image_url,omitempty"`
	City                    string `json:"city"`
	State                   string `json:"state"`
	Country                 string `json:"country"`
	CountryFullName         string `json:"country_full_name"`
	Connections             string `json:"connections"`
	FollowerCount           string `json:"follower_count"`
	PublicIdentifier        string `json:"public_identifier"`

	Experiences    []Experience    `json:"experiences"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
	Activities     []Activity      `json:"activities"`

	AccomplishmentProjects []Project `json:"accomplishment_projects"`

	Languages       string `json:"languages"`
	Skills          string `json:"skills,omitempty"`
	Recommendations string `json:"recommendations"`
	VolunteerWork   string `json:"volunteer_work"`

	SimilarlyNamedProfiles []SimilarProfile `json:"similarly_named_profiles"`
}

// DecodeProfile parses a stored payload into the typed Profile.
func DecodeProfile(raw json.RawMessage) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
