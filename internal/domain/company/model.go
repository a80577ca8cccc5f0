package company

import "time"

// Company is a catalog record mirrored from the analysis engine. The chat
// service never mutates companies; it only renders and filters them.
type Company struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description,omitempty"`
	Website        string     `json:"website,omitempty"`
	Industry       string     `json:"industry,omitempty"`
	LogoURL        string     `json:"logo_url,omitempty"`
	DocumentsCount int        `json:"documents_count,omitempty"`
	Verdict        string     `json:"verdict,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Document describes one legal document tracked for a company.
type Document struct {
	ID          string     `json:"id"`
	CompanySlug string     `json:"company_slug"`
	Title       string     `json:"title"`
	Kind        string     `json:"kind"` // privacy_policy, terms_of_service, ...
	URL         string     `json:"url,omitempty"`
	RetrievedAt *time.Time `json:"retrieved_at,omitempty"`
}

// Logo is a lazily fetched company logo reference.
type Logo struct {
	Slug        string `json:"slug"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
}
