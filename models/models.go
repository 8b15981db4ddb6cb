package models

import "time"

// AuditMode selects which audit pipeline a request runs through.
// It is validated once at the API boundary and passed as this type
// everywhere below it.
type AuditMode string

const (
	// ModeExisting audits a live marketplace listing identified by ASIN.
	ModeExisting AuditMode = "existing"
	// ModeNew generates a listing audit from an external product page URL.
	ModeNew AuditMode = "new"
)

// NormalizedInput is the validated form of a submitted audit request.
// Exactly one of ASIN / ProductURL is set, matching Mode.
type NormalizedInput struct {
	Mode        AuditMode `json:"mode"`
	ASIN        string    `json:"asin,omitempty"`
	ProductURL  string    `json:"product_url,omitempty"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
}

// ScrapedProductData holds the structured attributes extracted from an
// external product page. Absence of the whole struct is a valid
// pipeline state (the scrape degraded).
type ScrapedProductData struct {
	Title        string   `json:"title"`
	Images       []string `json:"images"`
	BulletPoints []string `json:"bullet_points"`
	Price        string   `json:"price"`
	Category     string   `json:"category"`
}

// KeywordTiers groups generated listing keywords by intent strength.
type KeywordTiers struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
	LongTail  []string `json:"long_tail"`
}

// ImageSlot is one of the six named image recommendations in a
// generated listing pack.
type ImageSlot struct {
	Name  string `json:"name"`
	Brief string `json:"brief"`
}

// ListingPack is the full generated listing returned for create-mode
// audits: title, bullets, description, keyword tiers and image slots.
type ListingPack struct {
	Title       string       `json:"title"`
	Bullets     []string     `json:"bullets"`
	Description string       `json:"description"`
	Keywords    KeywordTiers `json:"keywords"`
	ImageSlots  []ImageSlot  `json:"image_slots"`
}

// AnalysisResult is the parsed output of one AI audit. Score is always
// within [0,100]; Highlights and Recommendations are never nil.
type AnalysisResult struct {
	Title            string            `json:"title"`
	Score            int               `json:"score"`
	Highlights       []string          `json:"highlights"`
	Recommendations  []string          `json:"recommendations"`
	DetailedAnalysis map[string]string `json:"detailed_analysis"`
	Listing          *ListingPack      `json:"listing,omitempty"`
}

// Lead is the prospect record created on the first successful audit.
// Email stays empty until the capture flow runs; leads are never
// deleted by this service.
type Lead struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	AuditType AuditMode `json:"audit_type"`
	ASIN      string    `json:"asin,omitempty"`
	URL       string    `json:"url,omitempty"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Report is one persisted audit result owned by a Lead. Immutable once
// created; "latest" means most recent CreatedAt.
type Report struct {
	ID        string         `json:"id"`
	LeadID    string         `json:"lead_id"`
	Mode      AuditMode      `json:"mode"`
	Result    AnalysisResult `json:"result"`
	CreatedAt time.Time      `json:"created_at"`
}

// DeliveryRecord is the ephemeral outcome of one e-mail send attempt.
// It is reported back to the caller but never persisted.
type DeliveryRecord struct {
	Success   bool    `json:"success"`
	MessageID *string `json:"message_id,omitempty"`
	HasPDF    bool    `json:"has_pdf"`
	Error     string  `json:"error,omitempty"`
}

// User is an account record for the registration/session surface.
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	EmailVerified bool       `json:"emailVerified"`
	Disabled      bool       `json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
}
