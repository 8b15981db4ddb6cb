package models

// SubmitAuditRequest is the body of POST /api/v1/audit.
type SubmitAuditRequest struct {
	Mode        string   `json:"mode" binding:"required"`
	ASIN        string   `json:"asin,omitempty"`
	URL         string   `json:"url,omitempty"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	CheckOnly   bool     `json:"checkOnly,omitempty"`
}

// SubmitAuditResponse is returned on a successful audit.
type SubmitAuditResponse struct {
	Success  bool            `json:"success"`
	LeadID   string          `json:"leadId,omitempty"`
	AIResult *AnalysisResult `json:"aiResult,omitempty"`
}

// CheckOnlyResponse is returned when the caller only asked whether the
// input is scannable.
type CheckOnlyResponse struct {
	Success   bool `json:"success"`
	Scannable bool `json:"scannable"`
}

// CaptureEmailRequest is the body of POST /api/v1/audit/email.
type CaptureEmailRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Name   string `json:"name" binding:"required,max=256"`
	LeadID string `json:"leadId" binding:"required"`
	Mode   string `json:"mode,omitempty"`
}

// CaptureEmailResponse reports the capture outcome. MessageID is null
// when dispatch failed; the capture itself still succeeded.
type CaptureEmailResponse struct {
	Success   bool    `json:"success"`
	MessageID *string `json:"messageId"`
	HasPDF    bool    `json:"hasPdf"`
}

// SuggestData carries the free-form product fields for suggestions.
type SuggestData struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

// SuggestRequest is the body of POST /api/v1/suggest.
type SuggestRequest struct {
	Type string      `json:"type" binding:"required"`
	Data SuggestData `json:"data" binding:"required"`
}

// SuggestResponse carries the ranked suggestion list.
type SuggestResponse struct {
	Success     bool     `json:"success"`
	Suggestions []string `json:"suggestions"`
}

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Email              string `json:"email" binding:"required,email"`
	Password           string `json:"password" binding:"required,min=8"`
	Name               string `json:"name" binding:"required,max=256"`
	PromotionalConsent bool   `json:"promotionalConsent,omitempty"`
}

// RegisterResponse is returned with HTTP 201 on account creation.
type RegisterResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// MeResponse wraps the session identity payload.
type MeResponse struct {
	User User `json:"user"`
}

// ErrorResponse is the shared error envelope. Code is set only where
// the caller is expected to branch on it.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Code       string `json:"code,omitempty"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}
