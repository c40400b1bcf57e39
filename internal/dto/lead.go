package dto

import "strings"

// SubmitLeadRequest public interest form
type SubmitLeadRequest struct {
	Name         string `json:"name"         binding:"required,min=2,max=100"`
	Whatsapp     string `json:"whatsapp"     binding:"required,min=10,max=15,phone"`
	AgeRange     string `json:"ageRange"     binding:"required,oneof=5-7 8-10 11-14"`
	NumberOfKids *int   `json:"numberOfKids" binding:"omitempty,min=1,max=10"`
	Source       string `json:"source"       binding:"omitempty,max=50"`
	SessionID    string `json:"sessionId"    binding:"omitempty,max=100"`
}

// Normalize trims the free-text fields so length rules apply to what is stored.
func (r *SubmitLeadRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Whatsapp = strings.TrimSpace(r.Whatsapp)
	r.Source = strings.TrimSpace(r.Source)
	r.SessionID = strings.TrimSpace(r.SessionID)
}

// SubmitLeadResponse intake result
type SubmitLeadResponse struct {
	ID          string `json:"id"`
	IsDuplicate bool   `json:"isDuplicate"`
	Message     string `json:"message"`
}

// LeadListRequest admin list filters
type LeadListRequest struct {
	PaginationRequest
	Status   string `form:"status"   binding:"omitempty,oneof=new contacted enrolled no_response"`
	AgeRange string `form:"ageRange" binding:"omitempty,oneof=5-7 8-10 11-14"`
	Source   string `form:"source"   binding:"omitempty,max=50"`
	Sort     string `form:"sort"     binding:"omitempty,oneof=submittedAt -submittedAt name -name status -status"`
}

// UpdateLeadRequest partial admin update; unknown fields are ignored
type UpdateLeadRequest struct {
	Status         *string  `json:"status"         binding:"omitempty,oneof=new contacted enrolled no_response"`
	Notes          *string  `json:"notes"          binding:"omitempty,max=2000"`
	SharedToAppend []string `json:"sharedToAppend" binding:"omitempty,max=10,dive,platform"`
}

// LeadResponse admin view of a lead
type LeadResponse struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Whatsapp             string      `json:"whatsapp"`
	AgeRange             string      `json:"ageRange"`
	NumberOfKids         int         `json:"numberOfKids"`
	Source               string      `json:"source"`
	SessionID            string      `json:"sessionId,omitempty"`
	Status               string      `json:"status"`
	Notes                string      `json:"notes"`
	IsDuplicate          bool        `json:"isDuplicate"`
	DuplicateOf          string      `json:"duplicateOf,omitempty"`
	HasDuplicates        bool        `json:"hasDuplicates"`
	DuplicateSubmissions []string    `json:"duplicateSubmissions"`
	ShareCode            string      `json:"shareCode,omitempty"`
	SharedTo             []string    `json:"sharedTo"`
	Shares               ShareCounts `json:"shares"`
	SubmittedAt          string      `json:"submittedAt"`
	UpdatedAt            string      `json:"updatedAt"`
}

// LeadStatsResponse public landing-page stats
type LeadStatsResponse struct {
	TotalSubmissions int64            `json:"totalSubmissions"`
	ByStatus         map[string]int64 `json:"byStatus"`
	ByAgeRange       map[string]int64 `json:"byAgeRange"`
}
