package dto

// ActivityLogListRequest audit log filters
type ActivityLogListRequest struct {
	PaginationRequest
	AdminID      string `form:"adminId"      binding:"omitempty,uuid"`
	Action       string `form:"action"       binding:"omitempty,max=64"`
	ResourceType string `form:"resourceType" binding:"omitempty,max=32"`
}

// ActivityLogResponse audit entry
type ActivityLogResponse struct {
	ID           string                 `json:"id"`
	AdminID      string                 `json:"adminId,omitempty"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resourceType"`
	ResourceID   string                 `json:"resourceId"`
	Details      map[string]interface{} `json:"details,omitempty"`
	Success      bool                   `json:"success"`
	ErrorMessage string                 `json:"errorMessage,omitempty"`
	CreatedAt    string                 `json:"createdAt"`
}
