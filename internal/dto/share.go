package dto

// TrackShareRequest share button press
type TrackShareRequest struct {
	Platform string `json:"platform" binding:"required,platform"`
}

// ShareCounts the three separately tracked share counters
type ShareCounts struct {
	Clicks  int64 `json:"clicks"`
	Intents int64 `json:"intents"`
	Visits  int64 `json:"visits"`
}

// TrackShareResponse result of tracking a share
type TrackShareResponse struct {
	ShareCode string      `json:"shareCode"`
	ShareURL  string      `json:"shareUrl"`
	Duplicate bool        `json:"duplicate"`
	Counts    ShareCounts `json:"counts"`
}

// ShareAnalyticsResponse admin funnel analytics
type ShareAnalyticsResponse struct {
	TotalLeads     int64                  `json:"totalLeads"`
	DuplicateLeads int64                  `json:"duplicateLeads"`
	ByStatus       map[string]int64       `json:"byStatus"`
	BySource       map[string]int64       `json:"bySource"`
	ConversionRate float64                `json:"conversionRate"` // enrolled / non-duplicate leads, percent
	Shares         ShareCounts            `json:"shares"`
	ByPlatform     map[string]ShareCounts `json:"byPlatform"`
	VisitRate      float64                `json:"visitRate"` // visits / intents, percent
}
