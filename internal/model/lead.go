package model

import "time"

// Lead parent interest form submission (table leads)
type Lead struct {
	SubmissionID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Whatsapp     string  `gorm:"type:varchar(15);not null"                      json:"whatsapp"`
	AgeRange     string  `gorm:"type:varchar(10);not null"                      json:"ageRange"`
	NumberOfKids int     `gorm:"type:smallint;not null;default:1"               json:"numberOfKids"`
	Source       string  `gorm:"type:varchar(50);not null;default:'direct'"     json:"source"`
	SessionID    *string `gorm:"type:varchar(100)"                              json:"sessionId,omitempty"`
	Status       string  `gorm:"type:varchar(20);not null;default:'new'"        json:"status"` // new | contacted | enrolled | no_response
	Notes        string  `gorm:"type:text;not null;default:''"                  json:"notes"`

	IsDuplicate          bool        `gorm:"not null;default:false"               json:"isDuplicate"`
	DuplicateOf          *string     `gorm:"type:uuid"                            json:"duplicateOf,omitempty"`
	HasDuplicates        bool        `gorm:"not null;default:false"               json:"hasDuplicates"`
	DuplicateSubmissions StringArray `gorm:"type:text[];not null;default:'{}'"    json:"duplicateSubmissions"`

	ShareCode         *string     `gorm:"type:varchar(6)"                   json:"shareCode,omitempty"`
	SharedTo          StringArray `gorm:"type:text[];not null;default:'{}'" json:"sharedTo"`
	LastSharePlatform *string     `gorm:"type:varchar(20)"                  json:"-"`
	LastShareIP       *string     `gorm:"type:varchar(64)"                  json:"-"`
	LastShareAt       *time.Time  `json:"-"`

	SubmittedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"submittedAt"`
	BaseModel
}

// TableName table name
func (Lead) TableName() string { return "leads" }

// AddDuplicate links a duplicate submission to this (original) lead.
func (l *Lead) AddDuplicate(id string) {
	if !l.DuplicateSubmissions.Contains(id) {
		l.DuplicateSubmissions = append(l.DuplicateSubmissions, id)
	}
	l.HasDuplicates = len(l.DuplicateSubmissions) > 0
}

// RemoveDuplicate unlinks a duplicate submission.
func (l *Lead) RemoveDuplicate(id string) {
	l.DuplicateSubmissions = l.DuplicateSubmissions.Without(id)
	l.HasDuplicates = len(l.DuplicateSubmissions) > 0
}

// AddSharedTo records a platform in the shared-to set; false when already present.
func (l *Lead) AddSharedTo(platform string) bool {
	if platform == "" || l.SharedTo.Contains(platform) {
		return false
	}
	l.SharedTo = append(l.SharedTo, platform)
	return true
}

// IsRepeatShare reports whether a share from ip/platform at now falls inside window
// of the last recorded share.
func (l *Lead) IsRepeatShare(ip, platform string, now time.Time, window time.Duration) bool {
	if l.LastShareAt == nil || l.LastShareIP == nil || l.LastSharePlatform == nil {
		return false
	}
	if *l.LastShareIP != ip || *l.LastSharePlatform != platform {
		return false
	}
	return now.Sub(*l.LastShareAt) < window
}

// ShareEvent one entry of a lead's click/intent/visit logs (table share_events)
type ShareEvent struct {
	ShareEventID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	LeadID       string    `gorm:"type:uuid;not null"                             json:"leadId"`
	Kind         string    `gorm:"type:varchar(10);not null"                      json:"kind"` // click | intent | visit
	Platform     string    `gorm:"type:varchar(20);not null;default:''"           json:"platform,omitempty"`
	ShareCode    string    `gorm:"type:varchar(6);not null;default:''"            json:"shareCode,omitempty"`
	IP           string    `gorm:"type:varchar(64);not null;default:''"           json:"ip,omitempty"`
	UserAgent    string    `gorm:"type:varchar(500);not null;default:''"          json:"userAgent,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"createdAt"`
}

// TableName table name
func (ShareEvent) TableName() string { return "share_events" }

// ShareCounts per-lead counters, one per event kind
type ShareCounts struct {
	Clicks  int64 `json:"clicks"`
	Intents int64 `json:"intents"`
	Visits  int64 `json:"visits"`
}

// Add increments the counter matching kind.
func (c *ShareCounts) Add(kind string, n int64) {
	switch kind {
	case ShareKindClick:
		c.Clicks += n
	case ShareKindIntent:
		c.Intents += n
	case ShareKindVisit:
		c.Visits += n
	}
}
