package models

import (
	"time"

	"github.com/lib/pq"
)

// ActivityAction values recorded in the audit log.
const (
	ActionPostCreated = "post_created"
)

// ActivityLog is one audit row per successful ingestion, including how the mirror fared.
type ActivityLog struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Action        string         `gorm:"type:varchar(50);not null" json:"action"`
	Slug          string         `gorm:"type:varchar(255);index;not null" json:"slug"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags"`
	MirrorOutcome string         `gorm:"type:varchar(20);not null" json:"mirror_outcome"`
	MirrorReason  string         `gorm:"type:text" json:"mirror_reason,omitempty"`
	CommitSHA     string         `gorm:"type:varchar(64)" json:"commit_sha,omitempty"`
	LoggedAt      time.Time      `gorm:"autoCreateTime" json:"logged_at"`
}
