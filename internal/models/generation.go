package models

import (
	"time"

	"gorm.io/datatypes"
)

// Generation outcomes
const (
	GenerationSuccess   = "success"
	GenerationMalformed = "malformed"
	GenerationFailed    = "failed"
)

// GenerationRecord is an audit entry for one call to the text-generation
// collaborator. The raw reply is kept verbatim so malformed output can be
// inspected after the fact.
type GenerationRecord struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TraceID     string         `gorm:"type:uuid;not null;index" json:"traceId"`
	UserID      uint           `gorm:"not null;index" json:"userId"`
	Query       string         `gorm:"type:text;not null" json:"query"`
	RawResponse datatypes.JSON `gorm:"type:jsonb" json:"rawResponse,omitempty"`
	Outcome     string         `gorm:"not null;default:'success'" json:"outcome"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// TableName specifies the table name for GenerationRecord model
func (GenerationRecord) TableName() string {
	return "generation_records"
}
