package entities

import (
	"time"

	"gorm.io/datatypes"
)

// IngestTask is a queued document-ingest job. The uploaded bytes ride along
// in the row so workers on any instance can pick the task up.
type IngestTask struct {
	ID             uint           `gorm:"primaryKey"`
	PublicID       string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	ConversationID string         `gorm:"type:varchar(50);index;not null"`
	Status         string         `gorm:"type:varchar(20);index;not null;default:'queued'"`
	Payload        datatypes.JSON `gorm:"type:jsonb"`
	FileData       []byte         `gorm:"type:bytea"`
	Error          *string        `gorm:"type:text"`
	QueuedAt       time.Time      `gorm:"index;not null"`
	StartedAt      *time.Time
	CompletedAt    *time.Time
	FailedAt       *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for IngestTask.
func (IngestTask) TableName() string {
	return "ingest_tasks"
}
