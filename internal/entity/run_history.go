package entity

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// JobType names a batch run.
type JobType string

const (
	JobTypeNewsIngestion   JobType = "NEWS_INGESTION"
	JobTypeSocialIngestion JobType = "SOCIAL_INGESTION"
	JobTypeVerification    JobType = "VERIFICATION"
)

// RunStatus is the outcome of a batch run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusSkipped   RunStatus = "SKIPPED"
)

// RunHistory records one execution of a batch job.
type RunHistory struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	JobType      JobType        `gorm:"type:varchar(32);not null;index" json:"job_type"`
	Status       RunStatus      `gorm:"type:varchar(16);not null" json:"status"`
	Symbols      pq.StringArray `gorm:"type:text[]" json:"symbols"`
	Output       sql.NullString `gorm:"type:text" json:"-"`
	ErrorMessage sql.NullString `gorm:"type:text" json:"-"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime   `json:"-"`
}

// TableName specifies the table name for the RunHistory model.
func (RunHistory) TableName() string {
	return "run_histories"
}
