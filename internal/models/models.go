package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SearchCycle groups roles into one job-search period
type SearchCycle struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   *time.Time     `json:"ended_at"`
	Roles     []Role         `gorm:"foreignKey:CycleID" json:"-"`
}

// Role represents one tracked employer application
type Role struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	CycleID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"cycle_id"`
	Slug           string         `gorm:"not null;uniqueIndex" json:"slug"`
	Company        string         `gorm:"not null" json:"company"`
	Title          string         `json:"title"`
	Status         Status         `gorm:"not null;default:new" json:"status"`
	Notes          string         `json:"notes"`
	LastEventAt    time.Time      `gorm:"not null" json:"last_event_at"`
	AppliedAt      *time.Time     `json:"applied_at"`
	InterviewingAt *time.Time     `json:"interviewing_at"`
	OfferedAt      *time.Time     `json:"offered_at"`
	ClosedAt       *time.Time     `json:"closed_at"`
	Cycle          SearchCycle    `gorm:"foreignKey:CycleID" json:"-"`
	Events         []RoleEvent    `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
}

// RoleEvent is one record in a role's append-only history. Type,
// EventDate and EventIndex are fixed once persisted; only Notes and
// Summary may change afterwards.
type RoleEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	RoleID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_role_event_slug,priority:1;uniqueIndex:idx_role_event_index,priority:1" json:"role_id"`
	Slug       string    `gorm:"not null;uniqueIndex:idx_role_event_slug,priority:2" json:"slug"`
	Type       string    `gorm:"not null;default:''" json:"type"`
	EventDate  time.Time `gorm:"not null" json:"event_date"`
	EventIndex int       `gorm:"not null;uniqueIndex:idx_role_event_index,priority:2" json:"event_index"`
	Notes      string    `json:"notes"`
	Summary    string    `json:"summary"`
	Role       Role      `gorm:"foreignKey:RoleID" json:"-"`
}

// StatusTimestamp returns a pointer to the role's timestamp field for
// the given status, or nil for the initial status.
func (r *Role) StatusTimestamp(s Status) **time.Time {
	switch s {
	case StatusApplied:
		return &r.AppliedAt
	case StatusInterviewing:
		return &r.InterviewingAt
	case StatusOffered:
		return &r.OfferedAt
	case StatusClosed:
		return &r.ClosedAt
	}
	return nil
}

// StartOfDay truncates t to midnight in its own location. Event dates
// are calendar dates, so ordering comparisons and the role's
// last-activity timestamp use start-of-day values.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&SearchCycle{},
		&Role{},
		&RoleEvent{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
