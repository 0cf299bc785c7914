package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type MinutesStatus string

// MinutesNone is never stored; it names the absence of a record.
const (
	MinutesNone     MinutesStatus = "none"
	MinutesPending  MinutesStatus = "pending"
	MinutesDraft    MinutesStatus = "draft"
	MinutesApproved MinutesStatus = "approved"
)

type MinutesRecord struct {
	MeetingID    snowflake.ID  `gorm:"primaryKey" json:"meeting_id"`
	Content      string        `gorm:"type:text;not null" json:"content"`
	Status       MinutesStatus `gorm:"type:varchar(16);not null" json:"status"`
	RevisionNote *string       `json:"revision_note,omitempty"`
	ApprovedBy   *string       `gorm:"type:varchar(64)" json:"approved_by,omitempty"`
	ApprovedAt   *time.Time    `json:"approved_at,omitempty"`
	CreatedAt    time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updated_at"`
}

func (MinutesRecord) TableName() string { return "meeting_minutes" }

// MinutesStatusOf returns the workflow state of a possibly absent record.
func MinutesStatusOf(record *MinutesRecord) MinutesStatus {
	if record == nil || record.Status == "" {
		return MinutesNone
	}
	return record.Status
}

type MinutesAction string

const (
	MinutesActionSaveDraft       MinutesAction = "save_draft"
	MinutesActionApprove         MinutesAction = "approve"
	MinutesActionRequestRevision MinutesAction = "request_revision"
	MinutesActionReopen          MinutesAction = "reopen"
)

// NextMinutesStatus returns the state reached by applying action from
// current, or false when the workflow does not allow it. Approved content is
// only editable again through an explicit reopen.
func NextMinutesStatus(current MinutesStatus, action MinutesAction) (MinutesStatus, bool) {
	switch action {
	case MinutesActionSaveDraft:
		switch current {
		case MinutesNone, MinutesPending, MinutesDraft:
			return MinutesDraft, true
		}
	case MinutesActionApprove:
		if current == MinutesDraft {
			return MinutesApproved, true
		}
	case MinutesActionRequestRevision:
		if current == MinutesDraft {
			return MinutesDraft, true
		}
	case MinutesActionReopen:
		if current == MinutesApproved {
			return MinutesDraft, true
		}
	}
	return current, false
}
