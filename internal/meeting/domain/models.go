package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type MeetingType string

const (
	MeetingTypeBoard     MeetingType = "board"
	MeetingTypeCommittee MeetingType = "committee"
	MeetingTypeCAB       MeetingType = "cab"
	MeetingTypeEmergency MeetingType = "emergency"
	MeetingTypeTeam      MeetingType = "team"
	MeetingTypeStandup   MeetingType = "standup"
	MeetingTypePlanning  MeetingType = "planning"
)

func (t MeetingType) Valid() bool {
	switch t {
	case MeetingTypeBoard, MeetingTypeCommittee, MeetingTypeCAB, MeetingTypeEmergency,
		MeetingTypeTeam, MeetingTypeStandup, MeetingTypePlanning:
		return true
	}
	return false
}

type Status string

const (
	StatusScheduled       Status = "scheduled"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
	StatusPendingApproval Status = "pending_approval"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusPendingApproval:
		return true
	}
	return false
}

type RSVPStatus string

const (
	RSVPAttending    RSVPStatus = "attending"
	RSVPNotAttending RSVPStatus = "not_attending"
	RSVPTentative    RSVPStatus = "tentative"
)

func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPAttending, RSVPNotAttending, RSVPTentative:
		return true
	}
	return false
}

// Meeting dates are calendar dates stored as UTC midnight. Time is a display
// string and plays no part in lifecycle rules.
type Meeting struct {
	ID          snowflake.ID                `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"not null" json:"title"`
	Date        time.Time                   `gorm:"column:meeting_date;not null;index" json:"date"`
	Time        string                      `gorm:"column:display_time" json:"time,omitempty"`
	Type        MeetingType                 `gorm:"type:varchar(16);not null" json:"type"`
	Status      Status                      `gorm:"type:varchar(20);not null;index" json:"status"`
	MeetingLink *string                     `json:"meeting_link,omitempty"`
	Agenda      datatypes.JSONSlice[string] `json:"agenda"`
	CreatedBy   string                      `gorm:"type:varchar(64);not null" json:"created_by"`
	Reason      *string                     `json:"reason,omitempty"`
	CreatedAt   time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"not null" json:"updated_at"`

	Minutes *MinutesRecord `gorm:"foreignKey:MeetingID" json:"minutes,omitempty"`
	RSVPs   []RSVP         `gorm:"foreignKey:MeetingID" json:"rsvps"`
}

func (Meeting) TableName() string { return "meetings" }

type RSVP struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	MeetingID   snowflake.ID `gorm:"not null;uniqueIndex:ux_meeting_rsvps_person" json:"meeting_id"`
	PersonID    string       `gorm:"type:varchar(64);not null;uniqueIndex:ux_meeting_rsvps_person" json:"person_id"`
	PersonName  string       `gorm:"not null" json:"person_name"`
	Status      RSVPStatus   `gorm:"type:varchar(16);not null" json:"status"`
	RespondedAt time.Time    `gorm:"not null" json:"responded_at"`
}

func (RSVP) TableName() string { return "meeting_rsvps" }

// EmergencyMeetingRequest waits for someone with scheduling authority; it
// never becomes a Meeting by itself.
type EmergencyMeetingRequest struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Reason          string       `gorm:"not null" json:"reason"`
	RequestedBy     string       `gorm:"type:varchar(64);not null" json:"requested_by"`
	RequestedByName string       `json:"requested_by_name,omitempty"`
	Status          Status       `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
}

func (EmergencyMeetingRequest) TableName() string { return "emergency_meeting_requests" }

// RSVPSummary counts responses per status.
type RSVPSummary struct {
	MeetingID    string `json:"meeting_id"`
	Attending    int    `json:"attending"`
	NotAttending int    `json:"not_attending"`
	Tentative    int    `json:"tentative"`
	Total        int    `json:"total"`
}

func Summarize(meetingID snowflake.ID, rsvps []RSVP) RSVPSummary {
	summary := RSVPSummary{MeetingID: meetingID.String()}
	for _, r := range rsvps {
		switch r.Status {
		case RSVPAttending:
			summary.Attending++
		case RSVPNotAttending:
			summary.NotAttending++
		case RSVPTentative:
			summary.Tentative++
		}
		summary.Total++
	}
	return summary
}
