package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type DonationType string

const (
	DonationPersonal   DonationType = "personal"
	DonationFundraised DonationType = "fundraised"
)

func (t DonationType) Valid() bool {
	return t == DonationPersonal || t == DonationFundraised
}

type ProspectType string

const (
	ProspectIndividual  ProspectType = "individual"
	ProspectCorporation ProspectType = "corporation"
	ProspectFoundation  ProspectType = "foundation"
	ProspectGovernment  ProspectType = "government"
	ProspectFaithOrg    ProspectType = "faith_org"
	ProspectOther       ProspectType = "other"
)

func (t ProspectType) Valid() bool {
	switch t {
	case ProspectIndividual, ProspectCorporation, ProspectFoundation,
		ProspectGovernment, ProspectFaithOrg, ProspectOther:
		return true
	}
	return false
}

type ProspectStatus string

const (
	ProspectIdentified ProspectStatus = "identified"
	ProspectContacted  ProspectStatus = "contacted"
	ProspectPending    ProspectStatus = "pending"
	ProspectConfirmed  ProspectStatus = "confirmed"
	ProspectDeclined   ProspectStatus = "declined"
)

func (s ProspectStatus) Valid() bool {
	switch s {
	case ProspectIdentified, ProspectContacted, ProspectPending, ProspectConfirmed, ProspectDeclined:
		return true
	}
	return false
}

// Progress is a board member's Give or Get ledger. Amounts are in the
// smallest currency unit. Raised, PersonalContribution and Fundraised only
// change together with an appended Donation.
type Progress struct {
	VolunteerID          snowflake.ID `gorm:"primaryKey" json:"volunteer_id"`
	Goal                 int64        `gorm:"not null;default:0" json:"goal"`
	PersonalContribution int64        `gorm:"not null;default:0" json:"personal_contribution"`
	Fundraised           int64        `gorm:"not null;default:0" json:"fundraised"`
	Raised               int64        `gorm:"not null;default:0" json:"raised"`
	CreatedAt            time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time    `gorm:"not null" json:"updated_at"`

	Donations []Donation `gorm:"foreignKey:VolunteerID;references:VolunteerID" json:"donation_log"`
	Prospects []Prospect `gorm:"foreignKey:VolunteerID;references:VolunteerID" json:"prospects"`
}

func (Progress) TableName() string { return "give_or_get_progress" }

type Donation struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	VolunteerID snowflake.ID `gorm:"not null;index" json:"volunteer_id"`
	Amount      int64        `gorm:"not null" json:"amount"`
	Type        DonationType `gorm:"type:varchar(16);not null" json:"type"`
	Note        string       `json:"note,omitempty"`
	DonatedAt   time.Time    `gorm:"not null" json:"date"`
}

func (Donation) TableName() string { return "fundraising_donations" }

type Prospect struct {
	ID           snowflake.ID   `gorm:"primaryKey" json:"id"`
	VolunteerID  snowflake.ID   `gorm:"not null;index" json:"volunteer_id"`
	Name         string         `gorm:"not null" json:"name"`
	Email        *string        `json:"email,omitempty"`
	Phone        *string        `json:"phone,omitempty"`
	Organization *string        `json:"organization,omitempty"`
	Type         ProspectType   `gorm:"type:varchar(16);not null" json:"type"`
	Amount       int64          `gorm:"not null" json:"amount"`
	Status       ProspectStatus `gorm:"type:varchar(16);not null" json:"status"`
	LastContact  *time.Time     `json:"last_contact,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`

	OutreachLog []OutreachEntry `gorm:"foreignKey:ProspectID" json:"outreach_log"`
}

func (Prospect) TableName() string { return "fundraising_prospects" }

type OutreachEntry struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ProspectID  snowflake.ID `gorm:"not null;index" json:"prospect_id"`
	ContactedAt time.Time    `gorm:"not null" json:"date"`
	Method      string       `gorm:"not null" json:"method"`
	Notes       string       `json:"notes,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}

func (OutreachEntry) TableName() string { return "prospect_outreach" }
