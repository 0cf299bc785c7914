package domain

import (
	"context"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Statuses []Status
	Type     MeetingType
	From     *time.Time
	To       *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, meeting *Meeting) error
	Update(ctx context.Context, db *gorm.DB, meeting *Meeting) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Meeting, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Meeting, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Meeting, error)
	ListByStatus(ctx context.Context, db *gorm.DB, statuses ...Status) ([]Meeting, error)

	FindRSVP(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RSVP, error)
	UpsertRSVP(ctx context.Context, db *gorm.DB, rsvp *RSVP) error
	FindRSVPByPerson(ctx context.Context, db *gorm.DB, meetingID snowflake.ID, personID string) (*RSVP, error)
	ListRSVPs(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) ([]RSVP, error)

	FindMinutes(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) (*MinutesRecord, error)
	SaveMinutes(ctx context.Context, db *gorm.DB, record *MinutesRecord) error

	InsertEmergencyRequest(ctx context.Context, db *gorm.DB, req *EmergencyMeetingRequest) error
	ListEmergencyRequests(ctx context.Context, db *gorm.DB, status Status) ([]EmergencyMeetingRequest, error)
}
