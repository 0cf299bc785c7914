package repository

import (
	"context"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/domain"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, meeting *domain.Meeting) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(meeting).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, meeting *domain.Meeting) error {
	return db.WithContext(ctx).
		Model(&domain.Meeting{}).
		Where("id = ?", meeting.ID).
		Updates(map[string]any{
			"title":        meeting.Title,
			"meeting_date": meeting.Date,
			"display_time": meeting.Time,
			"type":         meeting.Type,
			"status":       meeting.Status,
			"meeting_link": meeting.MeetingLink,
			"agenda":       meeting.Agenda,
			"updated_at":   meeting.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Meeting, error) {
	return r.find(db.WithContext(ctx).
		Preload("Minutes").
		Preload("RSVPs", func(db *gorm.DB) *gorm.DB { return db.Order("responded_at asc, id asc") }), id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Meeting, error) {
	return r.find(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repo) find(db *gorm.DB, id snowflake.ID) (*domain.Meeting, error) {
	var meeting domain.Meeting
	err := db.Where("id = ?", id).Limit(1).Find(&meeting).Error
	if err != nil {
		return nil, err
	}
	if meeting.ID == 0 {
		return nil, nil
	}
	return &meeting, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Meeting, error) {
	var meetings []*domain.Meeting
	stmt := db.WithContext(ctx).Model(&domain.Meeting{})
	if len(filter.Statuses) > 0 {
		stmt = stmt.Where("status IN ?", filter.Statuses)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		stmt = stmt.Where("meeting_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("meeting_date <= ?", *filter.To)
	}
	stmt, err := pagination.Apply(stmt, page)
	if err != nil {
		return nil, err
	}
	if err := stmt.Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *repo) ListByStatus(ctx context.Context, db *gorm.DB, statuses ...domain.Status) ([]domain.Meeting, error) {
	var meetings []domain.Meeting
	stmt := db.WithContext(ctx).Model(&domain.Meeting{})
	if len(statuses) > 0 {
		stmt = stmt.Where("status IN ?", statuses)
	}
	err := stmt.Order("meeting_date asc, id asc").Find(&meetings).Error
	if err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *repo) FindRSVP(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.RSVP, error) {
	var rsvp domain.RSVP
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rsvp).Error
	if err != nil {
		return nil, err
	}
	if rsvp.ID == 0 {
		return nil, nil
	}
	return &rsvp, nil
}

// UpsertRSVP replaces any prior response for the same person in place.
func (r *repo) UpsertRSVP(ctx context.Context, db *gorm.DB, rsvp *domain.RSVP) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meeting_id"}, {Name: "person_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"person_name", "status", "responded_at"}),
		}).
		Create(rsvp).Error
}

func (r *repo) FindRSVPByPerson(ctx context.Context, db *gorm.DB, meetingID snowflake.ID, personID string) (*domain.RSVP, error) {
	var rsvp domain.RSVP
	err := db.WithContext(ctx).
		Where("meeting_id = ? AND person_id = ?", meetingID, personID).
		Limit(1).
		Find(&rsvp).Error
	if err != nil {
		return nil, err
	}
	if rsvp.ID == 0 {
		return nil, nil
	}
	return &rsvp, nil
}

func (r *repo) ListRSVPs(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) ([]domain.RSVP, error) {
	var rsvps []domain.RSVP
	err := db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("responded_at asc, id asc").
		Find(&rsvps).Error
	if err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (r *repo) FindMinutes(ctx context.Context, db *gorm.DB, meetingID snowflake.ID) (*domain.MinutesRecord, error) {
	var record domain.MinutesRecord
	err := db.WithContext(ctx).Where("meeting_id = ?", meetingID).Limit(1).Find(&record).Error
	if err != nil {
		return nil, err
	}
	if record.MeetingID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) SaveMinutes(ctx context.Context, db *gorm.DB, record *domain.MinutesRecord) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meeting_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "status", "revision_note", "approved_by", "approved_at", "updated_at"}),
		}).
		Create(record).Error
}

func (r *repo) InsertEmergencyRequest(ctx context.Context, db *gorm.DB, req *domain.EmergencyMeetingRequest) error {
	return db.WithContext(ctx).Create(req).Error
}

func (r *repo) ListEmergencyRequests(ctx context.Context, db *gorm.DB, status domain.Status) ([]domain.EmergencyMeetingRequest, error) {
	var requests []domain.EmergencyMeetingRequest
	stmt := db.WithContext(ctx).Model(&domain.EmergencyMeetingRequest{})
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if err := stmt.Order("created_at desc, id desc").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
