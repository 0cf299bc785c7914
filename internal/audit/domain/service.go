package domain

import (
	"context"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListAuditLogRequest struct {
	pagination.Pagination
	Action     string
	TargetType string
	TargetID   string
	ActorID    string
	StartAt    *time.Time
	EndAt      *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	// AuditLog writes one entry. When tx is non-nil the entry joins that
	// transaction, otherwise it is written on its own.
	AuditLog(ctx context.Context, tx *gorm.DB, action, targetType, targetID string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidAction    = apperr.New(apperr.ErrValidation, "invalid_action")
	ErrInvalidPageToken = pagination.ErrInvalidPageToken
	ErrInvalidTimeRange = apperr.New(apperr.ErrValidation, "invalid_time_range")
)
