// Package idempotency records client-supplied command keys so retried
// commands resolve to their original result instead of applying twice.
package idempotency

import (
	"context"
	"strings"
	"time"

	"github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/apperr"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxKeyLength = 128

var ErrKeyTooLong = apperr.New(apperr.ErrValidation, "idempotency_key_too_long")

// Receipt ties a (scope, key) pair to the entity a command produced.
type Receipt struct {
	Scope     string       `gorm:"primaryKey;type:varchar(160)"`
	Key       string       `gorm:"column:idempotency_key;primaryKey;type:varchar(128)"`
	ResultID  snowflake.ID `gorm:"not null"`
	CreatedAt time.Time    `gorm:"not null"`
}

func (Receipt) TableName() string { return "command_receipts" }

// Normalize trims a key; empty means "not idempotent". Keys longer than
// maxKeyLength are rejected rather than cut, so two distinct keys never
// collapse onto one receipt.
func Normalize(key string) (string, error) {
	key = strings.TrimSpace(key)
	if len(key) > maxKeyLength {
		return "", ErrKeyTooLong
	}
	return key, nil
}

// Scope qualifies a base scope with the owners of a command, so the same
// client key used by different owners resolves to different receipts.
func Scope(base string, owners ...string) string {
	if len(owners) == 0 {
		return base
	}
	return base + ":" + strings.Join(owners, ":")
}

type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// Lookup returns the recorded result for key, or 0 when the key is unseen.
func (s *Store) Lookup(ctx context.Context, db *gorm.DB, scope, key string) (snowflake.ID, error) {
	if key == "" {
		return 0, nil
	}
	var receipt Receipt
	err := db.WithContext(ctx).
		Where("scope = ? AND idempotency_key = ?", scope, key).
		Limit(1).
		Find(&receipt).Error
	if err != nil {
		return 0, err
	}
	return receipt.ResultID, nil
}

// Record stores the receipt inside the caller's transaction. When another
// writer already holds the key, the winning result id is returned with
// recorded=false.
func (s *Store) Record(ctx context.Context, db *gorm.DB, scope, key string, resultID snowflake.ID, now time.Time) (snowflake.ID, bool, error) {
	if key == "" {
		return resultID, true, nil
	}
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Receipt{Scope: scope, Key: key, ResultID: resultID, CreatedAt: now.UTC()})
	if result.Error != nil {
		return 0, false, result.Error
	}
	if result.RowsAffected == 1 {
		return resultID, true, nil
	}
	existing, err := s.Lookup(ctx, db, scope, key)
	if err != nil {
		return 0, false, err
	}
	return existing, false, nil
}
