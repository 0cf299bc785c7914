package db

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{gorm.ErrDuplicatedKey, true},
		{fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{errors.New("UNIQUE constraint failed: meeting_rsvps.meeting_id"), true},
		{errors.New(`pq: duplicate key value violates unique constraint "ux_rsvp"`), true},
		{errors.New("Error 1062: Duplicate entry"), true},
		{errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		if got := IsDuplicateKeyErr(tc.err); got != tc.want {
			t.Fatalf("IsDuplicateKeyErr(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
