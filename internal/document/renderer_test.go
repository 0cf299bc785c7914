package document

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	meetingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderMinutesProducesPDF(t *testing.T) {
	r := New(zap.NewNop())
	out, err := r.RenderMinutes(context.Background(), MinutesDocument{
		OrganizationName: "Health Matters Clinic",
		MeetingTitle:     "March board meeting",
		MeetingDate:      "2026-03-09",
		MeetingType:      "board",
		Status:           "approved",
		ApprovedBy:       "p-chair",
		Agenda:           []string{"Budget", "Elections"},
		Attendees:        []Attendee{{Name: "Ana", Status: "attending"}},
		Content:          strings.Repeat("Motion carried unanimously. ", 60),
	})
	require.NoError(t, err)

	body, err := io.ReadAll(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
}

func TestRenderMinutesRejectsEmptyContent(t *testing.T) {
	_, err := New(zap.NewNop()).RenderMinutes(context.Background(), MinutesDocument{Content: "  "})
	assert.ErrorIs(t, err, ErrEmptyMinutes)
}

func TestMinutesFromMeeting(t *testing.T) {
	approvedBy := "p-chair"
	approvedAt := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	meeting := meetingdomain.Meeting{
		Title: "March board meeting",
		Date:  time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Type:  meetingdomain.MeetingTypeBoard,
		Minutes: &meetingdomain.MinutesRecord{
			Content:    "Called to order.",
			Status:     meetingdomain.MinutesApproved,
			ApprovedBy: &approvedBy,
			ApprovedAt: &approvedAt,
		},
		RSVPs: []meetingdomain.RSVP{{PersonName: "Ana", Status: meetingdomain.RSVPAttending}},
	}

	doc, err := MinutesFromMeeting("HMC", meeting)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", doc.MeetingDate)
	assert.Equal(t, "p-chair", doc.ApprovedBy)
	assert.Equal(t, "2026-03-12T09:00:00Z", doc.ApprovedAt)
	assert.Equal(t, []Attendee{{Name: "Ana", Status: "attending"}}, doc.Attendees)

	meeting.Minutes = nil
	_, err = MinutesFromMeeting("HMC", meeting)
	assert.ErrorIs(t, err, meetingdomain.ErrMinutesMissing)
}

func TestWrap(t *testing.T) {
	lines := wrap("one two three\n\nfour", 7)
	assert.Equal(t, []string{"one two", "three", "", "four"}, lines)

	lines = wrap("abcdefghij", 4)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, lines)
}
