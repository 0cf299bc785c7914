// Package document renders portal records into downloadable PDF artifacts.
package document

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	meetingdomain "github.com/TEAMHMC/hmc-volunteer-portal-sub003/internal/meeting/domain"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"
)

// wrapWidth approximates how many characters of body text fit one line.
const wrapWidth = 95

var ErrEmptyMinutes = errors.New("minutes_content_empty")

type Attendee struct {
	Name   string
	Status string
}

type MinutesDocument struct {
	OrganizationName string
	MeetingTitle     string
	MeetingDate      string
	MeetingTime      string
	MeetingType      string
	Status           string
	ApprovedBy       string
	ApprovedAt       string
	RevisionNote     string
	Agenda           []string
	Attendees        []Attendee
	Content          string
	Footer           string
}

type Renderer interface {
	RenderMinutes(ctx context.Context, doc MinutesDocument) (io.Reader, error)
}

type PDFRenderer struct {
	log *zap.Logger
}

func New(log *zap.Logger) Renderer {
	return &PDFRenderer{log: log.Named("document.renderer")}
}

// MinutesFromMeeting builds the document for a meeting that has minutes.
func MinutesFromMeeting(orgName string, meeting meetingdomain.Meeting) (MinutesDocument, error) {
	if meeting.Minutes == nil || strings.TrimSpace(meeting.Minutes.Content) == "" {
		return MinutesDocument{}, meetingdomain.ErrMinutesMissing
	}
	minutes := meeting.Minutes
	doc := MinutesDocument{
		OrganizationName: orgName,
		MeetingTitle:     meeting.Title,
		MeetingDate:      meeting.Date.Format(time.DateOnly),
		MeetingTime:      meeting.Time,
		MeetingType:      string(meeting.Type),
		Status:           string(minutes.Status),
		Agenda:           append([]string(nil), meeting.Agenda...),
		Content:          minutes.Content,
	}
	if minutes.ApprovedBy != nil {
		doc.ApprovedBy = *minutes.ApprovedBy
	}
	if minutes.ApprovedAt != nil {
		doc.ApprovedAt = minutes.ApprovedAt.UTC().Format(time.RFC3339)
	}
	if minutes.RevisionNote != nil {
		doc.RevisionNote = *minutes.RevisionNote
	}
	for _, rsvp := range meeting.RSVPs {
		doc.Attendees = append(doc.Attendees, Attendee{Name: rsvp.PersonName, Status: string(rsvp.Status)})
	}
	return doc, nil
}

func (r *PDFRenderer) RenderMinutes(ctx context.Context, doc MinutesDocument) (io.Reader, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, ErrEmptyMinutes
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	if doc.OrganizationName != "" {
		m.AddRow(8,
			text.NewCol(12, doc.OrganizationName, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}),
		)
	}
	m.AddRow(12,
		text.NewCol(12, "Meeting Minutes: "+doc.MeetingTitle, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	when := doc.MeetingDate
	if doc.MeetingTime != "" {
		when += " " + doc.MeetingTime
	}
	m.AddRow(16,
		col.New(6).Add(
			text.New("Date: "+when, props.Text{Top: 0, Size: 9}),
			text.New("Type: "+doc.MeetingType, props.Text{Top: 5, Size: 9}),
		),
		col.New(6).Add(
			text.New("Status: "+doc.Status, props.Text{Top: 0, Size: 9, Align: align.Right}),
			text.New(approvalLine(doc), props.Text{Top: 5, Size: 9, Align: align.Right}),
		),
	)

	if len(doc.Agenda) > 0 {
		m.AddRow(8, text.NewCol(12, "Agenda", props.Text{Style: fontstyle.Bold, Size: 11, Top: 2}))
		for i, item := range doc.Agenda {
			m.AddRow(5, text.NewCol(12, strconv.Itoa(i+1)+". "+item, props.Text{Size: 9, Left: 3}))
		}
	}

	if len(doc.Attendees) > 0 {
		m.AddRow(8, text.NewCol(12, "Attendance", props.Text{Style: fontstyle.Bold, Size: 11, Top: 2}))
		for _, a := range doc.Attendees {
			m.AddRow(5,
				text.NewCol(8, a.Name, props.Text{Size: 9, Left: 3}),
				text.NewCol(4, a.Status, props.Text{Size: 9, Align: align.Right}),
			)
		}
	}

	m.AddRow(8, text.NewCol(12, "Minutes", props.Text{Style: fontstyle.Bold, Size: 11, Top: 2}))
	for _, line := range wrap(doc.Content, wrapWidth) {
		m.AddRow(5, text.NewCol(12, line, props.Text{Size: 9}))
	}

	if doc.RevisionNote != "" {
		m.AddRow(8, text.NewCol(12, "Revision note", props.Text{Style: fontstyle.Italic, Size: 9, Top: 3}))
		for _, line := range wrap(doc.RevisionNote, wrapWidth) {
			m.AddRow(5, text.NewCol(12, line, props.Text{Size: 9, Style: fontstyle.Italic}))
		}
	}

	if doc.Footer != "" {
		m.AddRow(10, text.NewCol(12, doc.Footer, props.Text{Size: 8, Top: 4, Style: fontstyle.Italic, Align: align.Center}))
	}

	out, err := m.Generate()
	if err != nil {
		r.log.Error("render minutes", zap.String("title", doc.MeetingTitle), zap.Error(err))
		return nil, err
	}
	return bytes.NewReader(out.GetBytes()), nil
}

func approvalLine(doc MinutesDocument) string {
	if doc.ApprovedBy == "" {
		return "Not approved"
	}
	line := "Approved by " + doc.ApprovedBy
	if doc.ApprovedAt != "" {
		line += " at " + doc.ApprovedAt
	}
	return line
}

// wrap splits text into lines of at most width runes, breaking on spaces.
// Blank input lines are kept as paragraph breaks.
func wrap(value string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			for len([]rune(word)) > width {
				if current != "" {
					lines = append(lines, current)
					current = ""
				}
				runes := []rune(word)
				lines = append(lines, string(runes[:width]))
				word = string(runes[width:])
			}
			if word == "" {
				continue
			}
			switch {
			case current == "":
				current = word
			case len([]rune(current))+1+len([]rune(word)) > width:
				lines = append(lines, current)
				current = word
			default:
				current += " " + word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}
