package google

import (
	"context"
	"fmt"
	"podbrief/internal/core"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// DefaultCalendarID is the authenticated user's primary calendar.
const DefaultCalendarID = "primary"

// CalendarClient lists meetings from Google Calendar.
type CalendarClient struct {
	svc        *calendar.Service
	calendarID string
}

// NewCalendarClient creates a calendar adapter.
func NewCalendarClient(ctx context.Context, calendarID string, opts ...option.ClientOption) (*CalendarClient, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	return &CalendarClient{svc: svc, calendarID: calendarID}, nil
}

// ListEvents returns expanded single events starting in [start, end],
// ordered by start time. Cancelled events are dropped.
func (c *CalendarClient) ListEvents(ctx context.Context, start, end time.Time) ([]core.Meeting, error) {
	var meetings []core.Meeting

	call := c.svc.Events.List(c.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250)

	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			if item.Status == "cancelled" {
				continue
			}
			meeting, err := toMeeting(item)
			if err != nil {
				return err
			}
			meetings = append(meetings, meeting)
		}
		return nil
	})
	if err != nil {
		return nil, wrapAPIError("list calendar events", err)
	}

	return meetings, nil
}

func toMeeting(event *calendar.Event) (core.Meeting, error) {
	start, err := eventTime(event.Start)
	if err != nil {
		return core.Meeting{}, fmt.Errorf("event %s has invalid start: %w", event.Id, err)
	}
	end, err := eventTime(event.End)
	if err != nil {
		end = start
	}

	attendees := make([]string, 0, len(event.Attendees))
	for _, a := range event.Attendees {
		if a.Email != "" && !a.Resource {
			attendees = append(attendees, a.Email)
		}
	}

	return core.Meeting{
		ID:             event.Id,
		Title:          event.Summary,
		StartTime:      start,
		EndTime:        end,
		Description:    event.Description,
		AttendeeEmails: attendees,
	}, nil
}

// eventTime handles timed events and all-day dates.
func eventTime(dt *calendar.EventDateTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, fmt.Errorf("missing time")
	}
	if dt.DateTime != "" {
		return time.Parse(time.RFC3339, dt.DateTime)
	}
	if dt.Date != "" {
		loc := time.UTC
		if dt.TimeZone != "" {
			if l, err := time.LoadLocation(dt.TimeZone); err == nil {
				loc = l
			}
		}
		return time.ParseInLocation("2006-01-02", dt.Date, loc)
	}
	return time.Time{}, fmt.Errorf("missing time")
}
