package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Event is a single all-day or timed calendar entry.
type Event struct {
	Summary string
	// Date is the start date as YYYY-MM-DD.
	Date string
}

// EventsAPI lists the events of a public calendar.
type EventsAPI interface {
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error)
}

// GoogleEventsAPI implements EventsAPI with the Google Calendar API v3.
type GoogleEventsAPI struct {
	svc *gcal.Service
}

// NewGoogleEventsAPI creates an API-key authenticated calendar service.
func NewGoogleEventsAPI(ctx context.Context, apiKey string) (*GoogleEventsAPI, error) {
	svc, err := gcal.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleEventsAPI{svc: svc}, nil
}

// ListEvents implements EventsAPI, following result pages until exhausted.
func (g *GoogleEventsAPI) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error) {
	var (
		events    []Event
		pageToken string
	)
	for {
		call := g.svc.Events.List(calendarID).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(250).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("calendar events request failed: %w", err)
		}
		for _, item := range resp.Items {
			if item == nil || item.Start == nil {
				continue
			}
			date := item.Start.Date
			if date == "" && len(item.Start.DateTime) >= 10 {
				date = item.Start.DateTime[:10]
			}
			events = append(events, Event{Summary: item.Summary, Date: date})
		}

		if resp.NextPageToken == "" {
			return events, nil
		}
		pageToken = resp.NextPageToken
	}
}
