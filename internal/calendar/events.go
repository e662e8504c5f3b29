package calendar

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ramsbaby/lessonledger/internal/model"
	"github.com/ramsbaby/lessonledger/internal/normalize"
)

// eventsResponse from GET /calendars/{id}/events
type eventsResponse struct {
	Items []apiEvent `json:"items"`
}

// apiEvent is one calendar event as the API returns it.
type apiEvent struct {
	Summary string       `json:"summary"`
	Status  string       `json:"status"`
	Start   apiEventTime `json:"start"`
}

// apiEventTime carries either a timed start or an all-day date.
type apiEventTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

// TodayLessons returns the lesson events between day's start and the next
// day's start in tz, in calendar (start time) order. Only summaries ending
// in the lesson suffix qualify; their names come back canonicalized.
func (c *Client) TodayLessons(ctx context.Context, day time.Time, tz *time.Location, suffix string) ([]model.LessonEvent, error) {
	dayStart := time.Date(day.In(tz).Year(), day.In(tz).Month(), day.In(tz).Day(), 0, 0, 0, 0, tz)
	nextStart := dayStart.AddDate(0, 0, 1)

	query := url.Values{}
	query.Set("timeMin", dayStart.Format(time.RFC3339))
	query.Set("timeMax", nextStart.Format(time.RFC3339))
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")

	var resp eventsResponse
	if err := c.get(ctx, query, &resp); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var out []model.LessonEvent
	for _, item := range resp.Items {
		if item.Status == "cancelled" {
			continue
		}
		if !strings.HasSuffix(item.Summary, suffix) {
			continue
		}

		startAt, err := item.Start.resolve(tz)
		if err != nil {
			c.logger.Warn("skipping event with unparseable start",
				"summary", item.Summary,
				"err", err,
			)
			continue
		}

		base := strings.TrimSuffix(item.Summary, suffix)
		out = append(out, model.LessonEvent{
			Student: normalize.CanonicalName(base),
			StartAt: startAt,
		})
	}

	c.logger.Debug("loaded calendar lessons",
		"total_items", len(resp.Items),
		"lessons", len(out),
	)
	return out, nil
}

// resolve parses a timed start, falling back to the all-day date at midnight
// in tz.
func (t apiEventTime) resolve(tz *time.Location) (time.Time, error) {
	if t.DateTime != "" {
		at, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse dateTime: %w", err)
		}
		return at.In(tz), nil
	}
	if t.Date != "" {
		at, err := time.ParseInLocation("2006-01-02", t.Date, tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date: %w", err)
		}
		return at, nil
	}
	return time.Time{}, fmt.Errorf("event has no start time")
}
