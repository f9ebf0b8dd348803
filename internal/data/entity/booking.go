package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format of a booking date.
const DateLayout = "2006-01-02"

type Booking struct {
	BaseSimple
	UserID    uuid.UUID `db:"user_id"`
	CompanyID uuid.UUID `db:"company_id"`
	Date      time.Time `db:"date"` // calendar date, midnight UTC
}

// BookingDetail is a booking joined with its owner and company.
type BookingDetail struct {
	Booking
	UserName  string
	UserEmail string
	Company   *Company
}

// BookingWindow is the inclusive range of dates open for booking.
type BookingWindow struct {
	Start time.Time
	End   time.Time
}

func NewBookingWindow(start, end string) (BookingWindow, error) {
	s, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return BookingWindow{}, fmt.Errorf("parse window start %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return BookingWindow{}, fmt.Errorf("parse window end %q: %w", end, err)
	}
	if e.Before(s) {
		return BookingWindow{}, fmt.Errorf("window end %s is before start %s", end, start)
	}
	return BookingWindow{Start: s, End: e}, nil
}

func (w BookingWindow) Contains(date time.Time) bool {
	d := DateOnly(date, time.UTC)
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w BookingWindow) String() string {
	return fmt.Sprintf("%s and %s", w.Start.Format(DateLayout), w.End.Format(DateLayout))
}

// DateOnly truncates t to its calendar date as seen in loc, returned as midnight UTC.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseBookingDate accepts YYYY-MM-DD or an RFC3339 timestamp. Timestamps are
// reduced to their calendar date in loc.
func ParseBookingDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if d, err := time.Parse(DateLayout, value); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return DateOnly(t, loc), nil
}
