// Package timeutil resolves summary periods into half-open UTC windows.
package timeutil

import (
	"errors"
	"fmt"
	"time"
)

const (
	PeriodToday     = "today"
	PeriodThisWeek  = "this_week"
	PeriodThisMonth = "this_month"
	PeriodCustom    = "custom"

	DateLayout = "2006-01-02"
)

var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrMissingDates  = errors.New("start_date and end_date required for custom period")
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
)

// Window is the half-open interval [From, To).
type Window struct {
	Period string
	From   time.Time
	To     time.Time
}

func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.From) && t.Before(w.To)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekdayIndex counts days since Monday.
func WeekdayIndex(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}

// ResolvePeriod turns a period label into a window relative to now. An
// empty label means today. custom needs both dates and treats endDate as
// inclusive of the whole day.
func ResolvePeriod(period, startDate, endDate string, now time.Time) (Window, error) {
	if period == "" {
		period = PeriodToday
	}

	today := StartOfDay(now)
	w := Window{Period: period}

	switch period {
	case PeriodToday:
		w.From = today
		w.To = today.AddDate(0, 0, 1)
	case PeriodThisWeek:
		w.From = today.AddDate(0, 0, -WeekdayIndex(today))
		w.To = w.From.AddDate(0, 0, 7)
	case PeriodThisMonth:
		w.From = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		// time.Date normalises month 13 into January of the next year.
		w.To = time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	case PeriodCustom:
		if startDate == "" || endDate == "" {
			return Window{}, ErrMissingDates
		}
		from, err := parseDate(startDate)
		if err != nil {
			return Window{}, err
		}
		to, err := parseDate(endDate)
		if err != nil {
			return Window{}, err
		}
		w.From = from
		w.To = to.AddDate(0, 0, 1)
	default:
		return Window{}, fmt.Errorf("%w %q, expected one of today, this_week, this_month, custom", ErrInvalidPeriod, period)
	}

	return w, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}
