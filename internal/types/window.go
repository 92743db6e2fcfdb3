package types

import (
	"time"
)

// ExchangeLocation is the Moscow Exchange time zone.
var ExchangeLocation = loadExchangeLocation()

func loadExchangeLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}

	return loc
}

// SessionKind names one of the two intraday windows requested per day.
type SessionKind string

const (
	SessionDay  SessionKind = "day"
	SessionLate SessionKind = "late"
)

// TimeWindow is a from/till query range, formatted as ISS expects it.
type TimeWindow struct {
	Kind SessionKind
	From string
	Till string
}

// SessionWindows returns the day session (09:00:00-18:00:00) and late session
// (18:01:00-23:59:00) windows for the calendar day of date, in that order.
func SessionWindows(date time.Time) [2]TimeWindow {
	day := date.Format("2006-01-02")

	return [2]TimeWindow{
		{Kind: SessionDay, From: day + " 09:00:00", Till: day + " 18:00:00"},
		{Kind: SessionLate, From: day + " 18:01:00", Till: day + " 23:59:00"},
	}
}

// DateRange returns every calendar day from start to end inclusive.
// Only the date part of start and end is considered.
func DateRange(start, end time.Time) []time.Time {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	till := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, start.Location())

	var days []time.Time
	for d := from; !d.After(till); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	return days
}
