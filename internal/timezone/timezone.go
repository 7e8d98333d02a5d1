package timezone

import (
	"errors"
	"strings"
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "Asia/Ho_Chi_Minh"

const DayLayout = "2006-01-02"

var ErrInvalidDay = errors.New("invalid usage day")

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// CanonicalDay turns a calendar day ("2024-06-01") or a full timestamp
// ("2024-05-31T17:00:00Z") into the YYYY-MM-DD day it falls on in tz.
func CanonicalDay(raw string, tz string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidDay
	}

	loc := Location(tz)

	if d, err := time.ParseInLocation(DayLayout, raw, loc); err == nil {
		return d.Format(DayLayout), nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(loc).Format(DayLayout), nil
		}
	}

	return "", ErrInvalidDay
}
