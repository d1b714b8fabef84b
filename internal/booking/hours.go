package booking

import "time"

// Layouts accepted for reservation_date and reservation_time.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Opening hours in seconds since midnight.  Slots from openAt through
// lastSeating are bookable; later slots fall in the closing buffer.
const (
	openAt      = 10*3600 + 30*60
	lastSeating = 21*3600 + 30*60
	closeAt     = 22 * 3600
)

const closedDay = time.Tuesday

// Rule identifiers reported in Violation.Rule.
const (
	RuleRequired    = "required"
	RuleFormat      = "format"
	RuleMin         = "min"
	RuleFuture      = "future"
	RuleClosedDay   = "closed_day"
	RuleBeforeOpen  = "before_open"
	RuleCloseBuffer = "close_buffer"
	RuleAfterClose  = "after_close"
	RuleStatus      = "status"
)

// Policy evaluates a requested date and time against the restaurant's
// fixed hours.  Now defaults to time.Now and Location to UTC.
type Policy struct {
	Now      func() time.Time
	Location *time.Location
}

// DefaultPolicy uses the wall clock in loc.
func DefaultPolicy(loc *time.Location) Policy {
	return Policy{Now: time.Now, Location: loc}
}

func (p Policy) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p Policy) loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// CheckSlot runs every time rule and returns all violations.  A date or
// time that does not parse produces a format violation and skips the
// rules that depend on it.
func (p Policy) CheckSlot(date, clock string) Violations {
	var v Violations

	day, dateErr := time.ParseInLocation(DateLayout, date, time.UTC)
	if dateErr != nil {
		v.add("reservation_date", RuleFormat, "reservation_date must be a date in YYYY-MM-DD format")
	}
	secs, clockOK := ParseClock(clock)
	if !clockOK {
		v.add("reservation_time", RuleFormat, "reservation_time must be a time in HH:MM format")
	}

	if dateErr == nil && clockOK {
		loc := p.loc()
		at := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, secs, 0, loc)
		if !at.After(p.now().In(loc)) {
			v.add("reservation_date", RuleFuture, "reservation must be set in the future")
		}
	}
	if dateErr == nil && day.Weekday() == closedDay {
		v.add("reservation_date", RuleClosedDay, "restaurant is closed on Tuesdays")
	}
	if clockOK {
		switch {
		case secs < openAt:
			v.add("reservation_time", RuleBeforeOpen, "restaurant opens after 10:30am")
		case secs > lastSeating && secs < closeAt:
			v.add("reservation_time", RuleCloseBuffer, "reservation must be made at least 1 hour before closing time (10:30pm)")
		case secs >= closeAt:
			v.add("reservation_time", RuleAfterClose, "restaurant closes at 10:30pm")
		}
	}
	return v
}

// ParseClock parses HH:MM or HH:MM:SS and returns seconds since midnight.
func ParseClock(s string) (int, bool) {
	for _, layout := range []string{ClockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*3600 + t.Minute()*60 + t.Second(), true
		}
	}
	return 0, false
}

// NormalizeClock renders a parsed time of day as HH:MM.  Seconds are
// dropped.
func NormalizeClock(s string) string {
	secs, ok := ParseClock(s)
	if !ok {
		return s
	}
	return time.Date(0, 1, 1, 0, 0, secs, 0, time.UTC).Format(ClockLayout)
}
