package worktime

import (
	"math"
	"time"
)

const (
	WorkdayStartHour = 9
	WorkdayEndHour   = 17
)

// Calendar decides which days and hours count as working time.
// All day-of-week and 09:00/17:00 boundaries are evaluated in loc.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// IsWorkingDay reports false for Sundays and for the second Saturday of the month.
func (c Calendar) IsWorkingDay(t time.Time) bool {
	t = t.In(c.Location())
	switch t.Weekday() {
	case time.Sunday:
		return false
	case time.Saturday:
		week := (t.Day() + 6) / 7
		return week != 2
	}
	return true
}

// WorkingMinutesBetween returns the minutes of [start, end) that fall inside
// the 09:00-17:00 window of working days, rounded to the nearest minute.
func (c Calendar) WorkingMinutesBetween(start, end time.Time) int {
	if !start.Before(end) {
		return 0
	}

	loc := c.Location()
	cur := start.In(loc)
	end = end.In(loc)

	var total time.Duration
	for cur.Before(end) {
		if c.IsWorkingDay(cur) {
			from := c.at(cur, WorkdayStartHour)
			if cur.After(from) {
				from = cur
			}
			to := c.at(cur, WorkdayEndHour)
			if end.Before(to) {
				to = end
			}
			if from.Before(to) {
				total += to.Sub(from)
			}
		}
		y, m, d := cur.Date()
		cur = time.Date(y, m, d+1, WorkdayStartHour, 0, 0, 0, loc)
	}

	return int(math.Round(total.Minutes()))
}

// MissedCutoff is 17:00 on the first working day after the assignment day.
func (c Calendar) MissedCutoff(assignedAt time.Time) time.Time {
	loc := c.Location()
	y, m, d := assignedAt.In(loc).Date()
	day := time.Date(y, m, d+1, 12, 0, 0, 0, loc)
	for !c.IsWorkingDay(day) {
		y, m, d = day.Date()
		day = time.Date(y, m, d+1, 12, 0, 0, 0, loc)
	}
	return c.at(day, WorkdayEndHour)
}

func (c Calendar) at(day time.Time, hour int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, c.Location())
}
