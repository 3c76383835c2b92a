package service

import (
	"time"

	"github.com/ncobase/todox/biz/todo/structs"
)

// NextDueDate maps a due date and recurrence interval to the successor
// due date. Month and year steps use calendar-add semantics: the
// day-of-month is preserved and clamped to the last day of a shorter
// target month (Jan 31 + 1 month = Feb 28/29, Feb 29 + 1 year = Feb 28).
// Callers never invoke it with RecurrenceNone.
func NextDueDate(current time.Time, interval structs.Recurrence) time.Time {
	switch interval {
	case structs.RecurrenceDaily:
		return current.AddDate(0, 0, 1)
	case structs.RecurrenceWeekly:
		return current.AddDate(0, 0, 7)
	case structs.RecurrenceBiweekly:
		return current.AddDate(0, 0, 14)
	case structs.RecurrenceMonthly:
		return addMonths(current, 1)
	case structs.RecurrenceYearly:
		return addMonths(current, 12)
	}
	return current
}

// addMonths steps forward whole months without the day-overflow
// normalization of time.AddDate (which would turn Jan 31 + 1 month into
// Mar 2/3 instead of the end of February).
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := lastDayOfMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	hour, min, sec := t.Clock()
	return time.Date(target.Year(), target.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
