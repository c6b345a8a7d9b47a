package app

import (
	"sort"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	dayHeaderLayout = "Monday, January 2"
)

// dayKey returns the calendar date part (YYYY-MM-DD) of a CMS date or
// datetime value
func dayKey(date string) string {
	if len(date) > len(dateLayout) {
		return date[:len(dateLayout)]
	}
	return date
}

// parseDay parses the calendar date of value at noon UTC so that the weekday
// does not depend on the server's time zone
func parseDay(value string) (time.Time, bool) {
	d, err := time.Parse(dateLayout, dayKey(value))
	if err != nil {
		return time.Time{}, false
	}
	return d.Add(12 * time.Hour), true
}

// FormatDayHeader renders a date as "Saturday, May 4". Values that are not
// dates are returned unchanged.
func FormatDayHeader(date string) string {
	d, ok := parseDay(date)
	if !ok {
		return date
	}
	return d.Format(dayHeaderLayout)
}

// IsWeekend reports whether the date falls on a Saturday or Sunday
func IsWeekend(date string) bool {
	d, ok := parseDay(date)
	if !ok {
		return false
	}
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// GroupByDay buckets workshops by calendar date. Sections are ordered by
// date ascending and keep the input order within a date.
func GroupByDay(workshops []Workshop) []DaySection {
	index := make(map[string]int)
	sections := []DaySection{}
	for _, w := range workshops {
		key := dayKey(w.Date)
		i, ok := index[key]
		if !ok {
			i = len(sections)
			index[key] = i
			sections = append(sections, DaySection{
				Date:    key,
				Header:  FormatDayHeader(key),
				Weekend: IsWeekend(key),
			})
		}
		sections[i].Workshops = append(sections[i].Workshops, w)
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Date < sections[j].Date
	})
	return sections
}
