package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// writeString writes to w and logs any error
func writeString(w io.Writer, s string) {
	if _, err := io.WriteString(w, s); err != nil {
		log.Printf("Error writing to response: %v", err)
	}
}

func exportFilename(ref QuarterRef, ext string) string {
	return fmt.Sprintf("workshops_%s_%d.%s", ref.Quarter, ref.Year, ext)
}

// workshopUID is stable across exports so calendar apps update in place
func workshopUID(w Workshop) string {
	return fmt.Sprintf("%s@%s", w.ID, ICSUIDDomain)
}

func newCalendar(name string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(ICSProductID)
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(ICSTimezone)
	return cal
}

// addWorkshopEvent adds w as an all-day event. It returns nil when the
// workshop date cannot be parsed.
func addWorkshopEvent(cal *ics.Calendar, w Workshop, stamp time.Time) *ics.VEvent {
	day, err := time.Parse(dateLayout, dayKey(w.Date))
	if err != nil {
		return nil
	}

	event := cal.AddEvent(workshopUID(w))
	event.SetDtStampTime(stamp)
	event.SetAllDayStartAt(day)
	event.SetAllDayEndAt(day.AddDate(0, 0, 1))
	event.SetSummary(w.Title)

	description := w.Description
	if w.Time != "" {
		description = strings.TrimSpace(w.Time + "\n\n" + description)
	}
	if description != "" {
		event.SetDescription(description)
	}
	if w.Location != "" {
		event.SetLocation(w.Location)
	}
	if w.Link != "" {
		event.SetURL(w.Link)
	}
	return event
}

// GenerateICS generates an iCalendar download with an optional reminder
// (remind=<days before>&remindAt=HH:MM)
func GenerateICS(w http.ResponseWriter, r *http.Request, ref QuarterRef, workshops []Workshop) {
	var (
		trigger    string
		hasTrigger bool
	)
	if remind := r.URL.Query().Get("remind"); remind != "" {
		if days, err := strconv.Atoi(remind); err == nil && days >= 0 {
			trigger, hasTrigger = AlarmTrigger(days, r.URL.Query().Get("remindAt"))
		}
	}

	cal := newCalendar(fmt.Sprintf("Workshops %s", ref.Label()))
	stamp := time.Now().UTC()
	for _, workshop := range workshops {
		event := addWorkshopEvent(cal, workshop, stamp)
		if event == nil || !hasTrigger {
			continue
		}
		alarm := event.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger(trigger)
		alarm.SetProperty(ics.ComponentPropertyDescription, "Reminder: "+workshop.Title)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(ref, "ics")))
	writeString(w, cal.Serialize())
}

// AlarmTrigger returns the ISO 8601 duration of an alarm at alarmTime (HH:MM)
// daysBefore days before an all-day event. The event starts at midnight, so
// earlier alarms get a negative duration.
func AlarmTrigger(daysBefore int, alarmTime string) (string, bool) {
	hourStr, minuteStr, found := strings.Cut(alarmTime, ":")
	if !found {
		return "", false
	}
	hour, err1 := strconv.Atoi(hourStr)
	minute, err2 := strconv.Atoi(minuteStr)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}

	totalMinutes := -daysBefore*24*60 + hour*60 + minute
	sign := ""
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}

	days := totalMinutes / (24 * 60)
	hours := (totalMinutes % (24 * 60)) / 60
	minutes := totalMinutes % 60
	return fmt.Sprintf("%sP%dDT%dH%dM", sign, days, hours, minutes), true
}

// GenerateCSV generates a CSV download of the workshops
func GenerateCSV(w http.ResponseWriter, ref QuarterRef, workshops []Workshop) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(ref, "csv")))

	cw := csv.NewWriter(w)
	rows := [][]string{{"date", "title", "time", "location", "quarter", "year"}}
	for _, workshop := range workshops {
		rows = append(rows, []string{
			dayKey(workshop.Date),
			workshop.Title,
			workshop.Time,
			workshop.Location,
			string(workshop.Quarter),
			strconv.Itoa(workshop.Year),
		})
	}
	if err := cw.WriteAll(rows); err != nil {
		log.Printf("Error writing CSV export: %v", err)
	}
}

// GenerateJSON generates a JSON download of the workshops grouped by day
func GenerateJSON(w http.ResponseWriter, ref QuarterRef, workshops []Workshop) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exportFilename(ref, "json")))

	data := map[string]interface{}{
		"quarter": ref.Quarter,
		"year":    ref.Year,
		"label":   ref.Label(),
		"days":    GroupByDay(workshops),
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON export: %v", err)
		http.Error(w, ErrFailedToGenerate, http.StatusInternalServerError)
	}
}

// GenerateSubscriptionICS generates an iCalendar subscription feed.
// Unlike GenerateICS it is served inline, publishes METHOD:PUBLISH with a
// refresh interval and carries no alarms.
func GenerateSubscriptionICS(w http.ResponseWriter, name string, workshops []Workshop) {
	cal := newCalendar(name)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXPublishedTTL("PT1H")

	stamp := time.Now().UTC()
	for _, workshop := range workshops {
		addWorkshopEvent(cal, workshop, stamp)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	writeString(w, cal.Serialize())
}
