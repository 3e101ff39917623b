package export

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
)

// WriteICS serializes one school week as an iCalendar feed. Events are placed
// on consecutive dates starting at weekStart, one day per weekday in
// timetable order; free periods produce no event.
func (e *Exporter) WriteICS(res *timetable.ExtractResult, weekStart time.Time, w io.Writer) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	now := time.Now()
	for di, day := range res.Timetable.Days() {
		date := weekStart.AddDate(0, 0, di)
		for _, hour := range res.Timetable.Hours() {
			for _, entry := range res.Timetable.Entries(day, hour.Number) {
				start, end, err := e.slotTimes(date, hour)
				if err != nil {
					return err
				}

				uid := fmt.Sprintf("%s-%s-%d-%s@stundenplan", res.ClassName, day, hour.Number, groupSuffix(entry.Specialization))
				event := cal.AddEvent(uid)
				event.SetCreatedTime(now)
				event.SetDtStampTime(now)
				event.SetModifiedAt(now)
				event.SetStartAt(start)
				event.SetEndAt(end)
				event.SetSummary(eventSummary(entry))
				event.SetLocation(entry.Room)
				event.SetDescription(eventDescription(res.ClassName, entry))
			}
		}
	}

	return cal.SerializeTo(w)
}

func groupSuffix(s timetable.Specialization) string {
	if label := groupLabel(s); label != "" {
		return label
	}
	return "all"
}

func eventSummary(entry timetable.LessonEntry) string {
	if label := groupLabel(entry.Specialization); label != "" {
		return fmt.Sprintf("%s (Gruppe %s)", entry.Subject, label)
	}
	return entry.Subject
}

func eventDescription(className string, entry timetable.LessonEntry) string {
	desc := fmt.Sprintf("Klasse: %s\nLehrer: %s", className, entry.Teacher)
	if label := groupLabel(entry.Specialization); label != "" {
		desc += fmt.Sprintf("\nGruppe: %s", label)
	}
	return desc
}
