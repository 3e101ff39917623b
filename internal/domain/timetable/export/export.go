// Package export renders extraction results into download formats: iCalendar,
// Excel workbooks and flat CSV.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
)

// Schedule describes the school's bell times. Hour labels that carried their
// own clock range keep it; the rest fall back to the schedule: lesson n starts
// FirstLesson + (n-1) * (LessonMinutes + BreakMinutes) after the first bell.
type Schedule struct {
	Timezone      string
	FirstLesson   string // "15:04" clock time of the first period
	LessonMinutes int
	BreakMinutes  int
}

// DefaultSchedule returns the bell times used when none are configured.
func DefaultSchedule() Schedule {
	return Schedule{
		Timezone:      "Europe/Berlin",
		FirstLesson:   "08:00",
		LessonMinutes: 45,
		BreakMinutes:  5,
	}
}

// Exporter renders extraction results. One instance serves all requests.
type Exporter struct {
	schedule Schedule
	loc      *time.Location
	first    time.Time
}

// NewExporter validates the schedule and creates an exporter.
func NewExporter(schedule Schedule) (*Exporter, error) {
	loc, err := time.LoadLocation(schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", schedule.Timezone, err)
	}
	first, err := time.Parse("15:04", schedule.FirstLesson)
	if err != nil {
		return nil, fmt.Errorf("failed to parse first lesson time %q: %w", schedule.FirstLesson, err)
	}
	return &Exporter{schedule: schedule, loc: loc, first: first}, nil
}

// Location returns the schedule's timezone.
func (e *Exporter) Location() *time.Location { return e.loc }

// slotClock returns the "HH:MM" start and end for one hour slot, preferring
// the clock range captured from the header label.
func (e *Exporter) slotClock(hour timetable.HourSlot) (start, end string) {
	if hour.Start != "" && hour.End != "" {
		return hour.Start, hour.End
	}
	offset := time.Duration(hour.Number-1) * time.Duration(e.schedule.LessonMinutes+e.schedule.BreakMinutes) * time.Minute
	begin := e.first.Add(offset)
	return begin.Format("15:04"), begin.Add(time.Duration(e.schedule.LessonMinutes) * time.Minute).Format("15:04")
}

// slotTimes anchors a slot's clock range on a concrete date.
func (e *Exporter) slotTimes(date time.Time, hour timetable.HourSlot) (time.Time, time.Time, error) {
	startClock, endClock := e.slotClock(hour)
	start, err := clockOn(date, startClock, e.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := clockOn(date, endClock, e.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func clockOn(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse clock time %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// NextWeekStart returns the first day of the next school week: the upcoming
// Monday at midnight, strictly after now.
func NextWeekStart(now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	next := now.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, loc)
}

// lessonLine renders one entry as it appeared in the source cell.
func lessonLine(e timetable.LessonEntry) string {
	return fmt.Sprintf("%s %s %s", e.Subject, e.Teacher, e.Room)
}

// groupLabel returns the short group tag for an entry, empty for whole-class.
func groupLabel(s timetable.Specialization) string {
	switch s {
	case timetable.GroupA:
		return "A"
	case timetable.GroupB:
		return "B"
	default:
		return ""
	}
}

// cellText renders all entries of one slot for tabular formats, stacked
// top-down with group prefixes.
func cellText(entries []timetable.LessonEntry) string {
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := lessonLine(e)
		if label := groupLabel(e.Specialization); label != "" {
			line = label + ": " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// hourLabel renders the row header for one slot.
func hourLabel(hour timetable.HourSlot) string {
	label := fmt.Sprintf("%d.", hour.Number)
	if hour.Start != "" && hour.End != "" {
		label += fmt.Sprintf(" %s-%s", hour.Start, hour.End)
	}
	return label
}
