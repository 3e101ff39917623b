package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
)

func testResult(t *testing.T) *timetable.ExtractResult {
	t.Helper()
	days := []string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"}
	hours := []timetable.HourSlot{
		{Number: 1, Start: "07:45", End: "08:30"},
		{Number: 2},
	}
	tt := timetable.NewTimetable(days, hours)
	require.NoError(t, tt.Set("Montag", hours[0], []timetable.LessonEntry{
		{Subject: "MATH", Teacher: "MM", Room: "E201", Specialization: timetable.WholeClass},
	}))
	require.NoError(t, tt.Set("Montag", hours[1], []timetable.LessonEntry{
		{Subject: "DEU", Teacher: "SB", Room: "A113", Specialization: timetable.GroupA},
		{Subject: "ENG", Teacher: "KW", Room: "B204", Specialization: timetable.GroupB},
	}))
	return &timetable.ExtractResult{ClassName: "10A", Timetable: tt}
}

func testExporter(t *testing.T) *Exporter {
	t.Helper()
	e, err := NewExporter(DefaultSchedule())
	require.NoError(t, err)
	return e
}

func TestNewExporter_Validation(t *testing.T) {
	_, err := NewExporter(Schedule{Timezone: "Mars/Olympus", FirstLesson: "08:00"})
	assert.Error(t, err)

	_, err = NewExporter(Schedule{Timezone: "Europe/Berlin", FirstLesson: "8 o'clock"})
	assert.Error(t, err)
}

func TestSlotClock(t *testing.T) {
	e := testExporter(t)

	t.Run("captured range wins", func(t *testing.T) {
		start, end := e.slotClock(timetable.HourSlot{Number: 2, Start: "08:35", End: "09:20"})
		assert.Equal(t, "08:35", start)
		assert.Equal(t, "09:20", end)
	})

	t.Run("falls back to bell schedule", func(t *testing.T) {
		start, end := e.slotClock(timetable.HourSlot{Number: 1})
		assert.Equal(t, "08:00", start)
		assert.Equal(t, "08:45", end)

		start, end = e.slotClock(timetable.HourSlot{Number: 3})
		assert.Equal(t, "09:40", start)
		assert.Equal(t, "10:25", end)
	})
}

func TestNextWeekStart(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midweek",
			now:  time.Date(2026, 8, 26, 15, 0, 0, 0, loc),
			want: time.Date(2026, 8, 31, 0, 0, 0, 0, loc),
		},
		{
			name: "monday rolls to next week",
			now:  time.Date(2026, 8, 31, 10, 0, 0, 0, loc),
			want: time.Date(2026, 9, 7, 0, 0, 0, 0, loc),
		},
		{
			name: "sunday",
			now:  time.Date(2026, 8, 30, 23, 0, 0, 0, loc),
			want: time.Date(2026, 8, 31, 0, 0, 0, 0, loc),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, NextWeekStart(tc.now, loc).Equal(tc.want))
		})
	}
}

func TestWriteICS(t *testing.T) {
	e := testExporter(t)
	weekStart := time.Date(2026, 8, 31, 0, 0, 0, 0, e.Location())

	var buf bytes.Buffer
	require.NoError(t, e.WriteICS(testResult(t), weekStart, &buf))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "END:VCALENDAR")
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"), "one event per lesson, none for free periods")

	assert.Contains(t, out, "SUMMARY:MATH")
	assert.Contains(t, out, "LOCATION:E201")
	assert.Contains(t, out, "SUMMARY:DEU (Gruppe A)")
	assert.Contains(t, out, "SUMMARY:ENG (Gruppe B)")
	assert.Contains(t, out, "Klasse: 10A")
}

func TestWriteXLSX(t *testing.T) {
	e := testExporter(t)

	var buf bytes.Buffer
	require.NoError(t, e.WriteXLSX(testResult(t), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue(sheetName, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "10A", cell("A1"))
	assert.Equal(t, "Montag", cell("B1"))
	assert.Equal(t, "Freitag", cell("F1"))
	assert.Equal(t, "1. 07:45-08:30", cell("A2"))
	assert.Equal(t, "2.", cell("A3"))
	assert.Equal(t, "MATH MM E201", cell("B2"))
	assert.Equal(t, "A: DEU SB A113\nB: ENG KW B204", cell("B3"))
	assert.Equal(t, "", cell("C2"))
}

func TestWriteCSV(t *testing.T) {
	e := testExporter(t)

	var buf bytes.Buffer
	require.NoError(t, e.WriteCSV(testResult(t), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "class,weekday,hour,subject,teacher,room,group", lines[0])
	assert.Equal(t, "10A,Montag,1,MATH,MM,E201,", lines[1])
	assert.Equal(t, "10A,Montag,2,DEU,SB,A113,A", lines[2])
	assert.Equal(t, "10A,Montag,2,ENG,KW,B204,B", lines[3])
}
