// Package timetable defines the domain model for extracted school timetables:
// the detected cell grid, lesson entries with their group specialization, and
// the assembled weekday/hour mapping returned to callers.
package timetable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Specialization tags how a lesson entry relates to class grouping.
// The wire format serializes it as a plain integer.
type Specialization int

const (
	// WholeClass marks a lesson the whole class (or already-merged groups)
	// attends together.
	WholeClass Specialization = 1
	// GroupA marks the first half of a split session.
	GroupA Specialization = 2
	// GroupB marks the second half of a split session.
	GroupB Specialization = 3
)

// String returns a human-readable name for the specialization.
func (s Specialization) String() string {
	switch s {
	case WholeClass:
		return "whole-class"
	case GroupA:
		return "group-a"
	case GroupB:
		return "group-b"
	default:
		return fmt.Sprintf("specialization(%d)", int(s))
	}
}

// Valid reports whether s is one of the three known variants.
func (s Specialization) Valid() bool {
	return s == WholeClass || s == GroupA || s == GroupB
}

// LessonEntry is the atomic output unit: one lesson in one slot.
type LessonEntry struct {
	Subject        string         `json:"subject"`
	Teacher        string         `json:"teacher"`
	Room           string         `json:"room"`
	Specialization Specialization `json:"specialization"`
}

// HourSlot identifies one teaching period. Number is the identity and
// ordering key; Start/End carry an optional clock range captured from the
// header label (kept for calendar export, ignored for identity).
type HourSlot struct {
	Number int
	Start  string
	End    string
}

// Key returns the JSON object key for the slot.
func (h HourSlot) Key() string {
	return strconv.Itoa(h.Number)
}

// Grid is the rectangular matrix of raw cell text produced by table
// detection. Rows and columns are ordered as they appear on the page; cell
// text may be empty and may contain "\n" between stacked sub-entries.
type Grid struct {
	cells [][]string
}

// NewGrid validates and wraps detected cell text. It fails on an empty
// matrix or ragged rows; rectangularity is checked once here so later
// stages can index freely.
func NewGrid(cells [][]string) (*Grid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, fmt.Errorf("grid has no cells")
	}
	width := len(cells[0])
	for i, row := range cells {
		if len(row) != width {
			return nil, fmt.Errorf("grid row %d has %d cells, want %d", i, len(row), width)
		}
	}
	return &Grid{cells: cells}, nil
}

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return len(g.cells) }

// Cols returns the number of grid columns.
func (g *Grid) Cols() int { return len(g.cells[0]) }

// Cell returns the raw text at (row, col).
func (g *Grid) Cell(row, col int) string { return g.cells[row][col] }

// Row returns one grid row in column order.
func (g *Grid) Row(row int) []string { return g.cells[row] }

// Column returns one grid column in row order.
func (g *Grid) Column(col int) []string {
	out := make([]string, len(g.cells))
	for i, row := range g.cells {
		out[i] = row[col]
	}
	return out
}

// Timetable maps weekday -> hour -> lessons. Key order is canonical (the
// configured weekday order, hours ascending) and survives serialization, so
// output is deterministic regardless of the PDF's physical column order.
// Every (weekday, hour) slot is present; a free period holds an empty list.
type Timetable struct {
	days  []string
	hours []HourSlot
	slots map[string]map[string][]LessonEntry
}

// NewTimetable builds an empty timetable covering days x hours, every slot
// initialized to an empty entry list.
func NewTimetable(days []string, hours []HourSlot) *Timetable {
	slots := make(map[string]map[string][]LessonEntry, len(days))
	for _, d := range days {
		byHour := make(map[string][]LessonEntry, len(hours))
		for _, h := range hours {
			byHour[h.Key()] = []LessonEntry{}
		}
		slots[d] = byHour
	}
	return &Timetable{days: days, hours: hours, slots: slots}
}

// Days returns the weekday labels in canonical order.
func (t *Timetable) Days() []string { return t.days }

// Hours returns the hour slots in ascending order.
func (t *Timetable) Hours() []HourSlot { return t.hours }

// Set stores the entries for one slot.
func (t *Timetable) Set(day string, hour HourSlot, entries []LessonEntry) error {
	byHour, ok := t.slots[day]
	if !ok {
		return fmt.Errorf("unknown weekday %q", day)
	}
	if _, ok := byHour[hour.Key()]; !ok {
		return fmt.Errorf("unknown hour %d for weekday %q", hour.Number, day)
	}
	if entries == nil {
		entries = []LessonEntry{}
	}
	byHour[hour.Key()] = entries
	return nil
}

// Entries returns the lessons for one slot (empty list for a free period,
// nil for an unknown slot).
func (t *Timetable) Entries(day string, hour int) []LessonEntry {
	byHour, ok := t.slots[day]
	if !ok {
		return nil
	}
	return byHour[strconv.Itoa(hour)]
}

// MarshalJSON writes the mapping with weekday keys in canonical order and
// hour keys in ascending numeric order. encoding/json would sort map keys
// lexically ("10" before "2"), so the object is assembled by hand.
func (t *Timetable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range t.days {
		if i > 0 {
			buf.WriteByte(',')
		}
		dayKey, err := json.Marshal(day)
		if err != nil {
			return nil, err
		}
		buf.Write(dayKey)
		buf.WriteString(":{")
		for j, hour := range t.hours {
			if j > 0 {
				buf.WriteByte(',')
			}
			entries, err := json.Marshal(t.slots[day][hour.Key()])
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&buf, "%q:", hour.Key())
			buf.Write(entries)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ExtractResult is what one successful extraction hands the request layer.
type ExtractResult struct {
	ClassName string     `json:"class"`
	Timetable *Timetable `json:"timetable"`
}
