// Package parser implements the lesson cell grammar. A data cell holds zero,
// one, or two stacked lesson lines; each line is three whitespace-delimited
// tokens, SUBJECT TEACHER ROOM. The functions are pure so the grammar can be
// unit-tested without PDF fixtures.
package parser

import (
	"fmt"
	"strings"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
)

// tokensPerLine is fixed by the grammar: subject, teacher, room.
const tokensPerLine = 3

// ParseCell parses one data cell's raw text into lesson entries.
//
// An empty cell is a free period and yields an empty list. One line yields a
// single WholeClass entry. Two lines yield a GroupA/GroupB pair in line
// order, unless both lines carry the same subject, teacher, and room, in
// which case the groups are merged back into one WholeClass entry. More than
// two lines is an ambiguous group count and fails rather than truncating.
func ParseCell(weekday string, hour int, raw string) ([]timetable.LessonEntry, error) {
	lines := splitLines(raw)

	switch len(lines) {
	case 0:
		return []timetable.LessonEntry{}, nil
	case 1:
		entry, err := parseLine(weekday, hour, lines[0])
		if err != nil {
			return nil, err
		}
		entry.Specialization = timetable.WholeClass
		return []timetable.LessonEntry{entry}, nil
	case 2:
		first, err := parseLine(weekday, hour, lines[0])
		if err != nil {
			return nil, err
		}
		second, err := parseLine(weekday, hour, lines[1])
		if err != nil {
			return nil, err
		}
		if first.Subject == second.Subject && first.Teacher == second.Teacher && first.Room == second.Room {
			// Both groups attend the same lesson in the same room; that is a
			// whole-class session written twice.
			first.Specialization = timetable.WholeClass
			return []timetable.LessonEntry{first}, nil
		}
		first.Specialization = timetable.GroupA
		second.Specialization = timetable.GroupB
		return []timetable.LessonEntry{first, second}, nil
	default:
		return nil, timetable.CellParseError{
			Weekday: weekday,
			Hour:    hour,
			Raw:     raw,
			Reason:  fmt.Sprintf("%d stacked lines, at most 2 parallel groups supported", len(lines)),
		}
	}
}

// splitLines breaks cell text into non-empty lines, normalizing whitespace.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "\r", ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// parseLine applies the three-token rule to one lesson line.
func parseLine(weekday string, hour int, line string) (timetable.LessonEntry, error) {
	fields := strings.Fields(line)
	if len(fields) != tokensPerLine {
		return timetable.LessonEntry{}, timetable.CellParseError{
			Weekday: weekday,
			Hour:    hour,
			Raw:     line,
			Reason:  fmt.Sprintf("want %d tokens (subject teacher room), got %d", tokensPerLine, len(fields)),
		}
	}
	return timetable.LessonEntry{
		Subject: fields[0],
		Teacher: fields[1],
		Room:    fields[2],
	}, nil
}
