package timetable

import (
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

// TestDataGenerator generates realistic timetable test data using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a new test data generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(0), // Random seed
	}
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
	}
}

// ============================================================================
// Lesson Generation
// ============================================================================

var subjectCodes = []string{
	"DEU", "MAT", "ENG", "FRZ", "LAT", "BIO", "CHE", "PHY",
	"GES", "ERD", "SPO", "KUN", "MUS", "INF", "REL", "ETH",
}

var teacherCodes = []string{
	"MM", "SB", "KW", "HR", "FS", "WB", "KL", "RT",
	"GZ", "PN", "EH", "DS", "AB", "CF", "JW", "LM",
}

var roomWings = []string{"A", "B", "C", "E"}

// Subject returns a random subject code.
func (g *TestDataGenerator) Subject() string {
	return subjectCodes[g.faker.Number(0, len(subjectCodes)-1)]
}

// TeacherCode returns a random teacher abbreviation.
func (g *TestDataGenerator) TeacherCode() string {
	return teacherCodes[g.faker.Number(0, len(teacherCodes)-1)]
}

// Room returns a random room label, wing letter plus number.
func (g *TestDataGenerator) Room() string {
	return roomWings[g.faker.Number(0, len(roomWings)-1)] + g.faker.DigitN(3)
}

// ClassName returns a plausible class label like "10A".
func (g *TestDataGenerator) ClassName() string {
	grade := g.faker.Number(5, 13)
	letter := string(rune('A' + g.faker.Number(0, 3)))
	return strconv.Itoa(grade) + letter
}

// Entry generates one lesson entry with the given specialization.
func (g *TestDataGenerator) Entry(spec Specialization) LessonEntry {
	return LessonEntry{
		Subject:        g.Subject(),
		Teacher:        g.TeacherCode(),
		Room:           g.Room(),
		Specialization: spec,
	}
}

// SlotEntries generates the contents of one slot: a free period, one
// whole-class lesson, or an A/B split pair.
func (g *TestDataGenerator) SlotEntries() []LessonEntry {
	switch g.faker.Number(0, 3) {
	case 0:
		return []LessonEntry{}
	case 1:
		return []LessonEntry{g.Entry(GroupA), g.Entry(GroupB)}
	default:
		return []LessonEntry{g.Entry(WholeClass)}
	}
}

// ============================================================================
// Grid and Week Generation
// ============================================================================

// HourSlots returns n consecutive hour slots starting at 1, without clock
// ranges.
func (g *TestDataGenerator) HourSlots(n int) []HourSlot {
	hours := make([]HourSlot, n)
	for i := range hours {
		hours[i] = HourSlot{Number: i + 1}
	}
	return hours
}

// Week generates a fully populated timetable over the given days and hours.
func (g *TestDataGenerator) Week(days []string, hours []HourSlot) *Timetable {
	tt := NewTimetable(days, hours)
	for _, d := range days {
		for _, h := range hours {
			_ = tt.Set(d, h, g.SlotEntries())
		}
	}
	return tt
}

// CellText renders entries back into raw "SUBJECT TEACHER ROOM" cell form,
// one line per entry.
func (g *TestDataGenerator) CellText(entries []LessonEntry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Subject + " " + e.Teacher + " " + e.Room
	}
	return strings.Join(lines, "\n")
}

// GridCells renders a timetable as the raw cell matrix table detection
// would produce: a header row with the class name and day labels, then one
// row per hour labeled "1.", "2.", ...
func (g *TestDataGenerator) GridCells(className string, tt *Timetable) [][]string {
	days := tt.Days()
	hours := tt.Hours()

	cells := make([][]string, 0, len(hours)+1)
	header := append([]string{className}, days...)
	cells = append(cells, header)

	for _, h := range hours {
		row := make([]string, 0, len(days)+1)
		row = append(row, strconv.Itoa(h.Number)+".")
		for _, d := range days {
			row = append(row, g.CellText(tt.Entries(d, h.Number)))
		}
		cells = append(cells, row)
	}
	return cells
}
