package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
)

// lessonRow is one flattened lesson for CSV output.
type lessonRow struct {
	Class   string `csv:"class"`
	Weekday string `csv:"weekday"`
	Hour    int    `csv:"hour"`
	Subject string `csv:"subject"`
	Teacher string `csv:"teacher"`
	Room    string `csv:"room"`
	Group   string `csv:"group"`
}

// WriteCSV serializes the timetable as one flat lesson list in timetable
// order. Free periods are omitted.
func (e *Exporter) WriteCSV(res *timetable.ExtractResult, w io.Writer) error {
	var rows []lessonRow
	for _, day := range res.Timetable.Days() {
		for _, hour := range res.Timetable.Hours() {
			for _, entry := range res.Timetable.Entries(day, hour.Number) {
				rows = append(rows, lessonRow{
					Class:   res.ClassName,
					Weekday: day,
					Hour:    hour.Number,
					Subject: entry.Subject,
					Teacher: entry.Teacher,
					Room:    entry.Room,
					Group:   groupLabel(entry.Specialization),
				})
			}
		}
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
