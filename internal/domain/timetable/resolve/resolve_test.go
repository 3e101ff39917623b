package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
)

func mustGrid(t *testing.T, cells [][]string) *timetable.Grid {
	t.Helper()
	g, err := timetable.NewGrid(cells)
	require.NoError(t, err)
	return g
}

func TestResolve_WeekdaysAsColumns(t *testing.T) {
	r := NewResolver(nil)

	g := mustGrid(t, [][]string{
		{"10A", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"},
		{"1.", "MATH MM E201", "DEU SB A113", "", "BIO KR B21", "SPO HE TH1"},
		{"2.", "ART KK E202", "", "ENG FL A201", "", "MATH MM E201"},
	})

	res, err := r.Resolve(g)
	require.NoError(t, err)

	assert.Equal(t, []string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"}, res.Days)
	require.Len(t, res.Hours, 2)
	assert.Equal(t, 1, res.Hours[0].Number)
	assert.Equal(t, 2, res.Hours[1].Number)
	assert.Equal(t, "10A", res.ClassName)

	assert.Equal(t, "MATH MM E201", res.DataCell(g, 0, 0))
	assert.Equal(t, "SPO HE TH1", res.DataCell(g, 4, 0))
	assert.Equal(t, "ENG FL A201", res.DataCell(g, 2, 1))
	assert.Equal(t, "", res.DataCell(g, 3, 1))
}

func TestResolve_WeekdaysAsRows(t *testing.T) {
	r := NewResolver(nil)

	g := mustGrid(t, [][]string{
		{"7B", "1.", "2.", "3."},
		{"Montag", "MATH MM E201", "", "ENG FL A201"},
		{"Dienstag", "DEU SB A113", "BIO KR B21", ""},
		{"Mittwoch", "", "SPO HE TH1", "ART KK E202"},
		{"Donnerstag", "ENG FL A201", "", "MATH MM E201"},
		{"Freitag", "BIO KR B21", "DEU SB A113", ""},
	})

	res, err := r.Resolve(g)
	require.NoError(t, err)

	assert.Equal(t, []string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"}, res.Days)
	require.Len(t, res.Hours, 3)
	assert.Equal(t, "7B", res.ClassName)

	assert.Equal(t, "MATH MM E201", res.DataCell(g, 0, 0))
	assert.Equal(t, "ART KK E202", res.DataCell(g, 2, 2))
	assert.Equal(t, "", res.DataCell(g, 4, 2))
}

func TestResolve_AbbreviatedWeekdays(t *testing.T) {
	r := NewResolver(nil)

	g := mustGrid(t, [][]string{
		{"", "Mo", "Di", "Mi", "Do", "Fr"},
		{"1.", "MATH MM E201", "", "", "", ""},
		{"2.", "", "DEU SB A113", "", "", ""},
	})

	res, err := r.Resolve(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"}, res.Days)
	assert.Equal(t, "", res.ClassName)
}

func TestResolve_HourTimeRanges(t *testing.T) {
	r := NewResolver(nil)

	g := mustGrid(t, [][]string{
		{"9C", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"},
		{"1. 07:45-08:30", "MATH MM E201", "", "", "", ""},
		{"2. 8.35-9.20", "", "", "", "", ""},
		{"3", "", "", "", "", ""},
	})

	res, err := r.Resolve(g)
	require.NoError(t, err)
	require.Len(t, res.Hours, 3)

	assert.Equal(t, "07:45", res.Hours[0].Start)
	assert.Equal(t, "08:30", res.Hours[0].End)
	assert.Equal(t, "08:35", res.Hours[1].Start)
	assert.Equal(t, "09:20", res.Hours[1].End)
	assert.Empty(t, res.Hours[2].Start)
}

func TestResolve_SkipsBlankHourRows(t *testing.T) {
	r := NewResolver(nil)

	g := mustGrid(t, [][]string{
		{"", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"},
		{"1.", "MATH MM E201", "", "", "", ""},
		{"", "", "", "", "", ""},
		{"2.", "", "", "", "", ""},
	})

	res, err := r.Resolve(g)
	require.NoError(t, err)
	require.Len(t, res.Hours, 2)
	assert.Equal(t, "MATH MM E201", res.DataCell(g, 0, 0))
	assert.Equal(t, "", res.DataCell(g, 0, 1))
}

func TestResolve_FullWeekBeatsPartialMatch(t *testing.T) {
	r := NewResolver(nil)

	// Both leading axes carry weekday-like labels. The row covers the full
	// five-day set, the column only three days, so the row must win.
	g := mustGrid(t, [][]string{
		{"", "", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"},
		{"Dienstag", "1.", "MATH MM E201", "", "", "", ""},
		{"Mittwoch", "2.", "", "DEU SB A113", "", "", ""},
		{"Donnerstag", "3.", "", "", "BIO KR B21", "", ""},
	})

	res, err := r.Resolve(g)
	require.NoError(t, err)

	assert.Len(t, res.Days, 5)
	require.Len(t, res.Hours, 3)
	// Data is addressed through the winning orientation: weekdays run along
	// columns 2..6, hours down column 1.
	assert.Equal(t, "MATH MM E201", res.DataCell(g, 0, 0))
	assert.Equal(t, "DEU SB A113", res.DataCell(g, 1, 1))
}

func TestResolve_Failures(t *testing.T) {
	r := NewResolver(nil)

	t.Run("no weekday labels", func(t *testing.T) {
		g := mustGrid(t, [][]string{
			{"", "alpha", "beta"},
			{"1.", "x y z", "x y z"},
		})
		_, err := r.Resolve(g)
		require.Error(t, err)
		assert.ErrorIs(t, err, timetable.ErrHeaderResolutionFailed)
	})

	t.Run("hours not increasing", func(t *testing.T) {
		g := mustGrid(t, [][]string{
			{"", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"},
			{"2.", "", "", "", "", ""},
			{"1.", "", "", "", "", ""},
		})
		_, err := r.Resolve(g)
		require.Error(t, err)
		assert.ErrorIs(t, err, timetable.ErrHeaderResolutionFailed)
		assert.Contains(t, err.Error(), "monotonically")
	})

	t.Run("no hour labels", func(t *testing.T) {
		g := mustGrid(t, [][]string{
			{"", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"},
			{"first", "", "", "", "", ""},
			{"second", "", "", "", "", ""},
		})
		_, err := r.Resolve(g)
		require.Error(t, err)
		assert.ErrorIs(t, err, timetable.ErrHeaderResolutionFailed)
	})
}

func TestResolve_CustomVocabulary(t *testing.T) {
	vocab, err := NewVocabulary([]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"})
	require.NoError(t, err)
	r := NewResolver(vocab)

	g := mustGrid(t, [][]string{
		{"5F", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		{"1", "MATH MM E201", "", "", "", ""},
	})

	res, err := r.Resolve(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, res.Days)
}
