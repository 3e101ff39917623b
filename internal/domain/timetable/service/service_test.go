package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
	"github.com/rosenbach/stundenplan-api/internal/domain/timetable/resolve"
)

type fakeDetector struct {
	grid *timetable.Grid
	err  error
}

func (f *fakeDetector) DetectGrid(*os.File) (*timetable.Grid, error) { return f.grid, f.err }

type captureRecorder struct {
	stages   []string
	outcomes []string
}

func (r *captureRecorder) ObserveStage(stage string, _ time.Duration) {
	r.stages = append(r.stages, stage)
}

func (r *captureRecorder) CountExtraction(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func newTestService(det GridDetector) *ExtractionService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewExtractionService(det, resolve.NewResolver(nil), logger)
}

func mustGrid(t *testing.T, cells [][]string) *timetable.Grid {
	t.Helper()
	g, err := timetable.NewGrid(cells)
	require.NoError(t, err)
	return g
}

func TestExtract(t *testing.T) {
	grid := mustGrid(t, [][]string{
		{"10A", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"},
		{"1.", "MATH MM E201", "DEU SB A113\nENG KW B204", "", "SPO TH TH1", "KUN KL K2"},
		{"2.", "", "MATH MM E201", "BIO BF C12", "", ""},
	})

	rec := &captureRecorder{}
	svc := newTestService(&fakeDetector{grid: grid}).WithRecorder(rec)

	result, err := svc.Extract(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "10A", result.ClassName)
	assert.Equal(t, []string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"}, result.Timetable.Days())

	monday := result.Timetable.Entries("Montag", 1)
	require.Len(t, monday, 1)
	assert.Equal(t, timetable.LessonEntry{
		Subject: "MATH", Teacher: "MM", Room: "E201", Specialization: timetable.WholeClass,
	}, monday[0])

	tuesday := result.Timetable.Entries("Dienstag", 1)
	require.Len(t, tuesday, 2)
	assert.Equal(t, timetable.GroupA, tuesday[0].Specialization)
	assert.Equal(t, "DEU", tuesday[0].Subject)
	assert.Equal(t, timetable.GroupB, tuesday[1].Specialization)
	assert.Equal(t, "ENG", tuesday[1].Subject)

	// A free period keeps its slot with an empty list.
	free := result.Timetable.Entries("Mittwoch", 1)
	require.NotNil(t, free)
	assert.Empty(t, free)

	assert.Equal(t, []string{"detect", "resolve", "assemble"}, rec.stages)
	assert.Equal(t, []string{OutcomeOK}, rec.outcomes)
}

func TestExtract_JSONShape(t *testing.T) {
	grid := mustGrid(t, [][]string{
		{"7B", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"},
		{"1.", "MATH MM E201", "", "", "", ""},
	})

	svc := newTestService(&fakeDetector{grid: grid})
	result, err := svc.Extract(context.Background(), nil)
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, `"class":"7B"`)
	assert.Contains(t, body, `"timetable":{"Montag":`)
	assert.Contains(t, body, `"subject":"MATH"`)
	assert.Contains(t, body, `"specialization":1`)
}

func TestExtract_DetectorErrorPassesThrough(t *testing.T) {
	rec := &captureRecorder{}
	svc := newTestService(&fakeDetector{err: timetable.ErrNoTableFound}).WithRecorder(rec)

	_, err := svc.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, timetable.ErrNoTableFound)
	assert.Equal(t, []string{"detect"}, rec.stages)
	assert.Equal(t, []string{OutcomeNoTable}, rec.outcomes)
}

func TestExtract_UnresolvableHeaders(t *testing.T) {
	grid := mustGrid(t, [][]string{
		{"alpha", "beta", "gamma"},
		{"delta", "epsilon", "zeta"},
	})

	svc := newTestService(&fakeDetector{grid: grid})
	_, err := svc.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, timetable.ErrHeaderResolutionFailed)
}

func TestExtract_MalformedCellAbortsWholeExtraction(t *testing.T) {
	grid := mustGrid(t, [][]string{
		{"9C", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"},
		{"1.", "MATH MM E201", "", "", "", ""},
		{"2.", "MATH MM", "", "", "", ""},
	})

	rec := &captureRecorder{}
	svc := newTestService(&fakeDetector{grid: grid}).WithRecorder(rec)

	_, err := svc.Extract(context.Background(), nil)
	require.Error(t, err)

	var cellErr timetable.CellParseError
	require.ErrorAs(t, err, &cellErr)
	assert.Equal(t, "Montag", cellErr.Weekday)
	assert.Equal(t, 2, cellErr.Hour)
	assert.Equal(t, []string{OutcomeCellParse}, rec.outcomes)
}

func TestExtract_GeneratedWeekRoundTrip(t *testing.T) {
	gen := timetable.NewTestDataGeneratorWithSeed(11)
	days := []string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"}
	hours := gen.HourSlots(8)

	week := gen.Week(days, hours)
	className := gen.ClassName()
	grid := mustGrid(t, gen.GridCells(className, week))

	svc := newTestService(&fakeDetector{grid: grid})
	result, err := svc.Extract(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, className, result.ClassName)
	assert.Equal(t, days, result.Timetable.Days())

	for _, d := range days {
		for _, h := range hours {
			assert.Equal(t, week.Entries(d, h.Number), result.Timetable.Entries(d, h.Number),
				"slot %s/%d", d, h.Number)
		}
	}
}

func TestExtract_Deterministic(t *testing.T) {
	grid := mustGrid(t, [][]string{
		{"8A", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"},
		{"1.", "MATH MM E201", "DEU SB A113\nENG KW B204", "", "SPO TH TH1", "KUN KL K2"},
		{"2.", "", "MATH MM E201", "BIO BF C12", "", ""},
	})

	svc := newTestService(&fakeDetector{grid: grid})

	first, err := svc.Extract(context.Background(), nil)
	require.NoError(t, err)
	second, err := svc.Extract(context.Background(), nil)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestOutcome(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"unreadable", timetable.ErrUnreadableDocument, OutcomeUnreadable},
		{"wrapped unreadable", fmt.Errorf("%w: bad xref", timetable.ErrUnreadableDocument), OutcomeUnreadable},
		{"no table", timetable.ErrNoTableFound, OutcomeNoTable},
		{"headers", fmt.Errorf("%w: no hour labels", timetable.ErrHeaderResolutionFailed), OutcomeHeaderUnresolved},
		{"cell", timetable.CellParseError{Weekday: "Montag", Hour: 1, Reason: "x"}, OutcomeCellParse},
		{"other", errors.New("disk on fire"), OutcomeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Outcome(tc.err))
		})
	}
}
