// Package resolve locates the weekday and hour axes within a detected grid.
// Table orientation (weekdays as rows vs columns) and header position are
// not hardcoded: they are inferred from which cells match the weekday
// vocabulary and which match the hour pattern.
package resolve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
)

const (
	// defaultScanDepth bounds how many leading rows and columns are examined
	// for header labels.
	defaultScanDepth = 3
	// defaultMaxHour bounds what counts as a plausible teaching period.
	defaultMaxHour = 20
)

// hourRe matches an hour label: a small number, an optional trailing dot,
// and an optional clock range ("1.", "3", "1. 07:45-08:30", "2 (8.35-9.20)").
// The range is ignored for identity but captured for calendar export.
var hourRe = regexp.MustCompile(`^(\d{1,2})\s*\.?\s*(?:\(?\s*(\d{1,2})[:.](\d{2})\s*[-–—]\s*(\d{1,2})[:.](\d{2})\s*\)?)?$`)

// Resolver infers header axes for grids using one weekday vocabulary.
type Resolver struct {
	vocab     *Vocabulary
	scanDepth int
	maxHour   int
}

// NewResolver creates a resolver over the given vocabulary.
func NewResolver(vocab *Vocabulary) *Resolver {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Resolver{
		vocab:     vocab,
		scanDepth: defaultScanDepth,
		maxHour:   defaultMaxHour,
	}
}

// Resolution addresses the data sub-grid by (weekday, hour). Days are in
// canonical vocabulary order, hours ascending, regardless of where either
// sat on the page.
type Resolution struct {
	Days      []string
	Hours     []timetable.HourSlot
	ClassName string

	daysAsCols bool
	dayPos     []int // grid column (row when daysAsCols is false) per day
	hourPos    []int // grid row (column when daysAsCols is false) per hour
}

// DataCell returns the raw text of the data cell for (Days[dayIdx],
// Hours[hourIdx]).
func (r *Resolution) DataCell(g *timetable.Grid, dayIdx, hourIdx int) string {
	if r.daysAsCols {
		return g.Cell(r.hourPos[hourIdx], r.dayPos[dayIdx])
	}
	return g.Cell(r.dayPos[dayIdx], r.hourPos[hourIdx])
}

// axisCandidate scores one row or column as a potential weekday axis.
type axisCandidate struct {
	pos      int
	days     map[int]int // vocabulary day index -> position along the axis
	distinct int
	score    int
	full     bool
}

// Resolve determines the weekday axis, the hour axis, and the class name
// (corner cell) for a grid.
func (r *Resolver) Resolve(g *timetable.Grid) (*Resolution, error) {
	rowCand := r.bestDayAxis(g, true)
	colCand := r.bestDayAxis(g, false)

	cand, daysAsCols := chooseDayAxis(rowCand, colCand)
	if cand == nil {
		return nil, fmt.Errorf("%w: no weekday labels recognized in the first %d rows or columns",
			timetable.ErrHeaderResolutionFailed, r.scanDepth)
	}

	hours, hourPos, axisPos, err := r.resolveHours(g, cand, daysAsCols)
	if err != nil {
		return nil, err
	}

	res := &Resolution{
		Hours:      hours,
		daysAsCols: daysAsCols,
		hourPos:    hourPos,
	}
	for day := 0; day < r.vocab.Size(); day++ {
		if p, ok := cand.days[day]; ok {
			res.Days = append(res.Days, r.vocab.Day(day))
			res.dayPos = append(res.dayPos, p)
		}
	}
	if daysAsCols {
		res.ClassName = strings.TrimSpace(g.Cell(cand.pos, axisPos))
	} else {
		res.ClassName = strings.TrimSpace(g.Cell(axisPos, cand.pos))
	}
	return res, nil
}

// bestDayAxis scans the leading rows (or columns) and returns the strongest
// weekday candidate, or nil when nothing matches.
func (r *Resolver) bestDayAxis(g *timetable.Grid, alongRows bool) *axisCandidate {
	limit := g.Rows()
	if !alongRows {
		limit = g.Cols()
	}
	if limit > r.scanDepth {
		limit = r.scanDepth
	}

	var best *axisCandidate
	for idx := 0; idx < limit; idx++ {
		var cells []string
		if alongRows {
			cells = g.Row(idx)
		} else {
			cells = g.Column(idx)
		}

		cand := &axisCandidate{pos: idx, days: make(map[int]int)}
		for p, cell := range cells {
			day, strength := r.vocab.Match(cell)
			if day < 0 {
				continue
			}
			if _, taken := cand.days[day]; taken {
				continue // first occurrence wins
			}
			cand.days[day] = p
			cand.score += strength
		}
		if len(cand.days) == 0 {
			continue
		}
		cand.distinct = len(cand.days)
		cand.full = cand.distinct == r.vocab.Size()
		cand.score += cand.distinct * 10

		if betterAxis(cand, best) {
			best = cand
		}
	}
	return best
}

// betterAxis orders candidates: full vocabulary coverage first, then more
// distinct days, then stronger matches. Earlier rows/columns win ties.
func betterAxis(cand, best *axisCandidate) bool {
	if best == nil {
		return true
	}
	if cand.full != best.full {
		return cand.full
	}
	if cand.distinct != best.distinct {
		return cand.distinct > best.distinct
	}
	return cand.score > best.score
}

// chooseDayAxis decides between a row candidate (weekdays as columns) and a
// column candidate (weekdays as rows). When both axes look weekday-like, the
// one covering the full expected set wins; remaining ties fall to the row
// candidate, the common layout.
func chooseDayAxis(rowCand, colCand *axisCandidate) (*axisCandidate, bool) {
	switch {
	case rowCand == nil && colCand == nil:
		return nil, false
	case colCand == nil:
		return rowCand, true
	case rowCand == nil:
		return colCand, false
	}
	if rowCand.full != colCand.full {
		if rowCand.full {
			return rowCand, true
		}
		return colCand, false
	}
	if rowCand.distinct != colCand.distinct {
		if rowCand.distinct > colCand.distinct {
			return rowCand, true
		}
		return colCand, false
	}
	if colCand.score > rowCand.score {
		return colCand, false
	}
	return rowCand, true
}

// resolveHours finds the hour axis orthogonal to the weekday axis. It picks
// the leading row/column whose cells past the weekday header all parse as a
// strictly increasing run of small integers, preferring the longest run.
// Returns the slots, their grid positions, and the axis position (for the
// corner cell).
func (r *Resolver) resolveHours(g *timetable.Grid, dayCand *axisCandidate, daysAsCols bool) ([]timetable.HourSlot, []int, int, error) {
	taken := make(map[int]struct{}, len(dayCand.days))
	for _, p := range dayCand.days {
		taken[p] = struct{}{}
	}

	limit := g.Cols()
	if !daysAsCols {
		limit = g.Rows()
	}
	if limit > r.scanDepth {
		limit = r.scanDepth
	}

	var (
		bestSlots []timetable.HourSlot
		bestPos   []int
		bestAxis  = -1
		sawBroken bool
	)
	for idx := 0; idx < limit; idx++ {
		if _, isDay := taken[idx]; isDay {
			continue
		}
		var cells []string
		if daysAsCols {
			cells = g.Column(idx)
		} else {
			cells = g.Row(idx)
		}
		slots, pos, broken := r.collectHours(cells, dayCand.pos+1)
		if broken {
			sawBroken = true
			continue
		}
		if len(slots) > len(bestSlots) {
			bestSlots, bestPos, bestAxis = slots, pos, idx
		}
	}

	if len(bestSlots) == 0 {
		if sawBroken {
			return nil, nil, -1, fmt.Errorf("%w: hour labels do not form a monotonically increasing sequence",
				timetable.ErrHeaderResolutionFailed)
		}
		return nil, nil, -1, fmt.Errorf("%w: no hour labels recognized alongside the weekday axis",
			timetable.ErrHeaderResolutionFailed)
	}
	return bestSlots, bestPos, bestAxis, nil
}

// collectHours walks one row/column from the first position past the weekday
// header. Blank cells are skipped; any non-blank cell that is not an hour
// label disqualifies the axis, as does a number that fails to increase.
func (r *Resolver) collectHours(cells []string, from int) (slots []timetable.HourSlot, pos []int, broken bool) {
	last := 0
	for i := from; i < len(cells); i++ {
		raw := strings.TrimSpace(cells[i])
		if raw == "" {
			continue
		}
		slot, ok := r.parseHour(raw)
		if !ok {
			return nil, nil, false
		}
		if slot.Number <= last {
			return nil, nil, true
		}
		last = slot.Number
		slots = append(slots, slot)
		pos = append(pos, i)
	}
	return slots, pos, false
}

// parseHour parses one hour label, normalizing an embedded clock range to
// HH:MM.
func (r *Resolver) parseHour(raw string) (timetable.HourSlot, bool) {
	norm := strings.Join(strings.Fields(strings.ReplaceAll(raw, "\n", " ")), " ")
	m := hourRe.FindStringSubmatch(norm)
	if m == nil {
		return timetable.HourSlot{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > r.maxHour {
		return timetable.HourSlot{}, false
	}
	slot := timetable.HourSlot{Number: n}
	if m[2] != "" {
		slot.Start = clockTime(m[2], m[3])
		slot.End = clockTime(m[4], m[5])
	}
	return slot, true
}

func clockTime(hh, mm string) string {
	h, _ := strconv.Atoi(hh)
	return fmt.Sprintf("%02d:%s", h, mm)
}
