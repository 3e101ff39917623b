// Package detect acquires the raw cell grid from a PDF document using
// line-based table detection: ruling lines are recovered from the page
// content streams, intersected into a grid hypothesis, and the page's text
// fragments are poured into the resulting cells.
package detect

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
)

const (
	// A usable grid needs at least a header axis and one data row/column.
	minGridRows = 2
	minGridCols = 2

	// cellTolerance forgives hairline overlap between a fragment center and
	// a ruling, in points.
	cellTolerance = 2.0
)

// Detector turns one PDF document into the raw cell grid of its timetable.
// It holds no per-document state and is safe for concurrent use.
type Detector struct {
	grids *tables.GridDetector
}

// NewDetector creates a detector with the default grid tolerances.
func NewDetector() *Detector {
	return &Detector{grids: tables.NewGridDetector()}
}

// DetectGrid scans the document page by page and returns the first
// line-ruled table as cell text. Pages that cannot be parsed are skipped;
// the whole document failing to open reports ErrUnreadableDocument, and no
// page yielding a usable grid reports ErrNoTableFound. The caller keeps
// ownership of the file handle.
func (d *Detector) DetectGrid(f *os.File) (*timetable.Grid, error) {
	r, err := reader.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", timetable.ErrUnreadableDocument, err)
	}

	pageCount, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", timetable.ErrUnreadableDocument, err)
	}

	for i := 0; i < pageCount; i++ {
		page, err := r.GetPage(i)
		if err != nil {
			continue
		}
		frags, err := r.ExtractTextFragments(page)
		if err != nil || len(frags) == 0 {
			continue
		}
		content, err := pageContent(page)
		if err != nil || len(content) == 0 {
			continue
		}

		extractor := graphicsstate.NewGraphicsExtractor()
		if err := extractor.ExtractFromBytes(content); err != nil {
			continue
		}
		lines := extractor.GetGridLines()

		hypotheses := d.grids.DetectFromLines(lines.Horizontals, lines.Verticals)
		sort.SliceStable(hypotheses, func(a, b int) bool {
			return hypotheses[a].Confidence > hypotheses[b].Confidence
		})

		for _, h := range hypotheses {
			if h.Rows < minGridRows || h.Cols < minGridCols {
				continue
			}
			grid, err := timetable.NewGrid(populateCells(h, frags))
			if err != nil {
				continue
			}
			return grid, nil
		}
	}
	return nil, timetable.ErrNoTableFound
}

// pageContent concatenates a page's decoded content streams.
func pageContent(page *pages.Page) ([]byte, error) {
	objs, err := page.Contents()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, obj := range objs {
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		data, err := stream.Decode()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// populateCells assigns each text fragment to the grid cell containing its
// center and assembles per-cell text. The hypothesis carries row boundaries
// top-to-bottom (descending Y, PDF coordinates) and column boundaries
// left-to-right.
func populateCells(h *tables.GridHypothesis, frags []text.TextFragment) [][]string {
	buckets := make([][]text.TextFragment, h.Rows*h.Cols)
	for _, frag := range frags {
		cx := frag.X + frag.Width/2
		cy := frag.Y + frag.Height/2
		row := findRow(h.HorizontalLines, cy)
		col := findCol(h.VerticalLines, cx)
		if row < 0 || col < 0 {
			continue
		}
		idx := row*h.Cols + col
		buckets[idx] = append(buckets[idx], frag)
	}

	cells := make([][]string, h.Rows)
	for r := 0; r < h.Rows; r++ {
		cells[r] = make([]string, h.Cols)
		for c := 0; c < h.Cols; c++ {
			cells[r][c] = assembleCellText(buckets[r*h.Cols+c])
		}
	}
	return cells
}

// findRow locates the band [rows[i+1], rows[i]] containing y; boundaries are
// descending.
func findRow(rows []float64, y float64) int {
	for i := 0; i+1 < len(rows); i++ {
		if y <= rows[i]+cellTolerance && y >= rows[i+1]-cellTolerance {
			return i
		}
	}
	return -1
}

// findCol locates the band [cols[i], cols[i+1]] containing x; boundaries are
// ascending.
func findCol(cols []float64, x float64) int {
	for i := 0; i+1 < len(cols); i++ {
		if x >= cols[i]-cellTolerance && x <= cols[i+1]+cellTolerance {
			return i
		}
	}
	return -1
}

// assembleCellText orders a cell's fragments top-to-bottom, left-to-right
// and joins them: fragments on the same baseline merge (with a space when
// the horizontal gap is wide enough to be a word break), distinct baselines
// stack with "\n".
func assembleCellText(frags []text.TextFragment) string {
	if len(frags) == 0 {
		return ""
	}

	sorted := make([]text.TextFragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		yDiff := sorted[i].Y - sorted[j].Y
		if abs(yDiff) > sorted[i].Height*0.5 {
			return yDiff > 0 // higher on the page first
		}
		return sorted[i].X < sorted[j].X
	})

	var b strings.Builder
	lastY := sorted[0].Y
	lastEndX := sorted[0].X + sorted[0].Width
	b.WriteString(sorted[0].Text)

	for _, frag := range sorted[1:] {
		if abs(frag.Y-lastY) > frag.Height*0.5 {
			b.WriteString("\n")
		} else if frag.X-lastEndX > frag.FontSize*0.3 {
			b.WriteString(" ")
		}
		b.WriteString(frag.Text)
		lastY = frag.Y
		lastEndX = frag.X + frag.Width
	}
	return strings.TrimSpace(b.String())
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
