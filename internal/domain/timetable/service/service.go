// Package service orchestrates one extraction: grid detection, header
// resolution, cell parsing and timetable assembly.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
	"github.com/rosenbach/stundenplan-api/internal/domain/timetable/parser"
	"github.com/rosenbach/stundenplan-api/internal/domain/timetable/resolve"
)

// GridDetector locates the line-ruled table in a PDF and returns its cell
// text as a validated rectangular grid.
type GridDetector interface {
	DetectGrid(f *os.File) (*timetable.Grid, error)
}

// HeaderResolver identifies the weekday and hour axes of a detected grid.
type HeaderResolver interface {
	Resolve(g *timetable.Grid) (*resolve.Resolution, error)
}

// Recorder receives stage timings and final outcomes. Nil disables
// instrumentation.
type Recorder interface {
	ObserveStage(stage string, d time.Duration)
	CountExtraction(outcome string)
}

// ExtractionService runs the extraction pipeline. It holds no per-request
// state; one instance serves all requests.
type ExtractionService struct {
	detector GridDetector
	resolver HeaderResolver
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
}

// NewExtractionService creates an extraction service.
func NewExtractionService(detector GridDetector, resolver HeaderResolver, logger *slog.Logger) *ExtractionService {
	return &ExtractionService{
		detector: detector,
		resolver: resolver,
		logger:   logger,
		tracer:   otel.Tracer("github.com/rosenbach/stundenplan-api/internal/domain/timetable/service"),
	}
}

// WithRecorder adds metrics recording to the service.
func (s *ExtractionService) WithRecorder(r Recorder) *ExtractionService {
	s.recorder = r
	return s
}

// Extract converts an uploaded timetable PDF into the weekday/hour mapping.
// The caller owns f; the service only reads it.
func (s *ExtractionService) Extract(ctx context.Context, f *os.File) (*timetable.ExtractResult, error) {
	ctx, span := s.tracer.Start(ctx, "timetable.Extract")
	defer span.End()

	start := time.Now()
	result, err := s.extract(ctx, span, f)
	if err != nil {
		outcome := Outcome(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		s.countExtraction(outcome)
		s.logger.Info("extraction failed", "outcome", outcome, "duration", time.Since(start), "error", err)
		return nil, err
	}

	s.countExtraction(OutcomeOK)
	s.logger.Info("timetable extracted",
		"class", result.ClassName,
		"days", len(result.Timetable.Days()),
		"hours", len(result.Timetable.Hours()),
		"duration", time.Since(start))
	return result, nil
}

func (s *ExtractionService) extract(_ context.Context, span trace.Span, f *os.File) (*timetable.ExtractResult, error) {
	start := time.Now()
	grid, err := s.detector.DetectGrid(f)
	s.observeStage("detect", time.Since(start))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("grid.rows", grid.Rows()), attribute.Int("grid.cols", grid.Cols()))
	s.logger.Debug("grid detected", "rows", grid.Rows(), "cols", grid.Cols())

	start = time.Now()
	res, err := s.resolver.Resolve(grid)
	s.observeStage("resolve", time.Since(start))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("headers resolved", "class", res.ClassName, "days", res.Days, "hours", len(res.Hours))

	start = time.Now()
	tt, err := assemble(grid, res)
	s.observeStage("assemble", time.Since(start))
	if err != nil {
		return nil, err
	}

	return &timetable.ExtractResult{ClassName: res.ClassName, Timetable: tt}, nil
}

// assemble parses every (weekday, hour) cell and fills the timetable. One
// malformed cell aborts the whole extraction.
func assemble(grid *timetable.Grid, res *resolve.Resolution) (*timetable.Timetable, error) {
	tt := timetable.NewTimetable(res.Days, res.Hours)
	for di, day := range res.Days {
		for hi, hour := range res.Hours {
			entries, err := parser.ParseCell(day, hour.Number, res.DataCell(grid, di, hi))
			if err != nil {
				return nil, err
			}
			if err := tt.Set(day, hour, entries); err != nil {
				return nil, fmt.Errorf("assemble timetable: %w", err)
			}
		}
	}
	return tt, nil
}

func (s *ExtractionService) observeStage(stage string, d time.Duration) {
	if s.recorder != nil {
		s.recorder.ObserveStage(stage, d)
	}
}

func (s *ExtractionService) countExtraction(outcome string) {
	if s.recorder != nil {
		s.recorder.CountExtraction(outcome)
	}
}

// Outcome labels for metrics and logs.
const (
	OutcomeOK               = "ok"
	OutcomeUnreadable       = "unreadable_document"
	OutcomeNoTable          = "no_table_found"
	OutcomeHeaderUnresolved = "header_unresolved"
	OutcomeCellParse        = "cell_parse_error"
	OutcomeInternal         = "internal_error"
)

// Outcome classifies an extraction error into a stable label.
func Outcome(err error) string {
	var cellErr timetable.CellParseError
	switch {
	case errors.Is(err, timetable.ErrUnreadableDocument):
		return OutcomeUnreadable
	case errors.Is(err, timetable.ErrNoTableFound):
		return OutcomeNoTable
	case errors.Is(err, timetable.ErrHeaderResolutionFailed):
		return OutcomeHeaderUnresolved
	case errors.As(err, &cellErr):
		return OutcomeCellParse
	default:
		return OutcomeInternal
	}
}
