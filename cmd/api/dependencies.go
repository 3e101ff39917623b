package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable/detect"
	"github.com/rosenbach/stundenplan-api/internal/domain/timetable/export"
	"github.com/rosenbach/stundenplan-api/internal/domain/timetable/handler"
	"github.com/rosenbach/stundenplan-api/internal/domain/timetable/resolve"
	"github.com/rosenbach/stundenplan-api/internal/domain/timetable/service"

	"github.com/rosenbach/stundenplan-api/pkg/config"
	"github.com/rosenbach/stundenplan-api/pkg/cron"
	"github.com/rosenbach/stundenplan-api/pkg/metrics"
	"github.com/rosenbach/stundenplan-api/pkg/spool"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Spool   *spool.Spool
	Metrics *metrics.Metrics

	// Extraction pipeline
	Detector *detect.Detector
	Resolver *resolve.Resolver
	Exporter *export.Exporter

	ExtractionService *service.ExtractionService

	TimetableHandler *handler.TimetableHandler

	Scheduler *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initStorage prepares the upload spool and the metrics registry.
func (d *Dependencies) initStorage() error {
	sp, err := spool.New(d.Config.Spool.Dir, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to init spool: %w", err)
	}
	d.Spool = sp
	d.Metrics = metrics.New()

	d.Logger.Info("spool initialized", slog.String("dir", d.Config.Spool.Dir))
	return nil
}

// initServices initializes the extraction pipeline and the exporters
func (d *Dependencies) initServices() error {
	vocab := resolve.DefaultVocabulary()
	if labels := d.Config.Extraction.WeekdayLabels; len(labels) > 0 {
		v, err := resolve.NewVocabulary(labels)
		if err != nil {
			return fmt.Errorf("failed to build weekday vocabulary: %w", err)
		}
		vocab = v
	}

	d.Detector = detect.NewDetector()
	d.Resolver = resolve.NewResolver(vocab)

	exporter, err := export.NewExporter(export.Schedule{
		Timezone:      d.Config.Schedule.Timezone,
		FirstLesson:   d.Config.Schedule.FirstLesson,
		LessonMinutes: d.Config.Schedule.LessonMinutes,
		BreakMinutes:  d.Config.Schedule.BreakMinutes,
	})
	if err != nil {
		return fmt.Errorf("failed to init exporter: %w", err)
	}
	d.Exporter = exporter

	// Extraction service with stage metrics wired in
	d.ExtractionService = service.NewExtractionService(d.Detector, d.Resolver, d.Logger)
	d.ExtractionService.WithRecorder(d.Metrics)

	// Spool janitor for uploads left behind by interrupted requests
	d.Scheduler = cron.NewScheduler(
		d.Spool,
		d.Config.Spool.SweepSchedule,
		time.Duration(d.Config.Spool.MaxAgeMinutes)*time.Minute,
		d.Logger,
	)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.TimetableHandler = handler.NewTimetableHandler(
		d.ExtractionService,
		d.Exporter,
		d.Spool,
		d.Config.Upload.MaxBytes,
		d.Logger,
	)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	d.Logger.Info("cleanup completed")
}
