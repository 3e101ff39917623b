// Package handler exposes the extraction pipeline over HTTP: multipart PDF
// uploads in, JSON or calendar/spreadsheet downloads out.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rosenbach/stundenplan-api/internal/domain/timetable"
	"github.com/rosenbach/stundenplan-api/internal/domain/timetable/export"
	"github.com/rosenbach/stundenplan-api/internal/domain/timetable/service"
	"github.com/rosenbach/stundenplan-api/pkg/spool"
)

// uploadField is the multipart form field carrying the PDF.
const uploadField = "file"

// TimetableHandler handles timetable extraction requests
type TimetableHandler struct {
	extractor *service.ExtractionService
	exporter  *export.Exporter
	spool     *spool.Spool
	maxUpload int64
	logger    *slog.Logger
}

// NewTimetableHandler creates a new timetable handler
func NewTimetableHandler(extractor *service.ExtractionService, exporter *export.Exporter, sp *spool.Spool, maxUpload int64, logger *slog.Logger) *TimetableHandler {
	return &TimetableHandler{
		extractor: extractor,
		exporter:  exporter,
		spool:     sp,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Upload handles POST /upload: one PDF in, the extracted timetable out.
func (h *TimetableHandler) Upload(w http.ResponseWriter, r *http.Request) {
	result, ok := h.extractFromRequest(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// ExportICS handles POST /export/ics: the extracted timetable as an
// iCalendar feed for the upcoming school week.
func (h *TimetableHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	result, ok := h.extractFromRequest(w, r)
	if !ok {
		return
	}

	weekStart := export.NextWeekStart(time.Now(), h.exporter.Location())
	var buf bytes.Buffer
	if err := h.exporter.WriteICS(result, weekStart, &buf); err != nil {
		h.logger.Error("failed to render calendar", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal error", service.OutcomeInternal)
		return
	}
	h.sendAttachment(w, "text/calendar; charset=utf-8", exportFilename(result.ClassName, "ics"), &buf)
}

// ExportXLSX handles POST /export/xlsx.
func (h *TimetableHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	result, ok := h.extractFromRequest(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.WriteXLSX(result, &buf); err != nil {
		h.logger.Error("failed to render workbook", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal error", service.OutcomeInternal)
		return
	}
	h.sendAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", exportFilename(result.ClassName, "xlsx"), &buf)
}

// ExportCSV handles POST /export/csv.
func (h *TimetableHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := h.extractFromRequest(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.WriteCSV(result, &buf); err != nil {
		h.logger.Error("failed to render CSV", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal error", service.OutcomeInternal)
		return
	}
	h.sendAttachment(w, "text/csv; charset=utf-8", exportFilename(result.ClassName, "csv"), &buf)
}

// Health reports liveness.
func (h *TimetableHandler) Health(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extractFromRequest spools the uploaded PDF and runs the pipeline. When it
// returns false the error response has already been written.
func (h *TimetableHandler) extractFromRequest(w http.ResponseWriter, r *http.Request) (*timetable.ExtractResult, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", maxErr.Limit), "upload_too_large")
			return nil, false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("missing or unreadable %q form field", uploadField), "bad_upload")
		return nil, false
	}
	defer file.Close()

	spooled, cleanup, err := h.spool.Put(file)
	if err != nil {
		h.logger.Error("failed to spool upload", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal error", service.OutcomeInternal)
		return nil, false
	}
	defer cleanup()

	h.logger.Debug("upload spooled", "filename", header.Filename, "size", header.Size)

	result, err := h.extractor.Extract(r.Context(), spooled)
	if err != nil {
		h.respondExtractError(w, err)
		return nil, false
	}
	return result, true
}

func (h *TimetableHandler) respondExtractError(w http.ResponseWriter, err error) {
	outcome := service.Outcome(err)
	if outcome == service.OutcomeInternal {
		h.logger.Error("extraction failed", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal error", outcome)
		return
	}
	h.respondError(w, http.StatusUnprocessableEntity, err.Error(), outcome)
}

func (h *TimetableHandler) respondError(w http.ResponseWriter, status int, message, kind string) {
	h.respondJSON(w, status, errorResponse{Error: message, Kind: kind})
}

func (h *TimetableHandler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h *TimetableHandler) sendAttachment(w http.ResponseWriter, contentType, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write attachment", slog.Any("error", err))
	}
}

func exportFilename(className, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, className)
	if name == "" {
		return "stundenplan." + ext
	}
	return "stundenplan_" + name + "." + ext
}
