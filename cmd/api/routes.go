package main

import "net/http"

// Routes mounts all HTTP endpoints behind the middleware chain.
func (d *Dependencies) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /upload", d.TimetableHandler.Upload)
	mux.HandleFunc("POST /export/ics", d.TimetableHandler.ExportICS)
	mux.HandleFunc("POST /export/xlsx", d.TimetableHandler.ExportXLSX)
	mux.HandleFunc("POST /export/csv", d.TimetableHandler.ExportCSV)
	mux.HandleFunc("GET /healthz", d.TimetableHandler.Health)

	return d.withMiddleware(mux)
}
