package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/tsawler/timetable"
	"github.com/tsawler/timetable/query"
	"github.com/tsawler/timetable/schedule"
	"github.com/tsawler/timetable/source"
)

// formOverhead is the room left for multipart headers and text fields on
// top of the file itself.
const formOverhead = 1 << 20

// SearchResponse is the JSON body of a successful search.
type SearchResponse struct {
	Group    string              `json:"group"`
	Found    bool                `json:"found"`
	Report   *query.Report       `json:"report,omitempty"`
	Text     string              `json:"text"`
	Warnings []timetable.Warning `json:"warnings,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+formOverhead)
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		s.fail(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	mode := query.Subject
	if v := r.FormValue("mode"); v != "" {
		m, err := query.ParseMode(v)
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	}
	keyword := r.FormValue("q")
	if strings.TrimSpace(keyword) == "" {
		s.fail(w, r, http.StatusBadRequest, timetable.ErrMissingInput.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, timetable.ErrMissingInput.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "reading upload failed")
		return
	}

	sheet := r.FormValue("sheet")
	if sheet == "" {
		sheet = s.cfg.Sheet
	}
	tbl, err := source.LoadBytes(r.Context(), data, header.Filename, source.Config{
		Sheet:       sheet,
		MinWidth:    s.cfg.Columns.Width(),
		MaxFileSize: s.cfg.MaxFileSize,
		Logger:      s.logger,
	})
	if err != nil {
		s.logger.Warn("load failed", "file", header.Filename, "error", err)
		if errors.Is(err, source.ErrTooLarge) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		msg := err.Error()
		var le *source.LoadError
		if errors.As(err, &le) {
			msg = le.Err.Error()
		}
		s.fail(w, r, http.StatusUnprocessableEntity, "could not load file: "+msg)
		return
	}

	group := source.GroupName(header.Filename)
	f := timetable.FromRows(group, tbl.Rows).
		Columns(s.cfg.Columns).
		HeaderCaption(s.cfg.HeaderCaption).
		Logger(s.logger)
	if s.cfg.Strict {
		f = f.Strict()
	}

	result, warnings, err := f.Search(mode, keyword)
	var markerErr *schedule.MarkerError
	switch {
	case errors.Is(err, timetable.ErrMissingInput):
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.As(err, &markerErr):
		s.fail(w, r, http.StatusUnprocessableEntity, markerErr.Error())
		return
	case err != nil:
		s.logger.Error("search failed", "file", header.Filename, "error", err)
		s.fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, SearchResponse{
			Group:    group,
			Found:    !result.Empty(),
			Report:   result.Report,
			Text:     result.String(),
			Warnings: warnings,
		})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	result.WriteTo(w)
}

// fail writes an error in the format the client asked for.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	http.Error(w, msg, status)
}

func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == "application/json" {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
