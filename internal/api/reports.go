package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/period"
	"github.com/MikeSquared-Agency/aktivasi/internal/report"
)

func (s *Server) anchorParam(r *http.Request) (time.Time, error) {
	if d := strings.TrimSpace(r.URL.Query().Get("date")); d != "" {
		return period.ParseAnchor(d, s.opts.Location)
	}
	return time.Now().In(s.opts.Location), nil
}

func (s *Server) records(r *http.Request) ([]activation.Record, error) {
	rows, err := s.store.ReadAll(r.Context(), s.opts.ActivationTable)
	if err != nil {
		return nil, err
	}
	return activation.RecordsFromRows(rows), nil
}

// getReport handles GET /api/v1/reports/{period}
func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	p, err := period.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	anchor, err := s.anchorParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.records(r)
	if err != nil {
		s.logger.Error("failed to read activations", "error", err)
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, report.BuildSummary(records, p, anchor))
}

// exportCSV handles GET /api/v1/export.csv. Admins export every record;
// other users export their own.
func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	p := period.Monthly
	if q := r.URL.Query().Get("period"); q != "" {
		var err error
		if p, err = period.ParsePeriod(q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	anchor, err := s.anchorParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.records(r)
	if err != nil {
		s.logger.Error("failed to read activations", "error", err)
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	user := userFrom(r.Context())
	label := "semua"
	if !user.IsAdmin() {
		label = user.DisplayLabel()
		records = report.OwnRecords(records, label)
	}
	records = period.Filter(records, p, anchor)

	start, _ := period.Window(p, anchor)
	name := report.ExportFilename(label, string(p), start.Format("20060102"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if err := report.WriteCSV(w, records); err != nil {
		s.logger.Error("failed to write csv", "error", err)
	}
}
