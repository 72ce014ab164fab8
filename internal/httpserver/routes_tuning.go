package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/mastermind/internal/tuning"
)

// mountTuning exposes recorded tuning runs read-only.
func (s *Server) mountTuning() {
	if s.db == nil {
		return
	}
	rec := tuning.NewSQLRecorder(s.db)

	s.r.Get("/tuning/runs", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		runs, err := rec.Runs(r.Context(), limit)
		if err != nil {
			http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(runs)
	})
	s.r.Get("/tuning/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		cycles, err := rec.Cycles(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
			return
		}
		if len(cycles) == 0 {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(cycles)
	})
}
