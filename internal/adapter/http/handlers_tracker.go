package adapthttp

import (
	"net/http"
	"time"
)

func (s *Server) handleSensorReading(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Steps float64 `json:"steps"`
		At    string  `json:"at,omitempty"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	if req.At != "" {
		t, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			http.Error(w, "invalid timestamp", http.StatusBadRequest)
			return
		}
		now = t.In(time.Local)
	}

	reading, err := s.tracker.HandleSensorReading(r.Context(), user.Email, req.Steps, now)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleTrackerStart(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	s.tracker.StartTracking(r.Context(), user.Email, time.Now())
	writeJSON(w, http.StatusOK, map[string]string{"status": "tracking"})
}

func (s *Server) handleTrackerStop(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	s.tracker.StopTracking(user.Email)
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleStatsToday(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sum, err := s.tracker.TodaySummary(r.Context(), user.Email, time.Now())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleStatsHourly(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	day, err := dayQuery(r, "day")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	points, err := s.tracker.RollupTodayHourly(r.Context(), user.Email, day)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"day": day, "hours": points})
}

func (s *Server) handleStatsWeekly(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	end, err := dayQuery(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	points, err := s.tracker.RollupLast7Days(r.Context(), user.Email, end)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": points})
}
