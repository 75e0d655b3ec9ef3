package adapthttp

import (
	"net/http"

	"fittrack/internal/app"
	"fittrack/internal/domain"
)

// profileView is the external representation of a user profile. The password
// hash and live counters never leave the server through this endpoint.
type profileView struct {
	Email          string  `json:"email"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Age            int     `json:"age"`
	Gender         string  `json:"gender"`
	HeightCm       float64 `json:"heightCm"`
	WeightKg       float64 `json:"weightKg"`
	StepsGoal      int     `json:"stepsGoal"`
	CaloriesGoal   int     `json:"caloriesGoal"`
	TargetWeightKg float64 `json:"targetWeightKg"`
	WeightToday    float64 `json:"weightToday"`
}

func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := s.profile.Get(r.Context(), user.Email)
	if err == app.ErrUserNotFound {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, profileView{
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Age:            u.Age,
		Gender:         u.Gender,
		HeightCm:       u.HeightCm,
		WeightKg:       u.WeightKg,
		StepsGoal:      u.StepsGoal,
		CaloriesGoal:   u.CaloriesGoal,
		TargetWeightKg: u.TargetWeightKg,
		WeightToday:    u.WeightToday,
	})
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		FirstName string  `json:"firstName"`
		LastName  string  `json:"lastName"`
		Age       int     `json:"age"`
		Gender    string  `json:"gender"`
		HeightCm  float64 `json:"heightCm"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.profile.UpdateProfile(r.Context(), user.Email, domain.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
		Gender:    req.Gender,
		HeightCm:  req.HeightCm,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGoalsUpdate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		StepsGoal      int     `json:"stepsGoal"`
		CaloriesGoal   int     `json:"caloriesGoal"`
		TargetWeightKg float64 `json:"targetWeightKg"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.profile.UpdateGoals(r.Context(), user.Email, req.StepsGoal, req.CaloriesGoal, req.TargetWeightKg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWeightRecord(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		WeightKg float64 `json:"weightKg"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.profile.RecordWeight(r.Context(), user.Email, req.WeightKg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
