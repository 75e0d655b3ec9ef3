package adapthttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fittrack/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func localDayString(t time.Time) string {
	return t.In(time.Local).Format(domain.DayFormat)
}

// dayQuery reads a YYYY-MM-DD query parameter, defaulting to today.
func dayQuery(r *http.Request, key string) (string, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return localDayString(time.Now()), nil
	}
	if _, err := time.ParseInLocation(domain.DayFormat, v, time.Local); err != nil {
		return "", fmt.Errorf("invalid %s: %q", key, v)
	}
	return v, nil
}
