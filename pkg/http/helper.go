package http

import (
	"net/http"
	"strconv"
	"time"

	apperrors "roombook/pkg/errors"
)

// ExtractTime reads a required RFC3339 query parameter.
func ExtractTime(r *http.Request, name string) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return time.Time{}, apperrors.InvalidInput("missing " + name + " parameter")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + name + " parameter, expected RFC3339: " + s)
	}
	return t, nil
}

// ExtractMinutes reads a required positive whole-minute query parameter.
func ExtractMinutes(r *http.Request, name string) (time.Duration, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, apperrors.InvalidInput("missing " + name + " parameter")
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return time.Duration(v) * time.Minute, nil
}
