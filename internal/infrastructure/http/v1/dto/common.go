// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"fmt"
	"strings"
	"time"

	"retailops/internal/core/id"
)

// PaginationRequest contains pagination parameters.
// Zero values fall back to the domain defaults.
type PaginationRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

const dateLayout = "2006-01-02"

// ParseDateBound parses a query date. Accepted forms are RFC 3339 and
// YYYY-MM-DD; a bare date means the start of that day in loc, or its
// last instant when endOfDay is set.
func ParseDateBound(value string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", value)
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	return &day, nil
}

func optionalID(field, value string) (*id.ID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	v, err := id.ParseField(field, value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
