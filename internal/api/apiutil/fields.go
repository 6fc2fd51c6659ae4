package apiutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

// PathID reads the {id} path value as a positive integer.
func PathID(r *http.Request) (int64, error) {
	id, err := ParsePositiveInt64Field(r.PathValue("id"), "id")
	if err != nil {
		return 0, FieldError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

// ParseTimestamp accepts RFC 3339 timestamps and plain dates. Plain dates are
// midnight UTC.
func ParseTimestamp(raw string, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, FieldError{Field: field, Reason: "is required"}
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		parsed, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, FieldError{Field: field, Reason: "must be a valid date"}
}

// ParseOptionalTimestamp is ParseTimestamp for optional fields: nil or blank
// input yields nil.
func ParseOptionalTimestamp(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := ParseTimestamp(*raw, field)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// ParseRangeEnd parses the upper bound of an inclusive date range. A plain date
// covers the whole day.
func ParseRangeEnd(raw string, field string) (time.Time, error) {
	parsed, err := ParseTimestamp(raw, field)
	if err != nil {
		return time.Time{}, err
	}
	if _, dateErr := time.Parse("2006-01-02", strings.TrimSpace(raw)); dateErr == nil {
		return parsed.Add(24*time.Hour - time.Nanosecond), nil
	}
	return parsed, nil
}

// OptionalID is a nullable id field that remembers whether it was present in
// the request body. Set with a nil Value means an explicit null.
type OptionalID struct {
	Set   bool
	Value *int64
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// OptionalString is the string counterpart of OptionalID.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Cleared reports an explicit null.
func (o OptionalString) Cleared() bool {
	return o.Set && o.Value == nil
}
