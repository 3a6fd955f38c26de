package entity

import (
	"slices"
	"strings"

	dErrors "intentions/pkg/domain-errors"
)

// Required trims v and rejects it when nothing is left.
func Required(field, label, v string) (string, error) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return "", dErrors.Validation(field, label+" cannot be empty")
	}
	return trimmed, nil
}

// Optional trims v; empty after trimming collapses to nil.
func Optional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// OneOf checks that v is one of allowed.
func OneOf(field, v string, allowed ...string) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return dErrors.Validation(field, field+" must be one of: "+strings.Join(allowed, ", "))
}

// NonNegative rejects negative amounts.
func NonNegative(field string, v float64) error {
	if v < 0 {
		return dErrors.Validation(field, field+" must not be negative")
	}
	return nil
}

// CloneString copies an optional string so clones never share storage.
func CloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// CloneID copies an optional reference id.
func CloneID(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
