package entity

import (
	"errors"

	dErrors "intentions/pkg/domain-errors"
	"intentions/pkg/platform/sentinel"
)

// StoreError maps a store error onto a domain error. Both absence sentinels
// become CodeNotFound with the given message; coded errors pass through;
// anything else is internal.
func StoreError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if IsAbsent(err) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, notFound)
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
}

// IsAbsent reports whether err is one of the store-level absence sentinels.
func IsAbsent(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrParentNotFound)
}
