package mcp

import (
	"fmt"

	dErrors "intentions/pkg/domain-errors"
)

// noArgs is the argument contract of tools that take nothing.
type noArgs struct{}

// confirm renders the outcome of a delete. A miss becomes the not-found
// sentinel of the entity.
func confirm(ok bool, err error, noun string, id int64) (string, error) {
	if err != nil {
		return "", err
	}
	if !ok {
		return "", dErrors.New(dErrors.CodeNotFound, noun+" not found")
	}
	return fmt.Sprintf("%s %d deleted", noun, id), nil
}
