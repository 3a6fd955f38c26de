// Package store persists V2 intents and the records they own, in memory or
// in a relational database.
package store

import (
	"fmt"

	"intentions/internal/intentsv2/models"
)

func errUnknownKind(k models.Kind) error {
	return fmt.Errorf("unknown articulation kind %q", string(k))
}
