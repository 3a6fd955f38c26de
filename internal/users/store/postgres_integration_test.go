//go:build integration

package store

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"intentions/internal/platform/database/dbtest"
)

func TestPostgresStore(t *testing.T) {
	db := dbtest.Postgres(t)
	suite.Run(t, &StoreSuite{newStore: func(t *testing.T) userStore {
		if _, err := db.Conn().Exec("TRUNCATE users RESTART IDENTITY CASCADE"); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return NewSQL(db)
	}})
}
