// Package apidb holds all the migrations for the API database
package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the API database
var Migrations = migrate.NewMigrations()

// Migrate applies all pending migrations for the API database
func Migrate(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Println("API DB is up to date")
	} else {
		log.Printf("API DB migrated to %s\n", group)
	}
	return nil
}
