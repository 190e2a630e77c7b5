package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/greenpay/aptopay-middleware/pkg/pgutil/migrations"
	"github.com/greenpay/aptopay-middleware/pkg/userstore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating users table...")
		return mghelper.CreateSchema(ctx, db, &userstore.UserDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping users table...")
		return mghelper.DropTables(ctx, db, &userstore.UserDao{})
	})
}
