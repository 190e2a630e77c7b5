package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/greenpay/aptopay-middleware/pkg/pgutil/migrations"
	"github.com/greenpay/aptopay-middleware/pkg/requeststore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating requests table...")
		if err := mghelper.CreateSchema(ctx, db, &requeststore.RequestDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &requeststore.RequestDao{}, "payer_address", "requester_address", "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping requests table...")
		return mghelper.DropTables(ctx, db, &requeststore.RequestDao{})
	})
}
