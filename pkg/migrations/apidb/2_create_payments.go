package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/greenpay/aptopay-middleware/pkg/paymentstore"
	mghelper "github.com/greenpay/aptopay-middleware/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating payments table...")
		if err := mghelper.CreateSchema(ctx, db, &paymentstore.PaymentDao{}); err != nil {
			return err
		}
		// Create indexes
		if err := mghelper.CreateModelIndexes(ctx, db, &paymentstore.PaymentDao{}, "sender_address", "receiver_address", "status"); err != nil {
			return err
		}
		// A hash identifies at most one settled payment. Recorded payments may
		// not carry a hash yet, hence the partial index.
		_, err := db.ExecContext(ctx,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_transaction_hash
			 ON payments (transaction_hash) WHERE transaction_hash IS NOT NULL`)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping payments table...")
		return mghelper.DropTables(ctx, db, &paymentstore.PaymentDao{})
	})
}
