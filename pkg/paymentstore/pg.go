package paymentstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/greenpay/aptopay-middleware/pkg/payment"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the payment store.
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreatePayment(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	return Insert(ctx, s.db, p)
}

// Insert writes a payment row using the given bun.IDB, which may be a
// transaction. The request store uses this to insert the settlement payment
// inside the accept transaction.
func Insert(ctx context.Context, db bun.IDB, p *payment.Payment) (*payment.Payment, error) {
	dao := toPaymentDao(p)
	dao.ID = 0

	_, err := db.NewInsert().
		Model(dao).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return toPayment(dao), nil
}

func (s *pgStore) GetPaymentByID(ctx context.Context, id int64) (*payment.Payment, error) {
	dao := new(PaymentDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return toPayment(dao), nil
}

func (s *pgStore) ListPaymentsByAddress(ctx context.Context, address string) ([]*payment.Payment, error) {
	var daos []PaymentDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("sender_address = ? OR receiver_address = ?", address, address).
		Order("created_at DESC").
		Order("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	payments := make([]*payment.Payment, len(daos))
	for i := range daos {
		payments[i] = toPayment(&daos[i])
	}
	return payments, nil
}

func (s *pgStore) UpdateStatusByID(ctx context.Context, id int64, status payment.Status, txHash string) (*payment.Payment, error) {
	dao := new(PaymentDao)
	q := s.db.NewUpdate().
		Model(dao).
		Set("status = ?", string(status)).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*")
	if txHash != "" {
		q = q.Set("transaction_hash = ?", txHash)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return nil, ErrPaymentNotFound
	}

	return toPayment(dao), nil
}

func (s *pgStore) UpdateStatusByHash(ctx context.Context, txHash string, status payment.Status) (*payment.Payment, error) {
	// Hash updates must hit exactly one record. The partial unique index on
	// transaction_hash enforces this for new data; the count guards legacy
	// duplicates.
	count, err := s.db.NewSelect().
		Model((*PaymentDao)(nil)).
		Where("transaction_hash = ?", txHash).
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count payments by hash: %w", err)
	}
	if count == 0 {
		return nil, ErrPaymentNotFound
	}
	if count > 1 {
		return nil, ErrAmbiguousHash
	}

	dao := new(PaymentDao)
	_, err = s.db.NewUpdate().
		Model(dao).
		Set("status = ?", string(status)).
		Set("updated_at = NOW()").
		Where("transaction_hash = ?", txHash).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status by hash: %w", err)
	}

	return toPayment(dao), nil
}

func (s *pgStore) ExistsByHash(ctx context.Context, txHash string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*PaymentDao)(nil)).
		Where("transaction_hash = ?", txHash).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check payment by hash: %w", err)
	}
	return exists, nil
}

func (s *pgStore) ListPendingWithHash(ctx context.Context, limit int) ([]*payment.Payment, error) {
	var daos []PaymentDao
	q := s.db.NewSelect().
		Model(&daos).
		Where("status = ?", string(payment.StatusPending)).
		Where("transaction_hash IS NOT NULL").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list pending payments: %w", err)
	}

	payments := make([]*payment.Payment, len(daos))
	for i := range daos {
		payments[i] = toPayment(&daos[i])
	}
	return payments, nil
}
