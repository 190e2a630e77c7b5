// Package paymentstore persists the payment history ledger.
package paymentstore

import (
	"context"
	"errors"

	"github.com/greenpay/aptopay-middleware/pkg/payment"
)

// ErrPaymentNotFound is returned when a payment lookup finds no matching record.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrAmbiguousHash is returned when an update by transaction hash would match
// more than one record. Hash updates must affect exactly one payment.
var ErrAmbiguousHash = errors.New("transaction hash matches more than one payment")

// Store defines the interface for payment ledger persistence.
type Store interface {
	CreatePayment(ctx context.Context, p *payment.Payment) (*payment.Payment, error)
	GetPaymentByID(ctx context.Context, id int64) (*payment.Payment, error)
	// ListPaymentsByAddress returns every payment where the address equals
	// sender or receiver, newest first. Addresses are matched as stored
	// (lowercase).
	ListPaymentsByAddress(ctx context.Context, address string) ([]*payment.Payment, error)
	// UpdateStatusByID sets the status and, when txHash is non-empty, the
	// transaction hash of the payment with the given internal id.
	UpdateStatusByID(ctx context.Context, id int64, status payment.Status, txHash string) (*payment.Payment, error)
	// UpdateStatusByHash sets the status of the single payment carrying the
	// given transaction hash. Fails with ErrAmbiguousHash when the hash is
	// not unique.
	UpdateStatusByHash(ctx context.Context, txHash string, status payment.Status) (*payment.Payment, error)
	// ExistsByHash reports whether any payment carries the transaction hash.
	ExistsByHash(ctx context.Context, txHash string) (bool, error)
	// ListPendingWithHash returns payments stuck in pending that carry a
	// transaction hash, oldest first, for the reconciler to resolve.
	ListPendingWithHash(ctx context.Context, limit int) ([]*payment.Payment, error)
}
