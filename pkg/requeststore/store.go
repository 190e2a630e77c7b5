// Package requeststore persists payment requests and owns their transition
// primitives. Transitions are conditional updates so concurrent accept and
// reject on the same request resolve to exactly one winner regardless of how
// many server instances run.
package requeststore

import (
	"context"
	"errors"

	"github.com/greenpay/aptopay-middleware/pkg/payment"
	"github.com/greenpay/aptopay-middleware/pkg/request"
)

// ErrRequestNotFound is returned when a request lookup finds no matching record.
var ErrRequestNotFound = errors.New("request not found")

// ErrAlreadyTerminal is returned when a transition targets a request that
// already reached a terminal state. Terminal requests are immutable.
var ErrAlreadyTerminal = errors.New("request already in a terminal state")

// Store defines the interface for payment request persistence.
type Store interface {
	CreateRequest(ctx context.Context, r *request.Request) (*request.Request, error)
	GetByRequestID(ctx context.Context, requestID string) (*request.Request, error)
	// List returns requests matching the options, newest first.
	List(ctx context.Context, opts ...QueryOption) ([]*request.Request, error)
	// Accept atomically transitions a pending request to paid and inserts
	// the settlement payment built from the post-transition request. Both
	// writes happen in one storage transaction; a crash cannot leave a paid
	// request without its ledger entry.
	Accept(ctx context.Context, requestID, txHash, payerAddress string,
		buildPayment func(*request.Request) *payment.Payment) (*request.Request, *payment.Payment, error)
	// Transition moves a pending request to the given terminal status.
	// Fails with ErrAlreadyTerminal when the request is no longer pending.
	Transition(ctx context.Context, requestID string, to request.Status) (*request.Request, error)
	// ListPaidWithoutPayment returns paid requests whose tx hash has no
	// payment ledger entry, oldest first, for the reconciler.
	ListPaidWithoutPayment(ctx context.Context, limit int) ([]*request.Request, error)
}

// QueryOptions defines options for querying requests.
type QueryOptions struct {
	PayerAddress     *string
	RequesterAddress *string
	Status           *request.Status
}

// QueryOption is a functional option for querying requests.
type QueryOption func(*QueryOptions)

// WithPayerAddress filters on the payer (incoming requests view).
func WithPayerAddress(address string) QueryOption {
	return func(opts *QueryOptions) {
		opts.PayerAddress = &address
	}
}

// WithRequesterAddress filters on the requester (outgoing requests view).
func WithRequesterAddress(address string) QueryOption {
	return func(opts *QueryOptions) {
		opts.RequesterAddress = &address
	}
}

// WithStatus filters on the request status.
func WithStatus(status request.Status) QueryOption {
	return func(opts *QueryOptions) {
		opts.Status = &status
	}
}
