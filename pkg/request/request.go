// Package request defines the domain model for payment requests and their
// state machine.
package request

import (
	"fmt"
	"time"
)

// Status is the payment request status. The state machine is:
//
//	pending --accept--> paid     (terminal)
//	pending --reject--> rejected (terminal)
//
// cancelled is representable for a future requester-initiated cancel but no
// transition into it is implemented.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

// ParseStatus validates a status string against the closed set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPaid, StatusCancelled, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid request status %q", s)
}

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled || s == StatusRejected
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next. Only pending has outgoing edges.
func (s Status) CanTransitionTo(next Status) bool {
	if s != StatusPending {
		return false
	}
	return next.Terminal()
}

// Request is an invoice-like record asking a specific payer to send a
// specific amount. Distinct from a Payment, which records an actual
// transfer attempt.
type Request struct {
	ID int64
	// RequestID is the globally unique correlation key and the only
	// externally addressable handle for state transitions.
	RequestID        string
	RequesterAddress string
	RequesterName    string
	// PayerAddress may be empty until resolved at accept time.
	PayerAddress string
	PayerName    string
	// Amount is an integer string in the smallest token unit.
	Amount        string
	AmountInHuman string
	Memo          string
	Status        Status
	// TxHash is set exactly once, on the transition to paid.
	TxHash    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateRequest carries the fields needed to open a payment request.
type CreateRequest struct {
	RequesterAddress string `json:"requesterAddress" validate:"required"`
	RequesterName    string `json:"requesterName"`
	PayerAddress     string `json:"payerAddress"`
	PayerName        string `json:"payerName"`
	Amount           string `json:"amount" validate:"required"`
	AmountInHuman    string `json:"amountInHuman"`
	Memo             string `json:"memo"`
}

// AcceptRequest carries the accept transition parameters. The on-chain
// transfer is assumed confirmed by the caller before accept is invoked;
// the service records the outcome, it does not verify the chain.
type AcceptRequest struct {
	TxHash string `json:"txHash" validate:"required"`
	// PayerAddress optionally overwrites the request's payer, e.g. when an
	// open request is settled by a wallet other than the one it was
	// addressed to.
	PayerAddress string `json:"payerAddress"`
}
