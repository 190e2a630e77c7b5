// Package payment defines the domain model for the payment history ledger.
package payment

import (
	"fmt"
	"time"
)

// Status is the canonical payment status. Every call site uses this one
// closed set; free-form status strings are rejected at the boundary.
type Status string

const (
	// StatusPending marks a transfer submitted to the chain but not yet
	// confirmed, or an escrowed transfer awaiting claim.
	StatusPending Status = "pending"
	// StatusCompleted marks a confirmed transfer.
	StatusCompleted Status = "completed"
	// StatusFailed marks a transfer that failed, on chain or before
	// submission. Failed attempts are persisted so failure stays visible
	// in history.
	StatusFailed Status = "failed"
	// StatusExpired marks an escrowed transfer whose claim window lapsed.
	StatusExpired Status = "expired"
)

// ParseStatus validates a status string against the canonical set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusFailed, StatusExpired:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid payment status %q", s)
}

// Payment is one record in the append-only transfer ledger. A record is
// created for every payment attempt, successful or not, regardless of
// whether it originated from a direct send or a fulfilled request.
type Payment struct {
	ID              int64
	SenderAddress   string
	SenderName      string
	ReceiverAddress string
	ReceiverName    string
	// Amount is an integer string in the smallest token unit.
	Amount string
	// AmountInHuman is the denormalized display amount. May be empty on
	// old records; readers derive it from Amount with the token's
	// conversion factor.
	AmountInHuman string
	// TransactionHash is empty for attempts that failed before submission.
	TransactionHash string
	Status          Status
	// ExpirationTimestamp is epoch seconds; zero for instant transfers,
	// set only for escrowed sends.
	ExpirationTimestamp int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RecordRequest carries the fields needed to record a payment attempt.
type RecordRequest struct {
	SenderAddress   string `json:"senderAddress" validate:"required"`
	SenderName      string `json:"senderName"`
	ReceiverAddress string `json:"receiverAddress" validate:"required"`
	ReceiverName    string `json:"receiverName"`
	Amount          string `json:"amount" validate:"required"`
	AmountInHuman   string `json:"amountInHuman"`
	TransactionHash string `json:"transactionHash"`
	Status          string `json:"status" validate:"required"`
	// ExpirationTimestamp is optional; only escrowed sends set it.
	ExpirationTimestamp int64 `json:"expirationTimestamp"`
}

// UpdateStatusByIDRequest updates a payment selected by its internal id.
type UpdateStatusByIDRequest struct {
	PaymentID int64  `json:"paymentId" validate:"required"`
	Status    string `json:"status" validate:"required"`
	// TransactionHash optionally attaches the hash once known, e.g. when a
	// pre-submission pending record is later submitted.
	TransactionHash string `json:"transactionHash"`
}

// UpdateStatusByHashRequest updates a payment selected by transaction hash.
type UpdateStatusByHashRequest struct {
	TransactionHash string `json:"transactionHash" validate:"required"`
	Status          string `json:"status" validate:"required"`
}
