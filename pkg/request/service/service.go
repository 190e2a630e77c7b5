// Package service implements the payment request lifecycle business logic.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/greenpay/aptopay-middleware/internal/metrics"
	apperrors "github.com/greenpay/aptopay-middleware/pkg/app/errors"
	"github.com/greenpay/aptopay-middleware/pkg/payment"
	"github.com/greenpay/aptopay-middleware/pkg/request"
	"github.com/greenpay/aptopay-middleware/pkg/requeststore"
	"github.com/greenpay/aptopay-middleware/pkg/token"
	"github.com/greenpay/aptopay-middleware/pkg/wallet"
)

// Store is the narrow data-access interface for the request service.
// Defined here to keep the service decoupled from requeststore implementation details.
type Store interface {
	CreateRequest(ctx context.Context, r *request.Request) (*request.Request, error)
	List(ctx context.Context, opts ...requeststore.QueryOption) ([]*request.Request, error)
	Accept(ctx context.Context, requestID, txHash, payerAddress string,
		buildPayment func(*request.Request) *payment.Payment) (*request.Request, *payment.Payment, error)
	Transition(ctx context.Context, requestID string, to request.Status) (*request.Request, error)
}

// Notifier emits reward attribution events after settlements.
type Notifier interface {
	EmitPaymentCompleted(walletAddress string, metadata map[string]any)
}

// Service defines the interface for the payment request lifecycle
type Service interface {
	// Create opens a new pending request addressed to a payer.
	Create(ctx context.Context, req *request.CreateRequest) (*request.Request, error)
	// List returns requests filtered by payer (incoming) or requester
	// (outgoing), newest first. At least one filter is required.
	List(ctx context.Context, payerAddress, requesterAddress string) ([]*request.Request, error)
	// Accept settles a pending request: the request flips to paid and the
	// settlement payment is written in the same storage transaction. The
	// on-chain transfer is the caller's responsibility and is not verified.
	Accept(ctx context.Context, requestID string, req *request.AcceptRequest) (*request.Request, *payment.Payment, error)
	// Reject declines a pending request.
	Reject(ctx context.Context, requestID string) (*request.Request, error)
}

type requestService struct {
	store    Store
	notifier Notifier
	validate *validator.Validate
	decimals int
	logger   *zap.Logger
}

// NewService creates a new request lifecycle service. The notifier may be nil
// when reward emission is disabled.
func NewService(store Store, notifier Notifier, decimals int, logger *zap.Logger) Service {
	return &requestService{
		store:    store,
		notifier: notifier,
		validate: validator.New(),
		decimals: decimals,
		logger:   logger,
	}
}

func (s *requestService) Create(ctx context.Context, req *request.CreateRequest) (*request.Request, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "missing required fields")
	}

	requester, err := normalizeAddr(req.RequesterAddress)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid requesterAddress")
	}

	payer := ""
	if req.PayerAddress != "" {
		payer, err = normalizeAddr(req.PayerAddress)
		if err != nil {
			return nil, apperrors.BadRequestError(err, "invalid payerAddress")
		}
	}

	if err := token.ValidateUnits(req.Amount); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid amount")
	}

	amountInHuman := req.AmountInHuman
	if amountInHuman == "" {
		amountInHuman, err = token.UnitsToHuman(req.Amount, s.decimals)
		if err != nil {
			return nil, apperrors.BadRequestError(err, "invalid amount")
		}
	}

	r := &request.Request{
		RequestID:        uuid.NewString(),
		RequesterAddress: requester,
		RequesterName:    req.RequesterName,
		PayerAddress:     payer,
		PayerName:        req.PayerName,
		Amount:           req.Amount,
		AmountInHuman:    amountInHuman,
		Memo:             req.Memo,
		Status:           request.StatusPending,
	}

	created, err := s.store.CreateRequest(ctx, r)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to create request: %w", err))
	}

	metrics.RequestTransitions.WithLabelValues(string(request.StatusPending)).Inc()
	return created, nil
}

func (s *requestService) List(ctx context.Context, payerAddress, requesterAddress string) ([]*request.Request, error) {
	if payerAddress == "" && requesterAddress == "" {
		return nil, apperrors.BadRequestError(nil, "payerAddress or requesterAddress is required")
	}

	var opts []requeststore.QueryOption
	if payerAddress != "" {
		addr, err := normalizeAddr(payerAddress)
		if err != nil {
			return nil, apperrors.BadRequestError(err, "invalid payerAddress")
		}
		opts = append(opts, requeststore.WithPayerAddress(addr))
	}
	if requesterAddress != "" {
		addr, err := normalizeAddr(requesterAddress)
		if err != nil {
			return nil, apperrors.BadRequestError(err, "invalid requesterAddress")
		}
		opts = append(opts, requeststore.WithRequesterAddress(addr))
	}

	requests, err := s.store.List(ctx, opts...)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to list requests: %w", err))
	}

	for _, r := range requests {
		if r.AmountInHuman == "" {
			if human, convErr := token.UnitsToHuman(r.Amount, s.decimals); convErr == nil {
				r.AmountInHuman = human
			}
		}
	}

	return requests, nil
}

func (s *requestService) Accept(ctx context.Context, requestID string, req *request.AcceptRequest) (*request.Request, *payment.Payment, error) {
	if requestID == "" {
		return nil, nil, apperrors.BadRequestError(nil, "request id is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, nil, apperrors.BadRequestError(err, "txHash is required")
	}

	payerOverride := ""
	if req.PayerAddress != "" {
		var err error
		payerOverride, err = normalizeAddr(req.PayerAddress)
		if err != nil {
			return nil, nil, apperrors.BadRequestError(err, "invalid payerAddress")
		}
	}

	updated, settled, err := s.store.Accept(ctx, requestID, req.TxHash, payerOverride, s.buildSettlementPayment)
	if err != nil {
		return nil, nil, mapTransitionError(requestID, err)
	}

	metrics.RequestTransitions.WithLabelValues(string(request.StatusPaid)).Inc()

	if s.notifier != nil && updated.PayerAddress != "" {
		s.notifier.EmitPaymentCompleted(updated.PayerAddress, map[string]any{
			"requestId": updated.RequestID,
			"amount":    updated.Amount,
			"txHash":    updated.TxHash,
		})
	}

	return updated, settled, nil
}

func (s *requestService) Reject(ctx context.Context, requestID string) (*request.Request, error) {
	if requestID == "" {
		return nil, apperrors.BadRequestError(nil, "request id is required")
	}

	updated, err := s.store.Transition(ctx, requestID, request.StatusRejected)
	if err != nil {
		return nil, mapTransitionError(requestID, err)
	}

	metrics.RequestTransitions.WithLabelValues(string(request.StatusRejected)).Inc()
	return updated, nil
}

// buildSettlementPayment derives the ledger entry for a settled request. The
// amount is carried over verbatim; the payment is completed immediately since
// accept is only called after the on-chain transfer confirmed.
func (s *requestService) buildSettlementPayment(r *request.Request) *payment.Payment {
	amountInHuman := r.AmountInHuman
	if amountInHuman == "" {
		if human, err := token.UnitsToHuman(r.Amount, s.decimals); err == nil {
			amountInHuman = human
		}
	}

	return &payment.Payment{
		SenderAddress:   r.PayerAddress,
		SenderName:      r.PayerName,
		ReceiverAddress: r.RequesterAddress,
		ReceiverName:    r.RequesterName,
		Amount:          r.Amount,
		AmountInHuman:   amountInHuman,
		TransactionHash: r.TxHash,
		Status:          payment.StatusCompleted,
	}
}

func mapTransitionError(requestID string, err error) error {
	switch {
	case errors.Is(err, requeststore.ErrRequestNotFound):
		return apperrors.ResourceNotFoundError(err, "request not found")
	case errors.Is(err, requeststore.ErrAlreadyTerminal):
		return apperrors.ConflictError(err, "request already in a terminal state")
	}
	return apperrors.GeneralError(fmt.Errorf("failed to transition request %s: %w", requestID, err))
}

func normalizeAddr(addr string) (string, error) {
	normalized := wallet.NormalizeAddress(addr)
	if err := wallet.ValidateAddress(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
