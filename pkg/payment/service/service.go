// Package service implements the payment ledger business logic.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/greenpay/aptopay-middleware/internal/metrics"
	apperrors "github.com/greenpay/aptopay-middleware/pkg/app/errors"
	"github.com/greenpay/aptopay-middleware/pkg/payment"
	"github.com/greenpay/aptopay-middleware/pkg/paymentstore"
	"github.com/greenpay/aptopay-middleware/pkg/token"
	"github.com/greenpay/aptopay-middleware/pkg/wallet"
)

// Store is the narrow data-access interface for the payment service.
// Defined here to keep the service decoupled from paymentstore implementation details.
type Store interface {
	CreatePayment(ctx context.Context, p *payment.Payment) (*payment.Payment, error)
	ListPaymentsByAddress(ctx context.Context, address string) ([]*payment.Payment, error)
	UpdateStatusByID(ctx context.Context, id int64, status payment.Status, txHash string) (*payment.Payment, error)
	UpdateStatusByHash(ctx context.Context, txHash string, status payment.Status) (*payment.Payment, error)
}

// Service defines the interface for the payment ledger business logic
type Service interface {
	// Record appends a payment attempt to the ledger. Failed and pending
	// attempts are recorded the same way as completed ones.
	Record(ctx context.Context, req *payment.RecordRequest) (*payment.Payment, error)
	// List returns the payment history of an address, as sender or receiver,
	// newest first.
	List(ctx context.Context, address string) ([]*payment.Payment, error)
	// UpdateStatusByID moves a payment to a new status, optionally attaching
	// the transaction hash once known.
	UpdateStatusByID(ctx context.Context, req *payment.UpdateStatusByIDRequest) (*payment.Payment, error)
	// UpdateStatusByHash moves the payment carrying the given transaction
	// hash to a new status.
	UpdateStatusByHash(ctx context.Context, req *payment.UpdateStatusByHashRequest) (*payment.Payment, error)
}

type paymentService struct {
	store    Store
	validate *validator.Validate
	decimals int
	logger   *zap.Logger
}

// NewService creates a new payment ledger service
func NewService(store Store, decimals int, logger *zap.Logger) Service {
	return &paymentService{
		store:    store,
		validate: validator.New(),
		decimals: decimals,
		logger:   logger,
	}
}

func (s *paymentService) Record(ctx context.Context, req *payment.RecordRequest) (*payment.Payment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "missing required fields")
	}

	status, err := payment.ParseStatus(req.Status)
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}

	sender, err := normalizeAddr(req.SenderAddress)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid senderAddress")
	}
	receiver, err := normalizeAddr(req.ReceiverAddress)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid receiverAddress")
	}

	if err := token.ValidateUnits(req.Amount); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid amount")
	}

	// The display amount is denormalized at write time so reads never
	// depend on the conversion factor in effect when the row was written.
	amountInHuman := req.AmountInHuman
	if amountInHuman == "" {
		amountInHuman, err = token.UnitsToHuman(req.Amount, s.decimals)
		if err != nil {
			return nil, apperrors.BadRequestError(err, "invalid amount")
		}
	}

	p := &payment.Payment{
		SenderAddress:       sender,
		SenderName:          req.SenderName,
		ReceiverAddress:     receiver,
		ReceiverName:        req.ReceiverName,
		Amount:              req.Amount,
		AmountInHuman:       amountInHuman,
		TransactionHash:     req.TransactionHash,
		Status:              status,
		ExpirationTimestamp: req.ExpirationTimestamp,
	}

	created, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to record payment: %w", err))
	}

	metrics.PaymentsRecorded.WithLabelValues(string(status)).Inc()
	return created, nil
}

func (s *paymentService) List(ctx context.Context, address string) ([]*payment.Payment, error) {
	addr, err := normalizeAddr(address)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid address")
	}

	payments, err := s.store.ListPaymentsByAddress(ctx, addr)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to list payments: %w", err))
	}

	// Rows written before display amounts were denormalized have no
	// amountInHuman; derive it on the way out.
	for _, p := range payments {
		if p.AmountInHuman == "" {
			if human, convErr := token.UnitsToHuman(p.Amount, s.decimals); convErr == nil {
				p.AmountInHuman = human
			}
		}
	}

	return payments, nil
}

func (s *paymentService) UpdateStatusByID(ctx context.Context, req *payment.UpdateStatusByIDRequest) (*payment.Payment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "missing required fields")
	}

	status, err := payment.ParseStatus(req.Status)
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}

	updated, err := s.store.UpdateStatusByID(ctx, req.PaymentID, status, req.TransactionHash)
	if err != nil {
		if errors.Is(err, paymentstore.ErrPaymentNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "payment not found")
		}
		return nil, apperrors.GeneralError(fmt.Errorf("failed to update payment %d: %w", req.PaymentID, err))
	}

	metrics.PaymentStatusUpdates.WithLabelValues("id", string(status)).Inc()
	return updated, nil
}

func (s *paymentService) UpdateStatusByHash(ctx context.Context, req *payment.UpdateStatusByHashRequest) (*payment.Payment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "missing required fields")
	}

	status, err := payment.ParseStatus(req.Status)
	if err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}

	updated, err := s.store.UpdateStatusByHash(ctx, req.TransactionHash, status)
	if err != nil {
		switch {
		case errors.Is(err, paymentstore.ErrPaymentNotFound):
			return nil, apperrors.ResourceNotFoundError(err, "payment not found")
		case errors.Is(err, paymentstore.ErrAmbiguousHash):
			return nil, apperrors.ConflictError(err, "transaction hash matches more than one payment")
		}
		return nil, apperrors.GeneralError(fmt.Errorf("failed to update payment by hash: %w", err))
	}

	metrics.PaymentStatusUpdates.WithLabelValues("hash", string(status)).Inc()
	return updated, nil
}

func normalizeAddr(addr string) (string, error) {
	normalized := wallet.NormalizeAddress(addr)
	if err := wallet.ValidateAddress(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
