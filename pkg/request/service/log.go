package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/greenpay/aptopay-middleware/pkg/payment"
	"github.com/greenpay/aptopay-middleware/pkg/request"
)

const serviceName = "RequestService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the request Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) Create(ctx context.Context, req *request.CreateRequest) (r *request.Request, err error) {
	start := time.Now()

	ls.logger.Info("Create started",
		zap.String("service", serviceName),
		zap.String("requester", req.RequesterAddress),
		zap.String("payer", req.PayerAddress),
		zap.String("amount", req.Amount),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Create failed",
				zap.String("service", serviceName),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Create completed",
				zap.String("service", serviceName),
				zap.String("request_id", r.RequestID),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Create(ctx, req)
}

func (ls *logService) List(ctx context.Context, payerAddress, requesterAddress string) (requests []*request.Request, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("List failed",
				zap.String("service", serviceName),
				zap.String("payer", payerAddress),
				zap.String("requester", requesterAddress),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Debug("List completed",
				zap.String("service", serviceName),
				zap.String("payer", payerAddress),
				zap.String("requester", requesterAddress),
				zap.Int("count", len(requests)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.List(ctx, payerAddress, requesterAddress)
}

func (ls *logService) Accept(ctx context.Context, requestID string, req *request.AcceptRequest) (r *request.Request, p *payment.Payment, err error) {
	start := time.Now()

	ls.logger.Info("Accept started",
		zap.String("service", serviceName),
		zap.String("request_id", requestID),
		zap.String("tx_hash", req.TxHash),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Accept failed",
				zap.String("service", serviceName),
				zap.String("request_id", requestID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Accept completed",
				zap.String("service", serviceName),
				zap.String("request_id", requestID),
				zap.Int64("payment_id", p.ID),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Accept(ctx, requestID, req)
}

func (ls *logService) Reject(ctx context.Context, requestID string) (r *request.Request, err error) {
	start := time.Now()

	ls.logger.Info("Reject started",
		zap.String("service", serviceName),
		zap.String("request_id", requestID),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Reject failed",
				zap.String("service", serviceName),
				zap.String("request_id", requestID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Reject completed",
				zap.String("service", serviceName),
				zap.String("request_id", requestID),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Reject(ctx, requestID)
}
