package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/greenpay/aptopay-middleware/pkg/payment"
)

const serviceName = "PaymentService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the payment Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) Record(ctx context.Context, req *payment.RecordRequest) (p *payment.Payment, err error) {
	start := time.Now()

	ls.logger.Info("Record started",
		zap.String("service", serviceName),
		zap.String("sender", req.SenderAddress),
		zap.String("receiver", req.ReceiverAddress),
		zap.String("amount", req.Amount),
		zap.String("status", req.Status),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Record failed",
				zap.String("service", serviceName),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Record completed",
				zap.String("service", serviceName),
				zap.Int64("payment_id", p.ID),
				zap.String("status", string(p.Status)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Record(ctx, req)
}

func (ls *logService) List(ctx context.Context, address string) (payments []*payment.Payment, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("List failed",
				zap.String("service", serviceName),
				zap.String("address", address),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Debug("List completed",
				zap.String("service", serviceName),
				zap.String("address", address),
				zap.Int("count", len(payments)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.List(ctx, address)
}

func (ls *logService) UpdateStatusByID(ctx context.Context, req *payment.UpdateStatusByIDRequest) (p *payment.Payment, err error) {
	start := time.Now()

	ls.logger.Info("UpdateStatusByID started",
		zap.String("service", serviceName),
		zap.Int64("payment_id", req.PaymentID),
		zap.String("status", req.Status),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("UpdateStatusByID failed",
				zap.String("service", serviceName),
				zap.Int64("payment_id", req.PaymentID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("UpdateStatusByID completed",
				zap.String("service", serviceName),
				zap.Int64("payment_id", p.ID),
				zap.String("status", string(p.Status)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.UpdateStatusByID(ctx, req)
}

func (ls *logService) UpdateStatusByHash(ctx context.Context, req *payment.UpdateStatusByHashRequest) (p *payment.Payment, err error) {
	start := time.Now()

	ls.logger.Info("UpdateStatusByHash started",
		zap.String("service", serviceName),
		zap.String("transaction_hash", req.TransactionHash),
		zap.String("status", req.Status),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("UpdateStatusByHash failed",
				zap.String("service", serviceName),
				zap.String("transaction_hash", req.TransactionHash),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("UpdateStatusByHash completed",
				zap.String("service", serviceName),
				zap.Int64("payment_id", p.ID),
				zap.String("status", string(p.Status)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.UpdateStatusByHash(ctx, req)
}
