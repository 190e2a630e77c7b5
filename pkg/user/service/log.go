package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/greenpay/aptopay-middleware/pkg/user"
)

const serviceName = "UserService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the user registry Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) Register(ctx context.Context, req *user.RegisterRequest) (u *user.User, err error) {
	start := time.Now()

	ls.logger.Info("Register started",
		zap.String("service", serviceName),
		zap.String("wallet_address", req.WalletAddress),
		zap.String("name", req.Name),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Register failed",
				zap.String("service", serviceName),
				zap.String("name", req.Name),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Register completed",
				zap.String("service", serviceName),
				zap.String("wallet_address", u.WalletAddress),
				zap.String("name", u.Name),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Register(ctx, req)
}

func (ls *logService) GetByName(ctx context.Context, name string) (u *user.User, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Warn("GetByName failed",
				zap.String("service", serviceName),
				zap.String("name", name),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Debug("GetByName completed",
				zap.String("service", serviceName),
				zap.String("name", name),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.GetByName(ctx, name)
}

func (ls *logService) List(ctx context.Context) (users []*user.User, err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("List failed",
				zap.String("service", serviceName),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Debug("List completed",
				zap.String("service", serviceName),
				zap.Int("count", len(users)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.List(ctx)
}
