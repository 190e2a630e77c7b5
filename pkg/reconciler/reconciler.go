// Package reconciler repairs the payment ledger in the background. It closes
// two gaps: paid requests whose settlement payment never made it into the
// ledger, and pending payments whose on-chain outcome was never recorded.
package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/greenpay/aptopay-middleware/internal/metrics"
	"github.com/greenpay/aptopay-middleware/pkg/aptos"
	"github.com/greenpay/aptopay-middleware/pkg/payment"
	"github.com/greenpay/aptopay-middleware/pkg/request"
)

// repairBatchSize bounds how many records one pass touches per category.
const repairBatchSize = 100

// PaymentStore provides the ledger operations needed for reconciliation.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p *payment.Payment) (*payment.Payment, error)
	ExistsByHash(ctx context.Context, txHash string) (bool, error)
	UpdateStatusByHash(ctx context.Context, txHash string, status payment.Status) (*payment.Payment, error)
	ListPendingWithHash(ctx context.Context, limit int) ([]*payment.Payment, error)
}

// RequestStore provides the request operations needed for reconciliation.
type RequestStore interface {
	ListPaidWithoutPayment(ctx context.Context, limit int) ([]*request.Request, error)
}

// Reconciler periodically repairs ledger state.
type Reconciler struct {
	payments PaymentStore
	requests RequestStore
	chain    aptos.Client
	logger   *zap.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a new Reconciler. chain may be nil, which disables on-chain
// resolution of pending payments and keeps only the ledger backfill.
func New(payments PaymentStore, requests RequestStore, chain aptos.Client, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		payments: payments,
		requests: requests,
		chain:    chain,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// ReconcileAll runs one full reconciliation pass.
func (r *Reconciler) ReconcileAll(ctx context.Context) error {
	r.logger.Info("Starting ledger reconciliation")
	start := time.Now()

	backfilled, err := r.backfillPaidRequests(ctx)
	if err != nil {
		metrics.ReconcilerRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to backfill paid requests: %w", err)
	}

	resolved, err := r.resolvePendingPayments(ctx)
	if err != nil {
		metrics.ReconcilerRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to resolve pending payments: %w", err)
	}

	metrics.ReconcilerRuns.WithLabelValues("ok").Inc()
	r.logger.Info("Ledger reconciliation completed",
		zap.Int("payments_backfilled", backfilled),
		zap.Int("payments_resolved", resolved),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// backfillPaidRequests reinserts the settlement payment for paid requests
// whose transaction hash has no ledger entry.
func (r *Reconciler) backfillPaidRequests(ctx context.Context) (int, error) {
	orphaned, err := r.requests.ListPaidWithoutPayment(ctx, repairBatchSize)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, req := range orphaned {
		// ListPaidWithoutPayment races against concurrent accepts; re-check
		// before inserting.
		exists, err := r.payments.ExistsByHash(ctx, req.TxHash)
		if err != nil {
			return repaired, err
		}
		if exists {
			continue
		}

		_, err = r.payments.CreatePayment(ctx, &payment.Payment{
			SenderAddress:   req.PayerAddress,
			SenderName:      req.PayerName,
			ReceiverAddress: req.RequesterAddress,
			ReceiverName:    req.RequesterName,
			Amount:          req.Amount,
			AmountInHuman:   req.AmountInHuman,
			TransactionHash: req.TxHash,
			Status:          payment.StatusCompleted,
		})
		if err != nil {
			return repaired, err
		}

		r.logger.Warn("Backfilled missing settlement payment",
			zap.String("request_id", req.RequestID),
			zap.String("tx_hash", req.TxHash))
		metrics.ReconcilerRepairs.WithLabelValues("backfilled_payment").Inc()
		repaired++
	}

	return repaired, nil
}

// resolvePendingPayments asks the chain what happened to pending payments
// that carry a transaction hash.
func (r *Reconciler) resolvePendingPayments(ctx context.Context) (int, error) {
	if r.chain == nil {
		return 0, nil
	}

	pending, err := r.payments.ListPendingWithHash(ctx, repairBatchSize)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, p := range pending {
		status, err := r.chain.TransactionByHash(ctx, p.TransactionHash)
		if err != nil {
			// A fullnode hiccup should not abort the pass; the payment is
			// retried next interval.
			r.logger.Warn("Failed to resolve payment on chain",
				zap.Int64("payment_id", p.ID),
				zap.String("tx_hash", p.TransactionHash),
				zap.Error(err))
			continue
		}

		target, ok := resolveStatus(p, status)
		if !ok {
			continue
		}

		if _, err := r.payments.UpdateStatusByHash(ctx, p.TransactionHash, target); err != nil {
			return resolved, err
		}

		r.logger.Info("Resolved pending payment",
			zap.Int64("payment_id", p.ID),
			zap.String("tx_hash", p.TransactionHash),
			zap.String("status", string(target)))
		metrics.ReconcilerRepairs.WithLabelValues("resolved_" + string(target)).Inc()
		resolved++
	}

	return resolved, nil
}

// resolveStatus maps an on-chain outcome to the ledger status, if any.
func resolveStatus(p *payment.Payment, status aptos.TxStatus) (payment.Status, bool) {
	switch status {
	case aptos.TxSuccess:
		return payment.StatusCompleted, true
	case aptos.TxFailure:
		return payment.StatusFailed, true
	case aptos.TxNotFound:
		// An unknown hash past its expiration window will never commit.
		if p.ExpirationTimestamp > 0 && time.Now().Unix() > p.ExpirationTimestamp {
			return payment.StatusExpired, true
		}
	}
	return "", false
}

// RunInitial runs one pass with its own timeout, used at server startup.
func (r *Reconciler) RunInitial(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := r.ReconcileAll(ctx); err != nil {
		r.logger.Error("Initial reconciliation failed", zap.Error(err))
	}
}

// StartPeriodicReconciliation starts a background goroutine that reconciles periodically
func (r *Reconciler) StartPeriodicReconciliation(interval time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.logger.Info("Started periodic reconciliation", zap.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				if err := r.ReconcileAll(ctx); err != nil {
					r.logger.Error("Periodic reconciliation failed", zap.Error(err))
				}
				cancel()
			case <-r.stopCh:
				r.logger.Info("Stopping periodic reconciliation")
				return
			}
		}
	}()
}

// Stop stops the periodic reconciliation. Safe to call more than once; the
// server wiring stops explicitly during shutdown and again from a deferred
// call.
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}
