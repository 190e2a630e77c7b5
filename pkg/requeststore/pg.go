package requeststore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/greenpay/aptopay-middleware/pkg/payment"
	"github.com/greenpay/aptopay-middleware/pkg/paymentstore"
	"github.com/greenpay/aptopay-middleware/pkg/request"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the request store.
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateRequest(ctx context.Context, r *request.Request) (*request.Request, error) {
	dao := toRequestDao(r)
	dao.ID = 0

	_, err := s.db.NewInsert().
		Model(dao).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return toRequest(dao), nil
}

func (s *pgStore) GetByRequestID(ctx context.Context, requestID string) (*request.Request, error) {
	return getByRequestID(ctx, s.db, requestID)
}

func getByRequestID(ctx context.Context, db bun.IDB, requestID string) (*request.Request, error) {
	dao := new(RequestDao)
	err := db.NewSelect().
		Model(dao).
		Where("request_id = ?", requestID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return toRequest(dao), nil
}

func (s *pgStore) List(ctx context.Context, opts ...QueryOption) ([]*request.Request, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var daos []RequestDao
	query := s.db.NewSelect().Model(&daos)

	if options.PayerAddress != nil {
		query = query.Where("payer_address = ?", *options.PayerAddress)
	}
	if options.RequesterAddress != nil {
		query = query.Where("requester_address = ?", *options.RequesterAddress)
	}
	if options.Status != nil {
		query = query.Where("status = ?", string(*options.Status))
	}

	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	requests := make([]*request.Request, len(daos))
	for i := range daos {
		requests[i] = toRequest(&daos[i])
	}
	return requests, nil
}

func (s *pgStore) Accept(
	ctx context.Context,
	requestID, txHash, payerAddress string,
	buildPayment func(*request.Request) *payment.Payment,
) (*request.Request, *payment.Payment, error) {
	var (
		req *request.Request
		pay *payment.Payment
	)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dao := new(RequestDao)
		q := tx.NewUpdate().
			Model(dao).
			Set("status = ?", string(request.StatusPaid)).
			Set("tx_hash = ?", txHash).
			Set("updated_at = NOW()").
			Where("request_id = ?", requestID).
			Where("status = ?", string(request.StatusPending)).
			Returning("*")
		if payerAddress != "" {
			q = q.Set("payer_address = ?", payerAddress)
		}

		res, err := q.Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark request paid: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read update result: %w", err)
		}
		if affected == 0 {
			return classifyMissedTransition(ctx, tx, requestID)
		}

		req = toRequest(dao)
		pay, err = paymentstore.Insert(ctx, tx, buildPayment(req))
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return req, pay, nil
}

func (s *pgStore) Transition(ctx context.Context, requestID string, to request.Status) (*request.Request, error) {
	if !request.StatusPending.CanTransitionTo(to) {
		return nil, fmt.Errorf("illegal transition to %q", to)
	}

	dao := new(RequestDao)
	res, err := s.db.NewUpdate().
		Model(dao).
		Set("status = ?", string(to)).
		Set("updated_at = NOW()").
		Where("request_id = ?", requestID).
		Where("status = ?", string(request.StatusPending)).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to transition request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return nil, classifyMissedTransition(ctx, s.db, requestID)
	}

	return toRequest(dao), nil
}

// classifyMissedTransition distinguishes a missing request from one that
// already reached a terminal state, so the two conditional-update outcomes
// surface as different errors.
func classifyMissedTransition(ctx context.Context, db bun.IDB, requestID string) error {
	existing, err := getByRequestID(ctx, db, requestID)
	if err != nil {
		return err
	}
	return fmt.Errorf("request %s is %s: %w", requestID, existing.Status, ErrAlreadyTerminal)
}

func (s *pgStore) ListPaidWithoutPayment(ctx context.Context, limit int) ([]*request.Request, error) {
	var daos []RequestDao
	q := s.db.NewSelect().
		Model(&daos).
		Where("r.status = ?", string(request.StatusPaid)).
		Where("r.tx_hash IS NOT NULL").
		Where("NOT EXISTS (SELECT 1 FROM payments p WHERE p.transaction_hash = r.tx_hash)").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list paid requests without payments: %w", err)
	}

	requests := make([]*request.Request, len(daos))
	for i := range daos {
		requests[i] = toRequest(&daos[i])
	}
	return requests, nil
}
