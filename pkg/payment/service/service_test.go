package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/greenpay/aptopay-middleware/pkg/app/errors"
	"github.com/greenpay/aptopay-middleware/pkg/payment"
	"github.com/greenpay/aptopay-middleware/pkg/paymentstore"
)

// fakeStore is an in-memory Store used by the service tests.
type fakeStore struct {
	payments   []*payment.Payment
	nextID     int64
	createErr  error
	updateErr  error
	lastUpdate struct {
		id     int64
		hash   string
		status payment.Status
	}
}

func (f *fakeStore) CreatePayment(_ context.Context, p *payment.Payment) (*payment.Payment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	stored := *p
	stored.ID = f.nextID
	f.payments = append(f.payments, &stored)
	return &stored, nil
}

func (f *fakeStore) ListPaymentsByAddress(_ context.Context, address string) ([]*payment.Payment, error) {
	var out []*payment.Payment
	for _, p := range f.payments {
		if p.SenderAddress == address || p.ReceiverAddress == address {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatusByID(_ context.Context, id int64, status payment.Status, txHash string) (*payment.Payment, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.lastUpdate.id = id
	f.lastUpdate.status = status
	for _, p := range f.payments {
		if p.ID == id {
			p.Status = status
			if txHash != "" {
				p.TransactionHash = txHash
			}
			return p, nil
		}
	}
	return nil, paymentstore.ErrPaymentNotFound
}

func (f *fakeStore) UpdateStatusByHash(_ context.Context, txHash string, status payment.Status) (*payment.Payment, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.lastUpdate.hash = txHash
	f.lastUpdate.status = status
	for _, p := range f.payments {
		if p.TransactionHash == txHash {
			p.Status = status
			return p, nil
		}
	}
	return nil, paymentstore.ErrPaymentNotFound
}

func validRecordRequest() *payment.RecordRequest {
	return &payment.RecordRequest{
		SenderAddress:   "0xA1b2C3",
		ReceiverAddress: "0xD4e5F6",
		Amount:          "5000000",
		TransactionHash: "0xhash1",
		Status:          "completed",
	}
}

func TestPaymentService_Record_NormalizesAndDerivesHumanAmount(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, 8, zap.NewNop())

	p, err := svc.Record(context.Background(), validRecordRequest())
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	if p.SenderAddress != "0xa1b2c3" {
		t.Errorf("expected lowercased sender, got %q", p.SenderAddress)
	}
	if p.ReceiverAddress != "0xd4e5f6" {
		t.Errorf("expected lowercased receiver, got %q", p.ReceiverAddress)
	}
	if p.AmountInHuman != "0.05" {
		t.Errorf("expected derived amountInHuman %q, got %q", "0.05", p.AmountInHuman)
	}
	if p.ID == 0 {
		t.Error("expected assigned payment id")
	}
}

func TestPaymentService_Record_KeepsProvidedHumanAmount(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, 8, zap.NewNop())

	req := validRecordRequest()
	req.AmountInHuman = "0.05 APT"

	p, err := svc.Record(context.Background(), req)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if p.AmountInHuman != "0.05 APT" {
		t.Errorf("expected provided amountInHuman kept, got %q", p.AmountInHuman)
	}
}

func TestPaymentService_Record_FailedAttemptWithoutHash(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, 8, zap.NewNop())

	req := validRecordRequest()
	req.TransactionHash = ""
	req.Status = "failed"

	p, err := svc.Record(context.Background(), req)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if p.Status != payment.StatusFailed {
		t.Errorf("expected status failed, got %q", p.Status)
	}
	if p.TransactionHash != "" {
		t.Errorf("expected empty transaction hash, got %q", p.TransactionHash)
	}
}

func TestPaymentService_Record_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*payment.RecordRequest)
	}{
		{"missing sender", func(r *payment.RecordRequest) { r.SenderAddress = "" }},
		{"missing receiver", func(r *payment.RecordRequest) { r.ReceiverAddress = "" }},
		{"missing amount", func(r *payment.RecordRequest) { r.Amount = "" }},
		{"missing status", func(r *payment.RecordRequest) { r.Status = "" }},
		{"unknown status", func(r *payment.RecordRequest) { r.Status = "done" }},
		{"negative amount", func(r *payment.RecordRequest) { r.Amount = "-5" }},
		{"fractional amount", func(r *payment.RecordRequest) { r.Amount = "1.5" }},
		{"non-numeric amount", func(r *payment.RecordRequest) { r.Amount = "lots" }},
		{"bad sender address", func(r *payment.RecordRequest) { r.SenderAddress = "a1b2c3" }},
		{"bad receiver address", func(r *payment.RecordRequest) { r.ReceiverAddress = "0xzz" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			svc := NewService(store, 8, zap.NewNop())

			req := validRecordRequest()
			tc.mutate(req)

			_, err := svc.Record(context.Background(), req)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !apperrors.Is(err, apperrors.CategoryDataError) {
				t.Fatalf("expected CategoryDataError, got %v", err)
			}
			if len(store.payments) != 0 {
				t.Error("expected no payment stored on validation failure")
			}
		})
	}
}

func TestPaymentService_List_DerivesMissingHumanAmounts(t *testing.T) {
	store := &fakeStore{
		payments: []*payment.Payment{
			{ID: 1, SenderAddress: "0xaa", ReceiverAddress: "0xbb", Amount: "100000000", Status: payment.StatusCompleted},
			{ID: 2, SenderAddress: "0xbb", ReceiverAddress: "0xaa", Amount: "5000000", AmountInHuman: "0.05", Status: payment.StatusCompleted},
		},
		nextID: 2,
	}
	svc := NewService(store, 8, zap.NewNop())

	payments, err := svc.List(context.Background(), "0xAA")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}
	if payments[0].AmountInHuman != "1" {
		t.Errorf("expected derived amountInHuman %q, got %q", "1", payments[0].AmountInHuman)
	}
	if payments[1].AmountInHuman != "0.05" {
		t.Errorf("expected stored amountInHuman kept, got %q", payments[1].AmountInHuman)
	}
}

func TestPaymentService_List_InvalidAddress(t *testing.T) {
	svc := NewService(&fakeStore{}, 8, zap.NewNop())

	_, err := svc.List(context.Background(), "not-an-address")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Fatalf("expected CategoryDataError, got %v", err)
	}
}

func TestPaymentService_UpdateStatusByID(t *testing.T) {
	store := &fakeStore{
		payments: []*payment.Payment{
			{ID: 7, SenderAddress: "0xaa", ReceiverAddress: "0xbb", Amount: "10", Status: payment.StatusPending},
		},
		nextID: 7,
	}
	svc := NewService(store, 8, zap.NewNop())

	p, err := svc.UpdateStatusByID(context.Background(), &payment.UpdateStatusByIDRequest{
		PaymentID:       7,
		Status:          "completed",
		TransactionHash: "0xnewhash",
	})
	if err != nil {
		t.Fatalf("UpdateStatusByID() failed: %v", err)
	}
	if p.Status != payment.StatusCompleted {
		t.Errorf("expected status completed, got %q", p.Status)
	}
	if p.TransactionHash != "0xnewhash" {
		t.Errorf("expected attached hash, got %q", p.TransactionHash)
	}
}

func TestPaymentService_UpdateStatusByID_NotFound(t *testing.T) {
	svc := NewService(&fakeStore{}, 8, zap.NewNop())

	_, err := svc.UpdateStatusByID(context.Background(), &payment.UpdateStatusByIDRequest{
		PaymentID: 99,
		Status:    "failed",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.Is(err, apperrors.CategoryResourceNotFound) {
		t.Fatalf("expected CategoryResourceNotFound, got %v", err)
	}
}

func TestPaymentService_UpdateStatusByHash(t *testing.T) {
	store := &fakeStore{
		payments: []*payment.Payment{
			{ID: 1, TransactionHash: "0xh1", Amount: "10", Status: payment.StatusPending},
		},
		nextID: 1,
	}
	svc := NewService(store, 8, zap.NewNop())

	p, err := svc.UpdateStatusByHash(context.Background(), &payment.UpdateStatusByHashRequest{
		TransactionHash: "0xh1",
		Status:          "expired",
	})
	if err != nil {
		t.Fatalf("UpdateStatusByHash() failed: %v", err)
	}
	if p.Status != payment.StatusExpired {
		t.Errorf("expected status expired, got %q", p.Status)
	}
}

func TestPaymentService_UpdateStatusByHash_AmbiguousHash(t *testing.T) {
	store := &fakeStore{updateErr: paymentstore.ErrAmbiguousHash}
	svc := NewService(store, 8, zap.NewNop())

	_, err := svc.UpdateStatusByHash(context.Background(), &payment.UpdateStatusByHashRequest{
		TransactionHash: "0xdup",
		Status:          "completed",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.Is(err, apperrors.CategoryDataConflict) {
		t.Fatalf("expected CategoryDataConflict, got %v", err)
	}
}

func TestPaymentService_StoreFailure_IsInternal(t *testing.T) {
	store := &fakeStore{createErr: errors.New("connection refused")}
	svc := NewService(store, 8, zap.NewNop())

	_, err := svc.Record(context.Background(), validRecordRequest())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !apperrors.Is(err, apperrors.CategoryGeneralError) {
		t.Fatalf("expected CategoryGeneralError, got %v", err)
	}
}
