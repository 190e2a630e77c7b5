package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/greenpay/aptopay-middleware/pkg/app/errors"
	apphttp "github.com/greenpay/aptopay-middleware/pkg/app/http"
	"github.com/greenpay/aptopay-middleware/pkg/payment"
	"github.com/greenpay/aptopay-middleware/pkg/request"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the request service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/requests", apphttp.HandleError(h.create))
	r.Get("/requests", apphttp.HandleError(h.list))
	r.Post("/requests/{id}/accept", apphttp.HandleError(h.accept))
	r.Post("/requests/{id}/reject", apphttp.HandleError(h.reject))
}

// requestJSON is the wire representation of a payment request.
type requestJSON struct {
	RequestID        string `json:"requestId"`
	RequesterAddress string `json:"requesterAddress"`
	RequesterName    string `json:"requesterName,omitempty"`
	PayerAddress     string `json:"payerAddress,omitempty"`
	PayerName        string `json:"payerName,omitempty"`
	Amount           string `json:"amount"`
	AmountInHuman    string `json:"amountInHuman,omitempty"`
	Memo             string `json:"memo,omitempty"`
	Status           string `json:"status"`
	TxHash           string `json:"txHash,omitempty"`
	CreatedAt        int64  `json:"createdAt"`
	UpdatedAt        int64  `json:"updatedAt"`
}

func toRequestJSON(r *request.Request) *requestJSON {
	return &requestJSON{
		RequestID:        r.RequestID,
		RequesterAddress: r.RequesterAddress,
		RequesterName:    r.RequesterName,
		PayerAddress:     r.PayerAddress,
		PayerName:        r.PayerName,
		Amount:           r.Amount,
		AmountInHuman:    r.AmountInHuman,
		Memo:             r.Memo,
		Status:           string(r.Status),
		TxHash:           r.TxHash,
		CreatedAt:        r.CreatedAt.Unix(),
		UpdatedAt:        r.UpdatedAt.Unix(),
	}
}

type paymentSummaryJSON struct {
	ID              int64  `json:"id"`
	SenderAddress   string `json:"senderAddress"`
	ReceiverAddress string `json:"receiverAddress"`
	Amount          string `json:"amount"`
	TransactionHash string `json:"transactionHash"`
	Status          string `json:"status"`
}

type requestEnvelope struct {
	Success bool         `json:"success"`
	Request *requestJSON `json:"request"`
	// Payment is the settlement ledger entry, set only by accept.
	Payment *paymentSummaryJSON `json:"payment,omitempty"`
}

type requestListEnvelope struct {
	Success  bool           `json:"success"`
	Requests []*requestJSON `json:"requests"`
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	var req request.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	created, err := h.service.Create(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, &requestEnvelope{Success: true, Request: toRequestJSON(created)})
	return nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	payer := r.URL.Query().Get("payerAddress")
	requester := r.URL.Query().Get("requesterAddress")

	requests, err := h.service.List(r.Context(), payer, requester)
	if err != nil {
		return err
	}

	out := make([]*requestJSON, len(requests))
	for i, req := range requests {
		out[i] = toRequestJSON(req)
	}

	apphttp.WriteJSON(w, http.StatusOK, &requestListEnvelope{Success: true, Requests: out})
	return nil
}

func (h *HTTP) accept(w http.ResponseWriter, r *http.Request) error {
	requestID := chi.URLParam(r, "id")

	var req request.AcceptRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	updated, settled, err := h.service.Accept(r.Context(), requestID, &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &requestEnvelope{
		Success: true,
		Request: toRequestJSON(updated),
		Payment: toPaymentSummary(settled),
	})
	return nil
}

func (h *HTTP) reject(w http.ResponseWriter, r *http.Request) error {
	requestID := chi.URLParam(r, "id")

	updated, err := h.service.Reject(r.Context(), requestID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &requestEnvelope{Success: true, Request: toRequestJSON(updated)})
	return nil
}

func toPaymentSummary(p *payment.Payment) *paymentSummaryJSON {
	if p == nil {
		return nil
	}
	return &paymentSummaryJSON{
		ID:              p.ID,
		SenderAddress:   p.SenderAddress,
		ReceiverAddress: p.ReceiverAddress,
		Amount:          p.Amount,
		TransactionHash: p.TransactionHash,
		Status:          string(p.Status),
	}
}

func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	return nil
}
