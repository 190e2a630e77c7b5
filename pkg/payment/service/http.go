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
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the payment service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/payments", apphttp.HandleError(h.record))
	r.Get("/payments", apphttp.HandleError(h.list))
	// PUT selects the payment by its internal id, PATCH by transaction hash.
	r.Put("/payments/update-status", apphttp.HandleError(h.updateStatusByID))
	r.Patch("/payments/update-status", apphttp.HandleError(h.updateStatusByHash))
}

// paymentJSON is the wire representation of a ledger entry.
type paymentJSON struct {
	ID                  int64  `json:"id"`
	SenderAddress       string `json:"senderAddress"`
	SenderName          string `json:"senderName,omitempty"`
	ReceiverAddress     string `json:"receiverAddress"`
	ReceiverName        string `json:"receiverName,omitempty"`
	Amount              string `json:"amount"`
	AmountInHuman       string `json:"amountInHuman,omitempty"`
	TransactionHash     string `json:"transactionHash,omitempty"`
	Status              string `json:"status"`
	ExpirationTimestamp int64  `json:"expirationTimestamp,omitempty"`
	CreatedAt           int64  `json:"createdAt"`
	UpdatedAt           int64  `json:"updatedAt"`
}

func toPaymentJSON(p *payment.Payment) *paymentJSON {
	return &paymentJSON{
		ID:                  p.ID,
		SenderAddress:       p.SenderAddress,
		SenderName:          p.SenderName,
		ReceiverAddress:     p.ReceiverAddress,
		ReceiverName:        p.ReceiverName,
		Amount:              p.Amount,
		AmountInHuman:       p.AmountInHuman,
		TransactionHash:     p.TransactionHash,
		Status:              string(p.Status),
		ExpirationTimestamp: p.ExpirationTimestamp,
		CreatedAt:           p.CreatedAt.Unix(),
		UpdatedAt:           p.UpdatedAt.Unix(),
	}
}

type paymentEnvelope struct {
	Success bool         `json:"success"`
	Payment *paymentJSON `json:"payment"`
}

type paymentListEnvelope struct {
	Success  bool           `json:"success"`
	Payments []*paymentJSON `json:"payments"`
}

func (h *HTTP) record(w http.ResponseWriter, r *http.Request) error {
	var req payment.RecordRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	p, err := h.service.Record(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, &paymentEnvelope{Success: true, Payment: toPaymentJSON(p)})
	return nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	address := r.URL.Query().Get("address")
	// No address means no history rather than an error, matching how wallet
	// frontends poll this endpoint before a wallet is connected.
	if address == "" {
		apphttp.WriteJSON(w, http.StatusOK, &paymentListEnvelope{Success: true, Payments: []*paymentJSON{}})
		return nil
	}

	payments, err := h.service.List(r.Context(), address)
	if err != nil {
		return err
	}

	out := make([]*paymentJSON, len(payments))
	for i, p := range payments {
		out[i] = toPaymentJSON(p)
	}

	apphttp.WriteJSON(w, http.StatusOK, &paymentListEnvelope{Success: true, Payments: out})
	return nil
}

func (h *HTTP) updateStatusByID(w http.ResponseWriter, r *http.Request) error {
	var req payment.UpdateStatusByIDRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	p, err := h.service.UpdateStatusByID(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &paymentEnvelope{Success: true, Payment: toPaymentJSON(p)})
	return nil
}

func (h *HTTP) updateStatusByHash(w http.ResponseWriter, r *http.Request) error {
	var req payment.UpdateStatusByHashRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	p, err := h.service.UpdateStatusByHash(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &paymentEnvelope{Success: true, Payment: toPaymentJSON(p)})
	return nil
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
