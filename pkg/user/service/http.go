package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/greenpay/aptopay-middleware/pkg/app/errors"
	apphttp "github.com/greenpay/aptopay-middleware/pkg/app/http"
	"github.com/greenpay/aptopay-middleware/pkg/user"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the user registry on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/users", apphttp.HandleError(h.register))
	r.Get("/users", apphttp.HandleError(h.list))
	r.Get("/users/{name}", apphttp.HandleError(h.getByName))
}

// userJSON is the wire representation of a registered user.
type userJSON struct {
	WalletAddress string             `json:"walletAddress"`
	Name          string             `json:"name"`
	Rewards       []user.RewardEntry `json:"rewards,omitempty"`
	CreatedAt     int64              `json:"createdAt"`
}

func toUserJSON(u *user.User) *userJSON {
	return &userJSON{
		WalletAddress: u.WalletAddress,
		Name:          u.Name,
		Rewards:       u.Rewards,
		CreatedAt:     u.CreatedAt.Unix(),
	}
}

type userEnvelope struct {
	Success bool      `json:"success"`
	User    *userJSON `json:"user"`
}

type userListEnvelope struct {
	Success bool        `json:"success"`
	Users   []*userJSON `json:"users"`
}

func (h *HTTP) register(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req user.RegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}

	created, err := h.service.Register(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, &userEnvelope{Success: true, User: toUserJSON(created)})
	return nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	users, err := h.service.List(r.Context())
	if err != nil {
		return err
	}

	out := make([]*userJSON, len(users))
	for i, u := range users {
		out[i] = toUserJSON(u)
	}

	apphttp.WriteJSON(w, http.StatusOK, &userListEnvelope{Success: true, Users: out})
	return nil
}

func (h *HTTP) getByName(w http.ResponseWriter, r *http.Request) error {
	name := chi.URLParam(r, "name")

	usr, err := h.service.GetByName(r.Context(), name)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &userEnvelope{Success: true, User: toUserJSON(usr)})
	return nil
}
